package export

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/axonius-community/go-axonius/fields"
)

// stageTags accumulates identity stubs for the pending bulk label mutations.
// No network call happens here; doTagging flushes at Stop.
func (p *pipeline) stageTags(row Row) {
	id := axid(row)
	if len(p.opts.TagsAdd) > 0 {
		p.st.tagAdd.add(id)
	}
	if len(p.opts.TagsRemove) > 0 {
		p.st.tagRemove.add(id)
	}
}

// stageAdaptersMissing computes which known adapters did not contribute to
// this asset and writes the result as a synthesized field.
func (p *pipeline) stageAdaptersMissing(row Row) {
	if !p.opts.ReportAdaptersMissing {
		return
	}

	present := make(map[string]bool)
	for _, v := range asList(row["adapters"]) {
		if name, ok := v.(string); ok {
			present[normalizeAdapter(name)] = true
		}
	}

	var missing []any
	for _, adapter := range p.cfg.AdapterNames {
		if !present[normalizeAdapter(adapter)] {
			missing = append(missing, adapter)
		}
	}
	row[adaptersMissingName] = missing
}

// stageIncludeDates stamps the row with the run's fetch time.
func (p *pipeline) stageIncludeDates(row Row) {
	if !p.opts.IncludeDates {
		return
	}
	row[fetchDateName] = p.st.fetchDate.Format("2006-01-02T15:04:05Z07:00")
}

// stageNullFill inserts every selected field absent from the row so all rows
// share a uniform key set, recursing into the sub-rows of complex fields.
// Idempotent: re-running on a filled row is a no-op.
func (p *pipeline) stageNullFill(row Row) {
	if !p.opts.FieldNull {
		return
	}
	for _, f := range p.selected {
		p.nullFill(row, f)
	}
}

func (p *pipeline) nullFill(row Row, f *fields.Field) {
	if p.isExcluded(f) {
		return
	}

	if !f.IsComplex {
		if _, ok := row[f.NameQual]; !ok {
			row[f.NameQual] = p.opts.nullValue()
		}
		return
	}

	items := asList(row[f.NameQual])
	row[f.NameQual] = items
	for _, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, sf := range p.rootSubs(f) {
			if _, ok := sub[sf.Name]; !ok {
				sub[sf.Name] = p.opts.nullValue()
			}
		}
	}
}

// stageExclude removes configured fields from the row and from the sub-rows
// of complex values. Never errors on a missing key.
func (p *pipeline) stageExclude(row Row) {
	if len(p.opts.FieldExcludes) == 0 {
		return
	}

	for key := range row {
		if p.keyExcluded(key) {
			delete(row, key)
			continue
		}
		if f := p.resolve(key); f != nil {
			if p.isExcluded(f) {
				delete(row, key)
				continue
			}
			if f.IsComplex {
				p.excludeSubs(row[key], f)
			}
		}
	}
}

func (p *pipeline) excludeSubs(value any, f *fields.Field) {
	var drop []string
	for _, sub := range f.SubFields {
		if p.isExcluded(sub) {
			drop = append(drop, sub.Name)
		}
	}
	if len(drop) == 0 {
		return
	}
	for _, item := range asList(value) {
		if sub, ok := item.(map[string]any); ok {
			for _, name := range drop {
				delete(sub, name)
			}
		}
	}
}

// stageExplode fans one row out into one row per value of the configured
// field. A row whose target field is empty or absent passes through
// unchanged. Excluding the explode field wins: explode is skipped.
func (p *pipeline) stageExplode(row Row) []Row {
	f := p.explode
	if f == nil || p.isExcluded(f) {
		return []Row{row}
	}

	items := asList(row[f.NameQual])
	if len(items) == 0 {
		return []Row{row}
	}
	delete(row, f.NameQual)

	out := make([]Row, 0, len(items))
	for _, item := range items {
		clone := deepCopyRow(row)
		if f.IsComplex {
			sub, _ := item.(map[string]any)
			for _, sf := range p.rootSubs(f) {
				value, ok := sub[sf.Name]
				if !ok {
					value = p.opts.nullValue()
				}
				clone[sf.NameQual] = value
			}
		} else {
			clone[f.NameQual] = item
		}
		out = append(out, clone)
	}
	return out
}

// stageFlatten replaces each complex field with one top-level field per root
// sub-field, holding that sub-field's values across the complex items.
// Non-root sub-fields are dropped with the original key.
func (p *pipeline) stageFlatten(row Row) {
	if !p.opts.FieldFlatten {
		return
	}

	// Snapshot the keys: flattening inserts new ones mid-walk.
	for _, key := range rowKeys(row) {
		f := p.resolve(key)
		if f == nil || !f.IsComplex || p.isExcluded(f) {
			continue
		}

		items := asList(row[key])
		delete(row, key)

		for _, sf := range p.rootSubs(f) {
			values := make([]any, 0, len(items))
			for _, item := range items {
				sub, _ := item.(map[string]any)
				value, ok := sub[sf.Name]
				if !ok {
					value = p.opts.nullValue()
				}
				if list, isList := value.([]any); isList {
					values = append(values, list...)
				} else {
					values = append(values, value)
				}
			}
			row[sf.NameQual] = values
		}
	}
}

// stageJoin converts list-of-scalar values into single delimited strings,
// trimming to the configured maximum length. Joining an already-scalar field
// is a no-op; lists of sub-rows are left untouched.
func (p *pipeline) stageJoin(row Row) {
	if !p.opts.FieldJoin {
		return
	}

	joiner := p.opts.joinValue()
	trim := p.opts.joinTrim()

	for key, value := range row {
		if list, ok := value.([]any); ok && scalarList(list) {
			parts := make([]string, 0, len(list))
			for _, v := range list {
				parts = append(parts, toString(v))
			}
			row[key] = strings.Join(parts, joiner)
		}

		if s, ok := row[key].(string); ok && trim > 0 && len(s) >= trim {
			marker := fmt.Sprintf(trimFormat, len(s)-trim, trim)
			row[key] = s[:trim] + joiner + marker
		}
	}
}

// stageCustomCBs runs the user-supplied callbacks in order. A failing or
// panicking callback is recorded and the rows it received continue
// untransformed; third-party code never aborts the run.
func (p *pipeline) stageCustomCBs(rows []Row) []Row {
	for _, cb := range p.opts.CustomCBs {
		out, err := runCallback(cb, rows)
		if err != nil {
			p.st.cbErrors = append(p.st.cbErrors, CustomCBError{Rows: rows, Err: err})
			continue
		}
		rows = out
	}
	return rows
}

func runCallback(cb RowsCallback, rows []Row) (out []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return cb(rows)
}

// stageCompress drops adapter-specific columns whose values duplicate the
// aggregated column for the same base field, keeping the aggregated one.
func (p *pipeline) stageCompress(row Row) {
	if !p.opts.FieldCompress {
		return
	}

	agg := make(map[string]any)
	for key, value := range row {
		f := p.resolve(key)
		if f != nil && f.AdapterName == fields.AggAdapter {
			agg[f.NameBase] = value
		}
	}

	for key, value := range row {
		f := p.resolve(key)
		if f == nil || f.AdapterName == fields.AggAdapter {
			continue
		}
		if aggValue, ok := agg[f.NameBase]; ok && reflect.DeepEqual(aggValue, value) {
			delete(row, key)
		}
	}
}

// stageTitles renames keys from qualified names to column titles, keeping
// the original key for fields with no resolvable schema entry.
func (p *pipeline) stageTitles(row Row) {
	if !p.opts.FieldTitles {
		return
	}
	for _, key := range rowKeys(row) {
		f := p.resolve(key)
		if f == nil || f.ColumnTitle == key {
			continue
		}
		row[f.ColumnTitle] = row[key]
		delete(row, key)
	}
}

// stageReplace applies the ordered literal substitutions to column names.
func (p *pipeline) stageReplace(row Row) {
	if len(p.opts.FieldReplace) == 0 {
		return
	}
	for _, key := range rowKeys(row) {
		replaced := p.replaceName(key)
		if replaced != key {
			row[replaced] = row[key]
			delete(row, key)
		}
	}
}

// Synthesized report field descriptors.
const (
	adaptersMissingName = "adapters_missing"
	fetchDateName       = "fetch_date"
)

func adaptersMissingField() *fields.Field {
	return &fields.Field{
		Name:         adaptersMissingName,
		NameBase:     adaptersMissingName,
		NameQual:     adaptersMissingName,
		Title:        "Adapters Missing",
		ColumnTitle:  "Report: Adapters Missing",
		Type:         "array",
		AdapterName:  "report",
		AdapterTitle: "Report",
		IsRoot:       true,
		Custom:       true,
	}
}

func fetchDateField() *fields.Field {
	return &fields.Field{
		Name:         fetchDateName,
		NameBase:     fetchDateName,
		NameQual:     fetchDateName,
		Title:        "Fetch Date",
		ColumnTitle:  "Report: Fetch Date",
		Type:         "string",
		AdapterName:  "report",
		AdapterTitle: "Report",
		IsRoot:       true,
		Custom:       true,
	}
}

// normalizeAdapter strips the _adapter suffix so inventory names compare
// equal to the names rows carry.
func normalizeAdapter(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), "_adapter")
}

func rowKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	return keys
}

// asList normalizes a value into a slice: nil stays empty, a slice stays
// itself, a scalar becomes a one-element slice.
func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// scalarList reports whether a list holds no sub-rows.
func scalarList(list []any) bool {
	for _, v := range list {
		if _, ok := v.(map[string]any); ok {
			return false
		}
	}
	return true
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// deepCopyRow clones a row including nested lists and sub-rows, so exploded
// copies never share mutable state.
func deepCopyRow(row Row) Row {
	clone := make(Row, len(row))
	for k, v := range row {
		clone[k] = deepCopyValue(v)
	}
	return clone
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
