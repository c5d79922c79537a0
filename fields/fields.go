// Package fields models the per-adapter field metadata returned by the
// Axonius API and resolves requested field names against it.
package fields

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// AggAdapter is the short name of the aggregated pseudo-adapter.
	AggAdapter = "agg"

	// AggAdapterTitle is the display title of the aggregated pseudo-adapter.
	AggAdapterTitle = "Aggregated"

	// AggPrefix qualifies aggregated field names.
	AggPrefix = "specific_data.data."

	// AdapterPrefix qualifies adapter-specific field names, followed by
	// "<adapter>.".
	AdapterPrefix = "adapters_data."

	// ManualPrefix marks a synthetic field name that is passed through
	// resolution untouched.
	ManualPrefix = "MANUAL:"
)

// AXID is the identity field present on every asset row.
const AXID = "internal_axon_id"

// APIFields are returned by the REST API for every asset regardless of the
// selected field set.
var APIFields = []string{AXID, "adapters", "adapter_list_length"}

// aggAliases are accepted shorthand names for the aggregated adapter.
var aggAliases = map[string]bool{
	"agg":        true,
	"aggregated": true,
	"generic":    true,
	"general":    true,
	"specific":   true,
}

// Field describes one field of one adapter for one asset type.
type Field struct {
	// Name is the short name within its scope: the base name for top-level
	// fields, the bare sub-field name for sub-fields of complex types.
	Name string

	// NameBase is the name with the adapter prefix stripped.
	NameBase string

	// NameQual is the fully-qualified dot-separated name,
	// e.g. "specific_data.data.hostname".
	NameQual string

	// Title is the human-readable field title.
	Title string

	// ColumnTitle is the title used for export columns,
	// "<Adapter Title>: <Field Title>".
	ColumnTitle string

	// Type is the normalized value type reported by the API.
	Type string

	AdapterName  string
	AdapterTitle string

	// IsRoot marks sub-fields that surface as top-level flattened columns.
	IsRoot bool

	// IsComplex marks fields whose value is a list of sub-row dictionaries.
	IsComplex bool

	// Custom marks descriptors synthesized at run time (MANUAL fields,
	// report fields) rather than parsed from the API.
	Custom bool

	SubFields []*Field
}

// RawField is the wire format of one field in the fields metadata response.
type RawField struct {
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	IsRoot    bool       `json:"is_root"`
	SubFields []RawField `json:"sub_fields,omitempty"`
}

// Response is the wire format of the fields metadata endpoint: adapter name
// to field list.
type Response map[string][]RawField

// Schema is an immutable snapshot of all known fields for one asset type.
// Built once per run; read-only afterwards.
type Schema struct {
	adapters  []string
	byAdapter map[string][]*Field
	all       []*Field
}

// Parse builds a Schema from the raw fields metadata response.
func Parse(resp Response) (*Schema, error) {
	adapters := make([]string, 0, len(resp))
	for name := range resp {
		adapters = append(adapters, name)
	}
	sort.Strings(adapters)

	// Aggregated fields sort first so lookups prefer them over
	// adapter-specific fields with the same base name.
	sort.SliceStable(adapters, func(i, j int) bool {
		return adapters[i] == AggAdapter && adapters[j] != AggAdapter
	})

	s := &Schema{
		adapters:  adapters,
		byAdapter: make(map[string][]*Field, len(resp)),
	}

	for _, adapter := range adapters {
		title := adapterTitle(adapter)
		for _, raw := range resp[adapter] {
			field := parseField(raw, adapter, title)
			s.byAdapter[adapter] = append(s.byAdapter[adapter], field)
			s.all = append(s.all, field)
		}
	}

	return s, nil
}

func parseField(raw RawField, adapter, adapterTitle string) *Field {
	base := baseName(raw.Name, adapter)
	title := raw.Title
	if title == "" {
		title = TitleCase(base)
	}

	f := &Field{
		Name:         base,
		NameBase:     base,
		NameQual:     raw.Name,
		Title:        title,
		ColumnTitle:  adapterTitle + ": " + title,
		Type:         raw.Type,
		AdapterName:  adapter,
		AdapterTitle: adapterTitle,
		IsRoot:       true,
		IsComplex:    len(raw.SubFields) > 0,
	}

	for _, sub := range raw.SubFields {
		subTitle := sub.Title
		if subTitle == "" {
			subTitle = TitleCase(sub.Name)
		}
		f.SubFields = append(f.SubFields, &Field{
			Name:         sub.Name,
			NameBase:     base + "." + sub.Name,
			NameQual:     raw.Name + "." + sub.Name,
			Title:        subTitle,
			ColumnTitle:  adapterTitle + ": " + title + ": " + subTitle,
			Type:         sub.Type,
			AdapterName:  adapter,
			AdapterTitle: adapterTitle,
			IsRoot:       sub.IsRoot,
			IsComplex:    len(sub.SubFields) > 0,
		})
	}

	return f
}

// baseName strips the adapter qualification prefix from a field name.
func baseName(name, adapter string) string {
	if rest, ok := strings.CutPrefix(name, AggPrefix); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(name, AdapterPrefix+adapter+"."); ok {
		return rest
	}
	return name
}

// adapterTitle derives a display title for an adapter name,
// e.g. "active_directory_adapter" -> "Active Directory".
func adapterTitle(name string) string {
	if name == AggAdapter {
		return AggAdapterTitle
	}
	name = strings.TrimSuffix(name, "_adapter")
	return TitleCase(name)
}

var titleCaser = cases.Title(language.AmericanEnglish)

// TitleCase converts a snake_case identifier into a display title.
func TitleCase(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Adapters returns the adapter names in the schema, aggregated first.
func (s *Schema) Adapters() []string {
	return s.adapters
}

// AdapterFields returns the fields of one adapter.
func (s *Schema) AdapterFields(adapter string) []*Field {
	return s.byAdapter[adapter]
}

// All returns every top-level field across all adapters, aggregated first.
func (s *Schema) All() []*Field {
	return s.all
}

// Len returns the number of top-level fields in the schema.
func (s *Schema) Len() int {
	return len(s.all)
}
