package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/axonius-community/go-axonius/fields"
)

// Labeler issues the bulk label mutations accumulated by the tag stages. It
// is the only network I/O the pipeline performs.
type Labeler interface {
	AddLabels(ctx context.Context, labels []string, ids []string) (int, error)
	RemoveLabels(ctx context.Context, labels []string, ids []string) (int, error)
}

// Config ties a pipeline to its run: the schema snapshot, the selected
// fields, external collaborators, and the option set.
type Config struct {
	// Schema is the immutable field metadata snapshot for the run.
	Schema *fields.Schema

	// Fields are the requested field names or aliases; API identity fields
	// are always included. Resolution failures surface at construction, not
	// mid-stream.
	Fields []string

	// Labeler is required when TagsAdd or TagsRemove are configured.
	Labeler Labeler

	// AdapterNames feeds the missing-adapters report.
	AdapterNames []string

	// AssetType names the exported collection ("devices", "users"); it
	// frames XML output. Defaults to "assets".
	AssetType string

	Options Options
}

// Pipeline is one instantiated export run. Lifecycle: Start exactly once,
// any number of ProcessRows calls, Stop exactly once. Stop must run even
// when ProcessRows returned an error so the output target is released.
type Pipeline interface {
	// Start initializes run state and opens the sink.
	Start(ctx context.Context) error

	// ProcessRows pushes one page of raw asset rows through the transform
	// stages and into the sink. It returns one acknowledgment per input row.
	// A *StopFetchError return means the row cap was reached: stop fetching
	// pages and call Stop.
	ProcessRows(ctx context.Context, rows ...Row) ([]RowAck, error)

	// Stop flushes pending tag mutations, writes the sink footer, and
	// releases the output target exactly once.
	Stop(ctx context.Context) error

	// SetRowsToFetch records the total row count reported by the pager,
	// for progress reporting.
	SetRowsToFetch(total int)

	// StateView returns a read-only snapshot of the run state.
	StateView() StateView

	// Name returns the export format name.
	Name() string
}

// pipeline is the streaming controller shared by every sink.
type pipeline struct {
	name string
	sink sink
	cfg  Config
	opts Options

	schema   *fields.Schema
	selected []*fields.Field
	explode  *fields.Field

	target *target
	st     state
}

func newPipeline(name string, sk sink, cfg Config) (*pipeline, error) {
	if cfg.Schema == nil {
		return nil, &ConfigError{Msg: "schema is required"}
	}

	opts := cfg.Options
	sk.defaults(&opts)
	if opts.EchoWriter == nil {
		opts.EchoWriter = os.Stderr
	}
	if cfg.AssetType == "" {
		cfg.AssetType = "assets"
	}

	if (len(opts.TagsAdd) > 0 || len(opts.TagsRemove) > 0) && cfg.Labeler == nil {
		return nil, &ConfigError{Msg: "tags configured without a labeler"}
	}

	p := &pipeline{
		name:   name,
		sink:   sk,
		cfg:    cfg,
		opts:   opts,
		schema: cfg.Schema,
	}

	if err := p.resolveSelected(); err != nil {
		return nil, err
	}
	if err := p.resolveExplode(); err != nil {
		return nil, err
	}
	p.registerCustomSchemas()

	return p, nil
}

// resolveSelected resolves the requested fields plus the always-present API
// identity fields, failing closed on any unknown name so a run either starts
// with a fully valid configuration or not at all.
func (p *pipeline) resolveSelected() error {
	requested := make([]string, 0, len(fields.APIFields)+len(p.cfg.Fields))
	requested = append(requested, fields.APIFields...)
	for _, name := range p.cfg.Fields {
		requested = append(requested, name)
	}

	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		f, err := p.schema.Resolve(name)
		if err != nil {
			return err
		}
		if seen[f.NameQual] {
			continue
		}
		seen[f.NameQual] = true
		p.selected = append(p.selected, f)
	}
	return nil
}

func (p *pipeline) resolveExplode() error {
	if p.opts.FieldExplode == "" {
		return nil
	}
	f, err := p.schema.Resolve(p.opts.FieldExplode)
	if err != nil {
		return err
	}
	p.explode = f
	return nil
}

// registerCustomSchemas adds descriptors for the computed report fields so
// they show up in schema export and title renaming.
func (p *pipeline) registerCustomSchemas() {
	if p.opts.ReportAdaptersMissing {
		p.st.custom = append(p.st.custom, adaptersMissingField())
	}
	if p.opts.IncludeDates {
		p.st.custom = append(p.st.custom, fetchDateField())
	}
}

// Name returns the export format name.
func (p *pipeline) Name() string {
	return p.name
}

// Start initializes run state and opens the sink.
func (p *pipeline) Start(ctx context.Context) error {
	switch p.st.phase {
	case phaseStarted:
		return ErrAlreadyStarted
	case phaseStopped:
		return ErrStopped
	}

	p.st.phase = phaseStarted
	p.st.firstRow = true
	p.st.fetchDate = time.Now()

	p.echof("Starting %s export", p.name)
	for _, line := range p.opts.describe() {
		p.echof("   - %s", line)
	}
	for _, f := range p.selected {
		p.echof("Field: %s -> %s", f.NameQual, f.ColumnTitle)
	}

	if p.explode != nil && p.isExcluded(p.explode) {
		p.echof("WARNING: explode field %q is excluded, explode will be skipped", p.explode.NameQual)
	}

	t, err := openTarget(&p.opts)
	if err != nil {
		return err
	}
	p.target = t
	if t.path != "" {
		p.echof("Exporting to file %q", t.path)
	}

	if err := p.sink.start(p); err != nil {
		// The caller gets no Stop on a failed Start, so release the
		// descriptor here.
		closeErr := t.close()
		p.target = nil
		return errors.Join(err, closeErr)
	}
	return nil
}

// ProcessRows runs the transform stages over each input row and writes the
// results to the sink.
func (p *pipeline) ProcessRows(ctx context.Context, rows ...Row) ([]RowAck, error) {
	switch p.st.phase {
	case phaseUnstarted:
		return nil, ErrNotStarted
	case phaseStopped:
		return nil, ErrStopped
	}

	acks := make([]RowAck, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}

		if max := p.opts.TableMaxRows; max > 0 && p.st.rowsProcessed >= max {
			p.st.stopReason = fmt.Sprintf("row cap of %d reached", max)
			p.echof("Stopping fetch: %s", p.st.stopReason)
			return acks, &StopFetchError{Reason: p.st.stopReason, Processed: p.st.rowsProcessed}
		}

		if p.st.firstRow {
			p.st.firstRow = false
			p.echof("First row received")
		}

		acks = append(acks, RowAck{InternalAxonID: axid(row)})

		out := p.transform(row)
		if err := p.sink.writeRows(p, out); err != nil {
			return acks, err
		}

		p.st.rowsProcessed++
		if n := p.opts.PageProgress; n > 0 && p.st.rowsProcessed%n == 0 {
			if p.st.rowsToFetch > 0 {
				p.echof("PROGRESS: %d of %d rows processed", p.st.rowsProcessed, p.st.rowsToFetch)
			} else {
				p.echof("PROGRESS: %d rows processed", p.st.rowsProcessed)
			}
		}
	}
	return acks, nil
}

// Stop flushes tags, writes the sink footer, and releases the target. Every
// step runs even when an earlier one failed, so the descriptor is always
// closed exactly once.
func (p *pipeline) Stop(ctx context.Context) error {
	switch p.st.phase {
	case phaseUnstarted:
		return ErrNotStarted
	case phaseStopped:
		return ErrStopped
	}
	p.st.phase = phaseStopped

	tagErr := p.doTagging(ctx)

	var finishErr, closeErr error
	if p.target != nil {
		finishErr = p.sink.finish(p)
		closeErr = p.target.close()
	}

	p.echof("Stopped %s export after %d rows", p.name, p.st.rowsProcessed)
	return errors.Join(tagErr, finishErr, closeErr)
}

// SetRowsToFetch records the total row count reported by the pager.
func (p *pipeline) SetRowsToFetch(total int) {
	p.st.rowsToFetch = total
}

// StateView returns a read-only snapshot of the run state.
func (p *pipeline) StateView() StateView {
	outputPath := ""
	if p.target != nil {
		outputPath = p.target.path
	}
	return StateView{
		RowsProcessed:  p.st.rowsProcessed,
		RowsToFetch:    p.st.rowsToFetch,
		TagsAdded:      p.st.tagsAdded,
		TagsRemoved:    p.st.tagsRemoved,
		TagsPendingAdd: p.st.tagAdd.len(),
		TagsPendingRm:  p.st.tagRemove.len(),
		CustomCBErrors: p.st.cbErrors,
		OutputPath:     outputPath,
		StopReason:     p.st.stopReason,
	}
}

// transform runs the stages in fixed order over one input row. Stages may
// change the row count (explode) or the row shape.
func (p *pipeline) transform(row Row) []Row {
	p.stageTags(row)
	p.stageAdaptersMissing(row)
	p.stageIncludeDates(row)
	p.stageNullFill(row)
	p.stageExclude(row)

	rows := p.stageExplode(row)
	for _, r := range rows {
		p.stageFlatten(r)
	}
	for _, r := range rows {
		p.stageJoin(r)
	}

	rows = p.stageCustomCBs(rows)

	for _, r := range rows {
		p.stageCompress(r)
	}
	for _, r := range rows {
		p.stageTitles(r)
	}
	for _, r := range rows {
		p.stageReplace(r)
	}
	return rows
}

// resolve looks a row key up against the run's custom descriptors first,
// then the schema snapshot. Returns nil on a miss: stages that rename or
// restructure fail closed for unresolvable keys.
func (p *pipeline) resolve(name string) *fields.Field {
	for _, f := range p.st.custom {
		if strings.EqualFold(f.NameQual, name) || strings.EqualFold(f.Name, name) {
			return f
		}
	}
	f, err := p.schema.Resolve(name)
	if err != nil {
		return nil
	}
	return f
}

// isExcluded reports whether a descriptor matches any configured exclude,
// by qualified name, short name, base name, or title.
func (p *pipeline) isExcluded(f *fields.Field) bool {
	for _, exclude := range p.opts.FieldExcludes {
		for _, key := range []string{f.NameQual, f.Name, f.NameBase, f.Title, f.ColumnTitle} {
			if strings.EqualFold(key, exclude) {
				return true
			}
		}
	}
	return false
}

// keyExcluded reports whether a raw row key matches any configured exclude,
// exactly or as a dotted prefix.
func (p *pipeline) keyExcluded(key string) bool {
	for _, exclude := range p.opts.FieldExcludes {
		if strings.EqualFold(key, exclude) {
			return true
		}
		if len(key) > len(exclude) && strings.EqualFold(key[:len(exclude)+1], exclude+".") {
			return true
		}
	}
	return false
}

// rootSubs returns the root, non-excluded sub-fields of a complex field.
func (p *pipeline) rootSubs(f *fields.Field) []*fields.Field {
	subs := make([]*fields.Field, 0, len(f.SubFields))
	for _, sub := range f.SubFields {
		if sub.IsRoot && !p.isExcluded(sub) {
			subs = append(subs, sub)
		}
	}
	return subs
}

// finalSchemas predicts the descriptors of the columns the sink will emit:
// selected fields minus excludes, with complex fields swapped for their root
// sub-fields when flattened or exploded, plus the run's custom descriptors.
func (p *pipeline) finalSchemas() []*fields.Field {
	explodeQual := ""
	if p.explode != nil && !p.isExcluded(p.explode) {
		explodeQual = p.explode.NameQual
	}

	seen := make(map[string]bool)
	var final []*fields.Field
	add := func(f *fields.Field) {
		if !seen[f.NameQual] {
			seen[f.NameQual] = true
			final = append(final, f)
		}
	}

	for _, f := range p.selected {
		if p.isExcluded(f) {
			continue
		}
		if f.IsComplex && (p.opts.FieldFlatten || f.NameQual == explodeQual) {
			for _, sub := range p.rootSubs(f) {
				add(sub)
			}
			continue
		}
		add(f)
	}

	for _, f := range p.st.custom {
		add(f)
	}
	return final
}

// finalColumns derives the ordered output column names from the final
// schemas, applying title renaming and name replacements.
func (p *pipeline) finalColumns() []string {
	schemas := p.finalSchemas()
	columns := make([]string, 0, len(schemas))
	for _, f := range schemas {
		name := f.NameQual
		if p.opts.FieldTitles {
			name = f.ColumnTitle
		}
		columns = append(columns, p.replaceName(name))
	}
	return columns
}

func (p *pipeline) replaceName(name string) string {
	for _, r := range p.opts.FieldReplace {
		name = strings.ReplaceAll(name, r.Match, r.Replace)
	}
	return name
}

func (p *pipeline) echof(format string, args ...any) {
	if p.opts.DoEcho {
		fmt.Fprintf(p.opts.EchoWriter, format+"\n", args...)
	}
}

// axid extracts the identity field from a raw row.
func axid(row Row) string {
	id, _ := row[fields.AXID].(string)
	return id
}

// writeString writes to an arbitrary writer, for sink framing.
func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
