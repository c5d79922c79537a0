package export

import (
	"fmt"
	"io"
	"strings"
)

// Defaults for field shaping options.
const (
	// DefaultJoinValue separates joined multi-value fields.
	DefaultJoinValue = "\n"

	// DefaultJoinTrim caps the length of joined field values. Chosen to fit
	// a spreadsheet cell.
	DefaultJoinTrim = 32767

	// trimFormat is appended (with the joiner) to a trimmed value.
	trimFormat = "...TRIMMED - %d characters over %d"
)

// Replacement is one literal substring substitution applied to output column
// names, used to sanitize names for strict destination formats.
type Replacement struct {
	Match   string
	Replace string
}

// RowsCallback is a user-supplied row-batch transformation. An error or panic
// from a callback is recorded and the original rows continue through the
// pipeline; a buggy callback never aborts the run.
type RowsCallback func(rows []Row) ([]Row, error)

// Options is the flat configuration for one pipeline instance, validated at
// construction and immutable afterwards.
type Options struct {
	// Output target. ExportFD takes precedence over ExportFile; with neither
	// set, output goes to stdout (never closed by the sink).
	ExportFD        io.Writer
	ExportFDClose   bool   // close a caller-supplied ExportFD at Stop
	ExportFile      string // file name, opened under ExportPath
	ExportPath      string // directory, created as needed (default ".")
	ExportOverwrite bool   // allow clobbering an existing file
	ExportBackup    bool   // rename an existing file to a .bak path first
	ExportSchema    bool   // append/emit field descriptors with the output

	// JSONFlat switches the json sink to JSON-lines output (one compact
	// object per line, no enclosing array).
	JSONFlat bool

	// Field shaping.
	FieldExcludes  []string      // field names to remove from every row
	FieldNull      bool          // insert missing selected fields
	FieldNullValue string        // sentinel for missing values ("" means null)
	FieldJoin      bool          // join list values into delimited strings
	FieldJoinValue string        // joiner (default DefaultJoinValue)
	FieldJoinTrim  int           // 0 means DefaultJoinTrim, negative disables
	FieldTitles    bool          // rename columns to schema titles
	FieldFlatten   bool          // flatten complex fields into root sub-fields
	FieldExplode   string        // field to explode into one row per value
	FieldCompress  bool          // drop adapter columns duplicating agg values
	FieldReplace   []Replacement // ordered column name substitutions

	// Computed report fields.
	ReportAdaptersMissing bool
	IncludeDates          bool

	// Tagging. Accumulated per row, flushed in at most two bulk calls at
	// Stop.
	TagsAdd    []string
	TagsRemove []string

	// Custom row-batch callbacks, run in order.
	CustomCBs []RowsCallback

	// Behavior.
	PageProgress   int  // echo a progress line every N rows (0 disables)
	TableMaxRows   int  // row cap triggering StopFetchError (0 = unlimited)
	TableAPIFields bool // keep API-internal fields in table output
	DoEcho         bool // write status lines to EchoWriter
	EchoWriter     io.Writer
}

// joinTrim returns the effective trim length.
func (o *Options) joinTrim() int {
	switch {
	case o.FieldJoinTrim < 0:
		return 0
	case o.FieldJoinTrim == 0:
		return DefaultJoinTrim
	default:
		return o.FieldJoinTrim
	}
}

// joinValue returns the effective joiner.
func (o *Options) joinValue() string {
	if o.FieldJoinValue == "" {
		return DefaultJoinValue
	}
	return o.FieldJoinValue
}

// nullValue returns the effective missing-value sentinel.
func (o *Options) nullValue() any {
	if o.FieldNullValue == "" {
		return nil
	}
	return o.FieldNullValue
}

// describe renders the option set for the start echo, one line per option.
func (o *Options) describe() []string {
	entry := func(label string, value any) string {
		if list, ok := value.([]string); ok {
			if len(list) == 0 {
				value = nil
			} else {
				value = strings.Join(list, ", ")
			}
		}
		return fmt.Sprintf("%-30s%v", label, value)
	}

	return []string{
		entry("Exclude fields:", o.FieldExcludes),
		entry("Flatten complex fields:", o.FieldFlatten),
		entry("Explode field:", o.FieldExplode),
		entry("Rename fields to titles:", o.FieldTitles),
		entry("Join field values:", o.FieldJoin),
		entry("Join field values using:", fmt.Sprintf("%q", o.joinValue())),
		entry("Join field character limit:", o.joinTrim()),
		entry("Add missing fields:", o.FieldNull),
		entry("Compress fields:", o.FieldCompress),
		entry("Add tags:", o.TagsAdd),
		entry("Remove tags:", o.TagsRemove),
		entry("Report missing adapters:", o.ReportAdaptersMissing),
		entry("Include fetch dates:", o.IncludeDates),
		entry("Export to file:", o.ExportFile),
		entry("Export file to path:", o.ExportPath),
		entry("Export overwrite file:", o.ExportOverwrite),
		entry("Export schema:", o.ExportSchema),
	}
}
