package assets

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	axonius "github.com/axonius-community/go-axonius"
	"github.com/axonius-community/go-axonius/export"
	"github.com/axonius-community/go-axonius/fields"
)

type getFlags struct {
	query       string
	fields      []string
	historyDate string

	format    string
	file      string
	path      string
	overwrite bool
	backup    bool
	schema    bool
	jsonFlat  bool

	excludes  []string
	null      bool
	nullValue string
	join      bool
	joinValue string
	joinTrim  int
	titles    bool
	flatten   bool
	explode   string
	compress  bool
	replace   []string

	reportMissing bool
	includeDates  bool

	tagsAdd    []string
	tagsRemove []string

	rowCap   int
	progress int
	quiet    bool
}

func newGetCmd(conn *connFlags) *cobra.Command {
	flags := &getFlags{}

	cmd := &cobra.Command{
		Use:           "get",
		Short:         "Fetch assets and stream them through an export pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, conn, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.query, "query", "q", "", "AQL query; empty matches all assets")
	f.StringSliceVarP(&flags.fields, "field", "f", nil, "Field to fetch (repeatable; name, title, or adapter:field)")
	f.StringVar(&flags.historyDate, "history", "", "Fetch from a historical snapshot (YYYY-MM-DD)")

	f.StringVar(&flags.format, "export-format", export.FormatJSON, "Export format: "+strings.Join(export.Formats(), ", "))
	f.StringVar(&flags.file, "export-file", "", "Export to this file instead of stdout")
	f.StringVar(&flags.path, "export-path", "", "Directory for --export-file (created as needed)")
	f.BoolVar(&flags.overwrite, "export-overwrite", false, "Overwrite an existing export file")
	f.BoolVar(&flags.backup, "export-backup", false, "Back up an existing export file before writing")
	f.BoolVar(&flags.schema, "export-schema", false, "Include field schemas in the output")
	f.BoolVar(&flags.jsonFlat, "json-flat", false, "JSON lines instead of a JSON array")

	f.StringSliceVar(&flags.excludes, "field-exclude", nil, "Field to drop from every row (repeatable)")
	f.BoolVar(&flags.null, "field-null", false, "Insert missing fields into every row")
	f.StringVar(&flags.nullValue, "field-null-value", "", "Value used for missing fields")
	f.BoolVar(&flags.join, "field-join", false, "Join multi-value fields into single strings")
	f.StringVar(&flags.joinValue, "field-join-value", "", "Joiner for --field-join")
	f.IntVar(&flags.joinTrim, "field-join-trim", 0, "Character limit for joined values (-1 disables)")
	f.BoolVar(&flags.titles, "field-titles", true, "Rename columns to human-readable titles")
	f.BoolVar(&flags.flatten, "field-flatten", false, "Flatten complex fields into their sub-fields")
	f.StringVar(&flags.explode, "field-explode", "", "Explode one row per value of this field")
	f.BoolVar(&flags.compress, "field-compress", false, "Drop adapter columns that duplicate aggregated values")
	f.StringSliceVar(&flags.replace, "field-replace", nil, "Column name substitution old=new (repeatable)")

	f.BoolVar(&flags.reportMissing, "report-adapters-missing", false, "Add a column of adapters missing from each asset")
	f.BoolVar(&flags.includeDates, "include-dates", false, "Stamp every row with the fetch time")

	f.StringSliceVar(&flags.tagsAdd, "tag", nil, "Tag to add to every fetched asset (repeatable)")
	f.StringSliceVar(&flags.tagsRemove, "untag", nil, "Tag to remove from every fetched asset (repeatable)")

	f.IntVar(&flags.rowCap, "row-cap", 0, "Stop fetching after this many rows (0 = unlimited)")
	f.IntVar(&flags.progress, "page-progress", 10000, "Progress line every N rows (0 disables)")
	f.BoolVar(&flags.quiet, "quiet", false, "Suppress progress output")

	return cmd
}

func runGet(cmd *cobra.Command, conn *connFlags, flags *getFlags) error {
	_, svc, err := conn.connect()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rid := requestID()

	schema, err := svc.Fields(ctx, rid)
	if err != nil {
		return err
	}

	var adapterNames []string
	if flags.reportMissing {
		adapterNames, err = svc.ListAdapterNames(ctx, rid)
		if err != nil {
			return err
		}
	}

	replacements, err := parseReplacements(flags.replace)
	if err != nil {
		return err
	}

	pipe, err := export.New(flags.format, export.Config{
		Schema:       schema,
		Fields:       flags.fields,
		Labeler:      svc,
		AdapterNames: adapterNames,
		AssetType:    conn.assetType,
		Options: export.Options{
			ExportFile:      flags.file,
			ExportPath:      flags.path,
			ExportOverwrite: flags.overwrite,
			ExportBackup:    flags.backup,
			ExportSchema:    flags.schema,
			JSONFlat:        flags.jsonFlat,

			FieldExcludes:  flags.excludes,
			FieldNull:      flags.null,
			FieldNullValue: flags.nullValue,
			FieldJoin:      flags.join,
			FieldJoinValue: flags.joinValue,
			FieldJoinTrim:  flags.joinTrim,
			FieldTitles:    flags.titles,
			FieldFlatten:   flags.flatten,
			FieldExplode:   flags.explode,
			FieldCompress:  flags.compress,
			FieldReplace:   replacements,

			ReportAdaptersMissing: flags.reportMissing,
			IncludeDates:          flags.includeDates,

			TagsAdd:    flags.tagsAdd,
			TagsRemove: flags.tagsRemove,

			TableMaxRows: flags.rowCap,
			PageProgress: flags.progress,
			DoEcho:       !flags.quiet,
			EchoWriter:   os.Stderr,
		},
	})
	if err != nil {
		return err
	}

	req := &axonius.AssetRequest{
		Query:       flags.query,
		Fields:      qualifiedNames(schema, flags.fields),
		HistoryDate: flags.historyDate,
	}

	state, err := axonius.Export(ctx, svc, req, pipe)
	if err != nil {
		return err
	}

	if !flags.quiet {
		fmt.Fprintf(os.Stderr, "Exported %d rows", state.RowsProcessed)
		if state.OutputPath != "" {
			fmt.Fprintf(os.Stderr, " to %s", state.OutputPath)
		}
		fmt.Fprintln(os.Stderr)
	}
	if n := len(state.CustomCBErrors); n > 0 {
		return fmt.Errorf("%d callback errors during export", n)
	}
	return nil
}

// qualifiedNames maps user-supplied field names to their fully-qualified
// forms for the API request. Pipeline construction already validated them.
func qualifiedNames(schema *fields.Schema, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		f, err := schema.Resolve(name)
		if err != nil {
			out = append(out, name)
			continue
		}
		out = append(out, f.NameQual)
	}
	return out
}

// parseReplacements parses repeated old=new flags.
func parseReplacements(specs []string) ([]export.Replacement, error) {
	out := make([]export.Replacement, 0, len(specs))
	for _, spec := range specs {
		match, replace, ok := strings.Cut(spec, "=")
		if !ok || match == "" {
			return nil, fmt.Errorf("invalid --field-replace %q: want old=new", spec)
		}
		out = append(out, export.Replacement{Match: match, Replace: replace})
	}
	return out, nil
}
