package export

import (
	"fmt"
	"sort"
	"strings"
)

// sink is an output format strategy plugged into the shared pipeline. The
// pipeline owns lifecycle and transforms; the sink owns framing and encoding.
type sink interface {
	// defaults adjusts the option set before validation; tabular formats use
	// it to force the stages they cannot render without.
	defaults(o *Options)

	// start writes any header framing. The pipeline's target is open.
	start(p *pipeline) error

	// writeRows encodes one batch of transformed rows.
	writeRows(p *pipeline, rows []Row) error

	// finish writes any footer framing before the target is closed.
	finish(p *pipeline) error
}

// Format names.
const (
	FormatJSON      = "json"
	FormatCSV       = "csv"
	FormatTable     = "table"
	FormatXML       = "xml"
	FormatJSONToCSV = "json_to_csv"
)

var sinkFactories = map[string]func() sink{
	FormatJSON:      func() sink { return &jsonSink{} },
	FormatCSV:       func() sink { return &csvSink{} },
	FormatTable:     func() sink { return &tableSink{} },
	FormatXML:       func() sink { return &xmlSink{} },
	FormatJSONToCSV: func() sink { return &jsonToCSVSink{} },
}

// Formats returns the supported export format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(sinkFactories))
	for name := range sinkFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a pipeline for the named export format. Configuration problems,
// including unresolvable field names, surface here rather than mid-stream.
func New(format string, cfg Config) (Pipeline, error) {
	factory, ok := sinkFactories[strings.ToLower(format)]
	if !ok {
		return nil, &ConfigError{
			Msg:   fmt.Sprintf("unknown export format %q", format),
			Valid: Formats(),
		}
	}
	return newPipeline(strings.ToLower(format), factory(), cfg)
}
