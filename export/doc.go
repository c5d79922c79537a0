// Package export implements the streaming asset export pipeline: raw API
// rows go through a fixed sequence of transform stages and into a format
// sink (json, csv, table, xml, json_to_csv).
//
// A pipeline is built once per run with New, then driven through its
// lifecycle: Start exactly once, ProcessRows per fetched page, Stop exactly
// once. Stop must run even after errors so the output target is released and
// pending tag mutations are flushed.
//
//	p, err := export.New(export.FormatCSV, export.Config{
//		Schema: schema,
//		Fields: []string{"hostname", "network_interfaces"},
//		Options: export.Options{
//			ExportFile:  "devices.csv",
//			FieldTitles: true,
//		},
//	})
//
// Rows are transformed page by page; only the table and xml sinks buffer,
// because their output cannot be framed incrementally. A *StopFetchError
// from ProcessRows means the configured row cap was reached: stop fetching
// and call Stop.
package export
