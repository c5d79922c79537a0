// Package axonius provides a native Go client for the Axonius
// asset-management REST API.
//
// # Features
//
//   - Service-based architecture for devices and users
//   - Modern Go 1.25+ iterators for pagination
//   - Typed errors for precise error handling
//   - Functional options for flexible configuration
//   - Streaming asset export pipelines (JSON, CSV, XML, table)
//
// # Quick Start
//
//	client, err := axonius.NewClient(
//	    axonius.WithBaseURL("https://axonius.example.com"),
//	    axonius.WithAPIKey(apiKey, apiSecret),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req := &axonius.AssetRequest{
//	    Query:  `(specific_data.data.os.type == "Windows")`,
//	    Fields: []string{"hostname", "network_interfaces"},
//	}
//
//	for row, err := range client.Devices.Get(ctx, req) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row["internal_axon_id"])
//	}
//
// # Error Handling
//
// The package uses typed errors that can be inspected with errors.As:
//
//	_, err := client.Devices.Count(ctx, "bad query")
//	if err != nil {
//	    var validation *axonius.ValidationError
//	    if errors.As(err, &validation) {
//	        // Handle invalid query
//	    }
//	}
//
// # Exporting Assets
//
// The export package transforms a paged stream of raw asset rows into a
// chosen output format. Export drives the paging loop and the pipeline
// lifecycle:
//
//	schema, err := client.Devices.Fields(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := export.New("csv", export.Config{
//	    Schema: schema,
//	    Fields: []string{"hostname", "network_interfaces"},
//	    Options: export.Options{
//	        ExportFile:  "devices.csv",
//	        FieldTitles: true,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	view, err := axonius.Export(ctx, client.Devices, req, pipeline)
package axonius
