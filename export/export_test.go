package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axonius-community/go-axonius/export"
	"github.com/axonius-community/go-axonius/fields"
)

// testSchema builds a schema with aggregated fields, one complex field, and
// one adapter-specific field sharing a base name with an aggregated one.
func testSchema(t *testing.T) *fields.Schema {
	t.Helper()
	schema, err := fields.Parse(fields.Response{
		"agg": {
			{Name: "internal_axon_id", Title: "Axonius Unique ID", Type: "string", IsRoot: true},
			{Name: "adapters", Title: "Adapters", Type: "array", IsRoot: true},
			{Name: "adapter_list_length", Title: "Adapter Count", Type: "integer", IsRoot: true},
			{Name: "specific_data.data.hostname", Title: "Host Name", Type: "string", IsRoot: true},
			{Name: "specific_data.data.last_seen", Title: "Last Seen", Type: "string", IsRoot: true},
			{
				Name: "specific_data.data.network_interfaces", Title: "Network Interfaces",
				Type: "array", IsRoot: true,
				SubFields: []fields.RawField{
					{Name: "ips", Title: "IPs", Type: "array", IsRoot: true},
					{Name: "mac", Title: "MAC", Type: "string", IsRoot: true},
					{Name: "subnets", Title: "Subnets", Type: "array", IsRoot: false},
				},
			},
		},
		"aws_adapter": {
			{Name: "adapters_data.aws_adapter.hostname", Title: "Host Name", Type: "string", IsRoot: true},
		},
	})
	require.NoError(t, err)
	return schema
}

// deviceRow is one realistic raw asset row.
func deviceRow() export.Row {
	return export.Row{
		"internal_axon_id":            "abc123",
		"adapters":                    []any{"aws_adapter"},
		"adapter_list_length":         float64(1),
		"specific_data.data.hostname": "web-1",
		"specific_data.data.network_interfaces": []any{
			map[string]any{
				"ips":     []any{"10.0.0.1", "10.0.0.2"},
				"mac":     "aa:bb:cc:dd:ee:ff",
				"subnets": []any{"10.0.0.0/24"},
			},
			map[string]any{
				"ips": []any{"192.168.1.5"},
				"mac": "11:22:33:44:55:66",
			},
		},
		"adapters_data.aws_adapter.hostname": "web-1",
	}
}

// runExport pushes the rows through a fresh pipeline and returns the raw
// output. Fatal on any lifecycle error.
func runExport(t *testing.T, format string, cfg export.Config, rows ...export.Row) []byte {
	t.Helper()

	var buf bytes.Buffer
	cfg.Schema = testSchema(t)
	cfg.Options.ExportFD = &buf

	p, err := export.New(format, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	_, err = p.ProcessRows(ctx, rows...)
	require.NoError(t, err)
	require.NoError(t, p.Stop(ctx))

	return buf.Bytes()
}

// exportJSON runs a json export and decodes the array output.
func exportJSON(t *testing.T, cfg export.Config, rows ...export.Row) []map[string]any {
	t.Helper()
	data := runExport(t, export.FormatJSON, cfg, rows...)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// fakeLabeler records bulk label calls.
type fakeLabeler struct {
	addCalls    int
	removeCalls int
	added       [][]string
	removed     [][]string
	failAdd     error
}

func (l *fakeLabeler) AddLabels(ctx context.Context, labels []string, ids []string) (int, error) {
	l.addCalls++
	if l.failAdd != nil {
		return 0, l.failAdd
	}
	l.added = append(l.added, ids)
	return len(ids), nil
}

func (l *fakeLabeler) RemoveLabels(ctx context.Context, labels []string, ids []string) (int, error) {
	l.removeCalls++
	l.removed = append(l.removed, ids)
	return len(ids), nil
}
