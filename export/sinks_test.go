package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonius-community/go-axonius/export"
)

func TestJSONSink(t *testing.T) {
	t.Run("round trips rows", func(t *testing.T) {
		out := exportJSON(t, export.Config{}, deviceRow(), deviceRow(), deviceRow())
		require.Len(t, out, 3)
		assert.Equal(t, "abc123", out[0]["internal_axon_id"])
	})

	t.Run("empty export is a valid document", func(t *testing.T) {
		data := runExport(t, export.FormatJSON, export.Config{})

		var out []map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Empty(t, out)
	})

	t.Run("schema export appends one element", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"hostname"},
			Options: export.Options{ExportSchema: true},
		}
		out := exportJSON(t, cfg, deviceRow(), deviceRow())
		require.Len(t, out, 3)

		schemas, ok := out[2]["schemas"].([]any)
		require.True(t, ok, "last element should carry the schemas")

		first := schemas[0].(map[string]any)
		assert.Contains(t, first, "name_qual")
		assert.Contains(t, first, "title")
	})

	t.Run("flat mode writes one object per line", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{JSONFlat: true},
		}
		data := runExport(t, export.FormatJSON, cfg, deviceRow(), deviceRow())

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		for _, line := range lines {
			var row map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &row))
			assert.Equal(t, "abc123", row["internal_axon_id"])
		}
	})
}

func TestCSVSink(t *testing.T) {
	t.Run("header and identity round trip", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"hostname"},
			Options: export.Options{FieldTitles: true},
		}
		data := runExport(t, export.FormatCSV, cfg, deviceRow())

		text := string(data)
		require.True(t, strings.HasPrefix(text, "\ufeff"), "output should start with a UTF-8 BOM")

		records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff"))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)

		header := records[0]
		assert.Contains(t, header, "Aggregated: Axonius Unique ID")
		assert.Contains(t, header, "Aggregated: Host Name")

		idx := -1
		for i, col := range header {
			if col == "Aggregated: Axonius Unique ID" {
				idx = i
			}
		}
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, "abc123", records[1][idx])
	})

	t.Run("forces flat scalar rows", func(t *testing.T) {
		// Complex and missing fields must still render: flatten, join, and
		// null fill are forced on regardless of the configured options.
		cfg := export.Config{
			Fields: []string{"network_interfaces", "last_seen"},
		}
		data := runExport(t, export.FormatCSV, cfg, deviceRow())

		records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)

		header := records[0]
		assert.Contains(t, header, "specific_data.data.network_interfaces.ips")
		assert.NotContains(t, header, "specific_data.data.network_interfaces")

		for i, col := range header {
			if col == "specific_data.data.network_interfaces.ips" {
				assert.Equal(t, "10.0.0.1\n10.0.0.2\n192.168.1.5", records[1][i])
			}
		}
	})

	t.Run("schema rows carry names and types", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"hostname"},
			Options: export.Options{ExportSchema: true},
		}
		data := runExport(t, export.FormatCSV, cfg, deviceRow())

		records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4, "header, two schema rows, one data row")

		assert.Contains(t, records[1], "specific_data.data.hostname")
		assert.Contains(t, records[2], "string")
	})
}

func TestTableSink(t *testing.T) {
	t.Run("renders aligned columns at stop", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := export.New(export.FormatTable, export.Config{
			Schema: testSchema(t),
			Fields: []string{"hostname"},
			Options: export.Options{
				ExportFD:    &buf,
				FieldTitles: true,
			},
		})
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, p.Start(ctx))
		_, err = p.ProcessRows(ctx, deviceRow())
		require.NoError(t, err)

		assert.Empty(t, buf.String(), "table output is buffered until stop")

		require.NoError(t, p.Stop(ctx))

		text := buf.String()
		assert.Contains(t, text, "Aggregated: Host Name")
		assert.Contains(t, text, "web-1")
		assert.Contains(t, text, "abc123")
	})

	t.Run("hides api fields by default", func(t *testing.T) {
		data := runExport(t, export.FormatTable, export.Config{}, deviceRow())
		text := string(data)
		assert.NotContains(t, text, "adapter_list_length")
		assert.Contains(t, text, "internal_axon_id")
	})

	t.Run("keeps api fields on request", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{TableAPIFields: true},
		}
		data := runExport(t, export.FormatTable, cfg, deviceRow())
		assert.Contains(t, string(data), "adapter_list_length")
	})
}

func TestXMLSink(t *testing.T) {
	t.Run("frames rows by asset type", func(t *testing.T) {
		cfg := export.Config{AssetType: "devices"}
		data := runExport(t, export.FormatXML, cfg, deviceRow(), deviceRow())

		text := string(data)
		assert.Contains(t, text, "<devices>")
		assert.Contains(t, text, "</devices>")
		assert.Equal(t, 2, strings.Count(text, "<device>"))
		assert.Contains(t, text, "<internal_axon_id>abc123</internal_axon_id>")
	})

	t.Run("escapes values and sanitizes element names", func(t *testing.T) {
		cfg := export.Config{AssetType: "devices"}
		row := export.Row{
			"internal_axon_id":            "abc123",
			"specific_data.data.hostname": "web<1>&co",
		}
		data := runExport(t, export.FormatXML, cfg, row)

		text := string(data)
		assert.Contains(t, text, "<specific_data.data.hostname>")
		assert.Contains(t, text, "web&lt;1&gt;&amp;co")
	})

	t.Run("renders nested complex values", func(t *testing.T) {
		cfg := export.Config{AssetType: "devices"}
		data := runExport(t, export.FormatXML, cfg, deviceRow())

		text := string(data)
		assert.Contains(t, text, "<mac>aa:bb:cc:dd:ee:ff</mac>")
		assert.Contains(t, text, "<ips>10.0.0.1</ips>")
		assert.Contains(t, text, "<ips>10.0.0.2</ips>")
	})
}

func TestJSONToCSVSink(t *testing.T) {
	data := runExport(t, export.FormatJSONToCSV, export.Config{
		Fields: []string{"network_interfaces"},
	}, deviceRow())

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)

	row := out[0]
	// CSV shaping is forced: complex fields flattened, lists joined.
	assert.NotContains(t, row, "specific_data.data.network_interfaces")
	assert.Equal(t, "10.0.0.1\n10.0.0.2\n192.168.1.5", row["specific_data.data.network_interfaces.ips"])
	assert.Equal(t, "abc123", row["internal_axon_id"])
}
