package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonius-community/go-axonius/export"
)

func TestFieldNull(t *testing.T) {
	t.Run("fills missing selected fields", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"hostname", "last_seen"},
			Options: export.Options{FieldNull: true},
		}
		row := export.Row{"internal_axon_id": "abc123"}

		out := exportJSON(t, cfg, row)
		require.Len(t, out, 1)
		assert.Contains(t, out[0], "specific_data.data.hostname")
		assert.Nil(t, out[0]["specific_data.data.hostname"])
		assert.Contains(t, out[0], "specific_data.data.last_seen")
	})

	t.Run("custom null value", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"hostname"},
			Options: export.Options{FieldNull: true, FieldNullValue: "N/A"},
		}
		out := exportJSON(t, cfg, export.Row{"internal_axon_id": "abc123"})
		assert.Equal(t, "N/A", out[0]["specific_data.data.hostname"])
	})

	t.Run("fills sub-fields of complex values", func(t *testing.T) {
		cfg := export.Config{
			Fields:  []string{"network_interfaces"},
			Options: export.Options{FieldNull: true},
		}
		row := export.Row{
			"internal_axon_id": "abc123",
			"specific_data.data.network_interfaces": []any{
				map[string]any{"ips": []any{"10.0.0.1"}},
			},
		}
		out := exportJSON(t, cfg, row)

		nics := out[0]["specific_data.data.network_interfaces"].([]any)
		nic := nics[0].(map[string]any)
		assert.Contains(t, nic, "mac")
		assert.Nil(t, nic["mac"])
	})

	t.Run("idempotent with exclude", func(t *testing.T) {
		// A field that is both null-filled and excluded must not reappear.
		cfg := export.Config{
			Fields: []string{"hostname", "last_seen"},
			Options: export.Options{
				FieldNull:     true,
				FieldExcludes: []string{"last_seen"},
			},
		}
		out := exportJSON(t, cfg, export.Row{"internal_axon_id": "abc123"})
		assert.Contains(t, out[0], "specific_data.data.hostname")
		assert.NotContains(t, out[0], "specific_data.data.last_seen")
	})
}

func TestFieldExcludes(t *testing.T) {
	t.Run("removes fields by any name form", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExcludes: []string{"hostname", "adapter_list_length"}},
		}
		out := exportJSON(t, cfg, deviceRow())
		assert.NotContains(t, out[0], "specific_data.data.hostname")
		assert.NotContains(t, out[0], "adapter_list_length")
		assert.Contains(t, out[0], "internal_axon_id")
	})

	t.Run("missing excluded field is not an error", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExcludes: []string{"hostname"}},
		}
		out := exportJSON(t, cfg, export.Row{"internal_axon_id": "abc123"})
		require.Len(t, out, 1)
	})

	t.Run("removes sub-fields of complex values", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExcludes: []string{"network_interfaces.mac"}},
		}
		out := exportJSON(t, cfg, deviceRow())

		nics := out[0]["specific_data.data.network_interfaces"].([]any)
		for _, item := range nics {
			assert.NotContains(t, item.(map[string]any), "mac")
		}
	})
}

func TestFieldExplode(t *testing.T) {
	t.Run("simple field fans out one row per value", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExplode: "adapters"},
		}
		row := deviceRow()
		row["adapters"] = []any{"aws_adapter", "crowdstrike_adapter"}

		out := exportJSON(t, cfg, row)
		require.Len(t, out, 2)
		assert.Equal(t, "aws_adapter", out[0]["adapters"])
		assert.Equal(t, "crowdstrike_adapter", out[1]["adapters"])
		// Copies must not share state with each other.
		assert.Equal(t, out[0]["internal_axon_id"], out[1]["internal_axon_id"])
	})

	t.Run("complex field lifts root sub-fields", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExplode: "network_interfaces"},
		}
		out := exportJSON(t, cfg, deviceRow())
		require.Len(t, out, 2)

		assert.Equal(t, "aa:bb:cc:dd:ee:ff", out[0]["specific_data.data.network_interfaces.mac"])
		assert.Equal(t, "11:22:33:44:55:66", out[1]["specific_data.data.network_interfaces.mac"])
		assert.NotContains(t, out[0], "specific_data.data.network_interfaces")
	})

	t.Run("empty value passes the row through unchanged", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldExplode: "network_interfaces"},
		}
		row := export.Row{"internal_axon_id": "abc123"}
		out := exportJSON(t, cfg, row)
		require.Len(t, out, 1)
	})

	t.Run("excluded explode field skips explode", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{
				FieldExplode:  "network_interfaces",
				FieldExcludes: []string{"network_interfaces"},
			},
		}
		out := exportJSON(t, cfg, deviceRow())
		require.Len(t, out, 1)
		assert.NotContains(t, out[0], "specific_data.data.network_interfaces")
	})

	t.Run("unknown explode field fails at construction", func(t *testing.T) {
		_, err := export.New(export.FormatJSON, export.Config{
			Schema:  testSchema(t),
			Options: export.Options{FieldExplode: "bogus"},
		})
		require.Error(t, err)
	})
}

func TestFieldFlatten(t *testing.T) {
	cfg := export.Config{
		Options: export.Options{FieldFlatten: true},
	}
	out := exportJSON(t, cfg, deviceRow())
	require.Len(t, out, 1)
	row := out[0]

	assert.NotContains(t, row, "specific_data.data.network_interfaces")

	ips, ok := row["specific_data.data.network_interfaces.ips"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"10.0.0.1", "10.0.0.2", "192.168.1.5"}, ips)

	macs, ok := row["specific_data.data.network_interfaces.mac"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"aa:bb:cc:dd:ee:ff", "11:22:33:44:55:66"}, macs)

	// Non-root sub-fields do not surface.
	assert.NotContains(t, row, "specific_data.data.network_interfaces.subnets")
}

func TestFieldJoin(t *testing.T) {
	t.Run("joins list values", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldJoin: true},
		}
		out := exportJSON(t, cfg, deviceRow())
		assert.Equal(t, "aws_adapter", out[0]["adapters"])
	})

	t.Run("scalar values are untouched", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldJoin: true},
		}
		out := exportJSON(t, cfg, deviceRow())
		assert.Equal(t, "web-1", out[0]["specific_data.data.hostname"])
	})

	t.Run("custom joiner", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{
				FieldJoin:      true,
				FieldFlatten:   true,
				FieldJoinValue: ";",
			},
		}
		out := exportJSON(t, cfg, deviceRow())
		assert.Equal(t, "10.0.0.1;10.0.0.2;192.168.1.5", out[0]["specific_data.data.network_interfaces.ips"])
	})

	t.Run("trims long values with a marker", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldJoin: true, FieldJoinTrim: 10},
		}
		row := export.Row{
			"internal_axon_id":            "abc123",
			"specific_data.data.hostname": strings.Repeat("x", 50),
		}
		out := exportJSON(t, cfg, row)

		value := out[0]["specific_data.data.hostname"].(string)
		assert.True(t, strings.HasPrefix(value, strings.Repeat("x", 10)))
		assert.Contains(t, value, "TRIMMED - 40 characters over 10")
	})

	t.Run("negative trim disables trimming", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldJoin: true, FieldJoinTrim: -1},
		}
		long := strings.Repeat("x", 40000)
		row := export.Row{"internal_axon_id": "abc123", "specific_data.data.hostname": long}
		out := exportJSON(t, cfg, row)
		assert.Equal(t, long, out[0]["specific_data.data.hostname"])
	})
}

func TestFieldTitles(t *testing.T) {
	cfg := export.Config{
		Options: export.Options{FieldTitles: true},
	}
	out := exportJSON(t, cfg, deviceRow())
	row := out[0]

	assert.Contains(t, row, "Aggregated: Host Name")
	assert.Contains(t, row, "Aggregated: Axonius Unique ID")
	assert.Contains(t, row, "Aws: Host Name")
	assert.NotContains(t, row, "specific_data.data.hostname")
}

func TestFieldCompress(t *testing.T) {
	t.Run("drops adapter columns duplicating aggregated values", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldCompress: true},
		}
		out := exportJSON(t, cfg, deviceRow())
		row := out[0]

		assert.Contains(t, row, "specific_data.data.hostname")
		assert.NotContains(t, row, "adapters_data.aws_adapter.hostname")
	})

	t.Run("keeps adapter columns with differing values", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{FieldCompress: true},
		}
		row := deviceRow()
		row["adapters_data.aws_adapter.hostname"] = "web-1.internal"

		out := exportJSON(t, cfg, row)
		assert.Contains(t, out[0], "adapters_data.aws_adapter.hostname")
	})
}

func TestFieldReplace(t *testing.T) {
	cfg := export.Config{
		Options: export.Options{
			FieldTitles: true,
			FieldReplace: []export.Replacement{
				{Match: ":", Replace: " -"},
			},
		},
	}
	out := exportJSON(t, cfg, deviceRow())
	assert.Contains(t, out[0], "Aggregated - Host Name")
	assert.NotContains(t, out[0], "Aggregated: Host Name")
}

func TestReportFields(t *testing.T) {
	t.Run("adapters missing", func(t *testing.T) {
		cfg := export.Config{
			AdapterNames: []string{"aws_adapter", "crowdstrike_adapter", "tanium_adapter"},
			Options:      export.Options{ReportAdaptersMissing: true},
		}
		out := exportJSON(t, cfg, deviceRow())

		missing, ok := out[0]["adapters_missing"].([]any)
		require.True(t, ok)
		assert.ElementsMatch(t, []any{"crowdstrike_adapter", "tanium_adapter"}, missing)
	})

	t.Run("include dates stamps every row", func(t *testing.T) {
		cfg := export.Config{
			Options: export.Options{IncludeDates: true},
		}
		out := exportJSON(t, cfg, deviceRow(), deviceRow())
		require.Len(t, out, 2)
		assert.NotEmpty(t, out[0]["fetch_date"])
		assert.Equal(t, out[0]["fetch_date"], out[1]["fetch_date"])
	})

	t.Run("report fields get titles", func(t *testing.T) {
		cfg := export.Config{
			AdapterNames: []string{"aws_adapter"},
			Options: export.Options{
				ReportAdaptersMissing: true,
				IncludeDates:          true,
				FieldTitles:           true,
			},
		}
		out := exportJSON(t, cfg, deviceRow())
		assert.Contains(t, out[0], "Report: Adapters Missing")
		assert.Contains(t, out[0], "Report: Fetch Date")
	})
}
