package export

import (
	"encoding/json"

	"github.com/axonius-community/go-axonius/fields"
)

// jsonSink streams rows as a JSON array, or as JSON lines when JSONFlat is
// set. Rows are encoded as they arrive; nothing is buffered.
type jsonSink struct {
	wrote bool
}

func (s *jsonSink) defaults(o *Options) {}

func (s *jsonSink) start(p *pipeline) error {
	if p.opts.JSONFlat {
		return nil
	}
	return writeString(p.target, "[\n")
}

func (s *jsonSink) writeRows(p *pipeline, rows []Row) error {
	for _, row := range rows {
		if err := s.writeValue(p, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *jsonSink) writeValue(p *pipeline, value any) error {
	var data []byte
	var err error
	if p.opts.JSONFlat {
		data, err = json.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "  ", "  ")
	}
	if err != nil {
		return err
	}

	if p.opts.JSONFlat {
		return writeString(p.target, string(data)+"\n")
	}

	prefix := "  "
	if s.wrote {
		prefix = ",\n  "
	}
	s.wrote = true
	return writeString(p.target, prefix+string(data))
}

func (s *jsonSink) finish(p *pipeline) error {
	if p.opts.ExportSchema {
		schemas := map[string]any{"schemas": schemaMaps(p.finalSchemas())}
		if err := s.writeValue(p, schemas); err != nil {
			return err
		}
	}
	if p.opts.JSONFlat {
		return nil
	}
	return writeString(p.target, "\n]\n")
}

// schemaMaps serializes field descriptors for schema export.
func schemaMaps(schemas []*fields.Field) []map[string]any {
	out := make([]map[string]any, 0, len(schemas))
	for _, f := range schemas {
		out = append(out, map[string]any{
			"name":         f.Name,
			"name_base":    f.NameBase,
			"name_qual":    f.NameQual,
			"title":        f.Title,
			"column_title": f.ColumnTitle,
			"type":         f.Type,
		})
	}
	return out
}
