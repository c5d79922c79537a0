package export

import (
	"encoding/csv"
)

// utf8BOM keeps spreadsheet tools from misreading non-ASCII values.
const utf8BOM = "\ufeff"

// csvSink streams rows as CSV. Columns are fixed at the first write from the
// predicted final schemas; rows missing a column get an empty cell.
type csvSink struct {
	w       *csv.Writer
	columns []string
}

// defaults forces the stages CSV cannot render without: flat rows with a
// uniform key set and scalar cells.
func (s *csvSink) defaults(o *Options) {
	o.FieldNull = true
	o.FieldFlatten = true
	o.FieldJoin = true
}

func (s *csvSink) start(p *pipeline) error {
	if err := writeString(p.target, utf8BOM); err != nil {
		return err
	}
	s.w = csv.NewWriter(p.target)
	s.columns = p.finalColumns()

	if err := s.w.Write(s.columns); err != nil {
		return err
	}
	if p.opts.ExportSchema {
		if err := s.writeSchemaRows(p); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

// writeSchemaRows emits two extra header rows carrying the qualified name and
// the type of each column.
func (s *csvSink) writeSchemaRows(p *pipeline) error {
	schemas := p.finalSchemas()
	names := make([]string, 0, len(schemas))
	types := make([]string, 0, len(schemas))
	for _, f := range schemas {
		names = append(names, f.NameQual)
		types = append(types, f.Type)
	}
	if err := s.w.Write(names); err != nil {
		return err
	}
	return s.w.Write(types)
}

func (s *csvSink) writeRows(p *pipeline, rows []Row) error {
	for _, row := range rows {
		record := make([]string, len(s.columns))
		for i, col := range s.columns {
			record[i] = toString(row[col])
		}
		if err := s.w.Write(record); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) finish(p *pipeline) error {
	s.w.Flush()
	return s.w.Error()
}
