package export

import (
	"strings"
	"text/tabwriter"
)

// tableDefaultMaxRows caps table output so a careless export cannot buffer an
// entire inventory in memory.
const tableDefaultMaxRows = 100000

// tableSink renders rows as an aligned text table. Column widths need the
// whole data set, so rows are buffered and rendered at finish.
type tableSink struct {
	columns []string
	rows    [][]string
}

// defaults forces flat scalar rows and hides the API bookkeeping fields,
// which rarely matter in a human-readable table.
func (s *tableSink) defaults(o *Options) {
	o.FieldNull = true
	o.FieldFlatten = true
	o.FieldJoin = true
	if o.TableMaxRows == 0 {
		o.TableMaxRows = tableDefaultMaxRows
	}
	if !o.TableAPIFields {
		o.FieldExcludes = append(o.FieldExcludes, "adapters", "adapter_list_length")
	}
}

func (s *tableSink) start(p *pipeline) error {
	s.columns = p.finalColumns()
	return nil
}

func (s *tableSink) writeRows(p *pipeline, rows []Row) error {
	for _, row := range rows {
		record := make([]string, len(s.columns))
		for i, col := range s.columns {
			record[i] = tableCell(row[col])
		}
		s.rows = append(s.rows, record)
	}
	return nil
}

func (s *tableSink) finish(p *pipeline) error {
	w := tabwriter.NewWriter(p.target, 2, 4, 2, ' ', 0)
	if err := writeString(w, strings.Join(s.columns, "\t")+"\n"); err != nil {
		return err
	}
	for _, record := range s.rows {
		if err := writeString(w, strings.Join(record, "\t")+"\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// tableCell renders a value for a table column, keeping joined multi-line
// values on one line so alignment survives.
func tableCell(value any) string {
	s := toString(value)
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", "; ")
	return s
}
