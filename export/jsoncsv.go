package export

// jsonToCSVSink emits CSV-shaped rows (flat, joined, uniform keys) encoded as
// a JSON array, for consumers that want tabular data without CSV parsing.
type jsonToCSVSink struct {
	jsonSink
}

// defaults forces the same stages as CSV so every row serializes to the same
// flat shape.
func (s *jsonToCSVSink) defaults(o *Options) {
	o.FieldNull = true
	o.FieldFlatten = true
	o.FieldJoin = true
}
