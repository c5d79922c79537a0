package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// xmlSink renders rows as an XML document. The encoder needs the full
// document to frame it, so rows are buffered and written at finish.
type xmlSink struct {
	rows []Row
}

func (s *xmlSink) defaults(o *Options) {}

func (s *xmlSink) start(p *pipeline) error {
	return nil
}

func (s *xmlSink) writeRows(p *pipeline, rows []Row) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *xmlSink) finish(p *pipeline) error {
	var b strings.Builder
	b.WriteString(xml.Header)

	root := elementName(p.cfg.AssetType)
	item := singular(root)

	b.WriteString("<" + root + ">\n")
	for _, row := range s.rows {
		b.WriteString("  <" + item + ">\n")
		for _, key := range sortedKeys(row) {
			writeXMLValue(&b, "    ", elementName(key), row[key])
		}
		b.WriteString("  </" + item + ">\n")
	}
	b.WriteString("</" + root + ">\n")

	return writeString(p.target, b.String())
}

func writeXMLValue(b *strings.Builder, indent, name string, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString(indent + "<" + name + "/>\n")
	case []any:
		for _, item := range v {
			writeXMLValue(b, indent, name, item)
		}
	case map[string]any:
		b.WriteString(indent + "<" + name + ">\n")
		for _, key := range sortedKeys(v) {
			writeXMLValue(b, indent+"  ", elementName(key), v[key])
		}
		b.WriteString(indent + "</" + name + ">\n")
	default:
		b.WriteString(indent + "<" + name + ">")
		xml.EscapeText(b, []byte(fmt.Sprint(v)))
		b.WriteString("</" + name + ">\n")
	}
}

// elementName sanitizes an arbitrary column name into a valid XML element
// name.
func elementName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == '.', r == '-':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// singular derives the per-row element name from the collection name.
func singular(name string) string {
	if strings.HasSuffix(name, "s") && len(name) > 1 {
		return name[:len(name)-1]
	}
	return name + "_item"
}
