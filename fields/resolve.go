package fields

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a requested field name resolved to nothing.
type NotFoundError struct {
	Field string
	Valid []string
}

func (e *NotFoundError) Error() string {
	if len(e.Valid) > 0 {
		return fmt.Sprintf("fields: field %q not found, valid fields: %s",
			e.Field, strings.Join(e.Valid, ", "))
	}
	return fmt.Sprintf("fields: field %q not found", e.Field)
}

// Resolve maps a requested field name or alias to its descriptor.
//
// Accepted forms, checked in order:
//
//   - "MANUAL:x" passes through as a synthetic string descriptor
//   - "adapter:field" shorthand, where adapter may be one of the aggregated
//     aliases (generic, general, specific, agg, aggregated)
//   - a qualified name, base name, title, or column title of any field
//   - a dotted sub-field of a complex field ("installed_software.name" or
//     its fully-qualified form)
//
// Matching is case-insensitive. Resolve is pure: same schema snapshot, same
// result.
func (s *Schema) Resolve(name string) (*Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &NotFoundError{Field: name}
	}

	if manual, ok := strings.CutPrefix(name, ManualPrefix); ok {
		return manualField(manual), nil
	}

	if adapter, rest, ok := strings.Cut(name, ":"); ok {
		return s.resolveAdapter(adapter, rest, name)
	}

	if f := s.lookup(s.all, name); f != nil {
		return f, nil
	}

	if f := s.lookupSub(s.all, name); f != nil {
		return f, nil
	}

	return nil, &NotFoundError{Field: name, Valid: s.validNames()}
}

// ResolveAll resolves every name, failing on the first miss.
func (s *Schema) ResolveAll(names []string) ([]*Field, error) {
	resolved := make([]*Field, 0, len(names))
	for _, name := range names {
		f, err := s.Resolve(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, f)
	}
	return resolved, nil
}

func (s *Schema) resolveAdapter(adapter, rest, original string) (*Field, error) {
	adapter = strings.ToLower(strings.TrimSpace(adapter))
	if aggAliases[adapter] {
		adapter = AggAdapter
	} else {
		adapter = strings.TrimSuffix(adapter, "_adapter")
	}

	candidates := s.byAdapter[adapter]
	if candidates == nil {
		candidates = s.byAdapter[adapter+"_adapter"]
	}
	if candidates == nil {
		return nil, &NotFoundError{Field: original, Valid: s.adapters}
	}

	if f := s.lookup(candidates, rest); f != nil {
		return f, nil
	}
	if f := s.lookupSub(candidates, rest); f != nil {
		return f, nil
	}
	return nil, &NotFoundError{Field: original, Valid: names(candidates)}
}

// lookup finds a field whose qualified name, short name, base name, title, or
// column title equals the query, case-insensitively. Earlier fields win, so
// aggregated fields shadow adapter-specific ones.
func (s *Schema) lookup(candidates []*Field, query string) *Field {
	for _, f := range candidates {
		if fieldMatches(f, query) {
			return f
		}
	}
	return nil
}

// lookupSub resolves dotted sub-field references of complex fields.
func (s *Schema) lookupSub(candidates []*Field, query string) *Field {
	parent, sub, ok := splitLastDot(candidates, query)
	if !ok {
		return nil
	}
	for _, f := range parent.SubFields {
		if fieldMatches(f, sub) {
			return f
		}
	}
	return nil
}

// splitLastDot finds the complex candidate field that is a dotted prefix of
// the query and returns it with the remaining suffix.
func splitLastDot(candidates []*Field, query string) (*Field, string, bool) {
	for _, f := range candidates {
		if !f.IsComplex {
			continue
		}
		for _, prefix := range []string{f.NameQual, f.NameBase, f.Name} {
			if rest, ok := cutPrefixFold(query, prefix+"."); ok {
				return f, rest, true
			}
		}
	}
	return nil, "", false
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func fieldMatches(f *Field, query string) bool {
	for _, key := range []string{f.NameQual, f.Name, f.NameBase, f.Title, f.ColumnTitle} {
		if strings.EqualFold(key, query) {
			return true
		}
	}
	return false
}

// manualField synthesizes a passthrough descriptor for a literal field name.
func manualField(name string) *Field {
	return &Field{
		Name:         name,
		NameBase:     name,
		NameQual:     name,
		Title:        name,
		ColumnTitle:  name,
		Type:         "string",
		AdapterName:  "manual",
		AdapterTitle: "Manual",
		IsRoot:       true,
		Custom:       true,
	}
}

func (s *Schema) validNames() []string {
	return names(s.all)
}

func names(fs []*Field) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.NameQual)
	}
	return out
}
