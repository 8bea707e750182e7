package ingest

import (
	"strings"

	"logistica/infrastructure/apperr"
)

// Field names a target record field in a Mapping.
type Field string

// Column declares the header aliases accepted for one field, in priority order.
type Column struct {
	Field    Field
	Label    string
	Aliases  []string
	Required bool
}

// Mapping is the declarative field -> aliases table for one record type.
type Mapping []Column

// Columns is a Mapping resolved against a header row: field -> index, -1 when
// the file has no such column.
type Columns map[Field]int

// ResolveHeader returns the index of the first alias (in alias order) that
// matches a header cell, case-insensitive and trimmed. -1 when none match.
func ResolveHeader(header []string, aliases []string) int {
	for _, alias := range aliases {
		want := strings.TrimSpace(alias)
		for i, cell := range header {
			if strings.EqualFold(cleanField(cell), want) {
				return i
			}
		}
	}
	return -1
}

// Resolve evaluates the mapping once for a file. A required field without a
// matching header fails with a MissingHeader error naming the field.
func (m Mapping) Resolve(header []string) (Columns, error) {
	cols := make(Columns, len(m))
	for _, c := range m {
		idx := ResolveHeader(header, c.Aliases)
		if idx < 0 && c.Required {
			label := c.Label
			if label == "" {
				label = string(c.Field)
			}
			return nil, apperr.MissingHeader(label)
		}
		cols[c.Field] = idx
	}
	return cols, nil
}
