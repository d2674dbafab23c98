// Package metadata resolves table and field identifiers to the display
// names the reporting API understands. Lookups are read-only and safe for
// concurrent use once a store is built.
package metadata

import (
	"fmt"
	"strings"
)

// Provider resolves metadata identifiers to display names. A missing
// identifier is an error: the compiler treats it as a precondition
// violation by the caller, never recovers from it.
type Provider interface {
	TableName(id int) (string, error)
	FieldName(id int) (string, error)
}

// Store is an in-memory Provider backed by plain maps.
type Store struct {
	tables map[int]string
	fields map[int]string
}

// NewStore builds a Store from table and field name maps. Names are
// trimmed; empty names are rejected.
func NewStore(tables, fields map[int]string) (*Store, error) {
	normTables, err := normalizeNames("table", tables)
	if err != nil {
		return nil, err
	}
	normFields, err := normalizeNames("field", fields)
	if err != nil {
		return nil, err
	}
	return &Store{tables: normTables, fields: normFields}, nil
}

// TableName returns the display name for a table identifier.
func (s *Store) TableName(id int) (string, error) {
	name, ok := s.tables[id]
	if !ok {
		return "", fmt.Errorf("metadata: no table with id %d", id)
	}
	return name, nil
}

// FieldName returns the display name for a field identifier.
func (s *Store) FieldName(id int) (string, error) {
	name, ok := s.fields[id]
	if !ok {
		return "", fmt.Errorf("metadata: no field with id %d", id)
	}
	return name, nil
}

func normalizeNames(kind string, src map[int]string) (map[int]string, error) {
	dst := make(map[int]string, len(src))
	for id, name := range src {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("metadata: %s %d has an empty name", kind, id)
		}
		dst[id] = name
	}
	return dst, nil
}
