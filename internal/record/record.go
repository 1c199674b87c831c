package record

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownField = errors.New("unknown field")

// Fields is the generic field-name-to-value shape used at the persistence
// boundary. Scenario packages keep typed structs; this map only carries
// values in and out of the store.
type Fields map[string]any

// Schema names the fields a record may carry and which subset must be
// non-empty before the record counts as complete.
type Schema struct {
	Required []string
	Optional []string
}

func (s Schema) allows(name string) bool {
	for _, f := range s.Required {
		if f == name {
			return true
		}
	}
	for _, f := range s.Optional {
		if f == name {
			return true
		}
	}
	return false
}

// Store keeps in-memory records keyed by an application-chosen id.
// Records are created on first update and mutated field-by-field;
// last write per field wins.
type Store struct {
	mu     sync.RWMutex
	schema Schema
	recs   map[string]Fields
}

func New(schema Schema) *Store {
	return &Store{schema: schema, recs: make(map[string]Fields)}
}

// Update merges the non-nil fields of partial into the record identified by
// id, creating it if absent. Field names outside the schema are rejected and
// nothing is merged.
func (s *Store) Update(id string, partial Fields) (Fields, error) {
	for name := range partial {
		if !s.schema.allows(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		rec = make(Fields)
		s.recs[id] = rec
	}
	for name, val := range partial {
		if val == nil {
			continue
		}
		rec[name] = val
	}
	return cloneFields(rec), nil
}

// Get returns a copy of the record, or ok=false if it was never updated.
func (s *Store) Get(id string) (Fields, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, false
	}
	return cloneFields(rec), true
}

// Complete reports whether every required field of the record is non-empty.
// A record that was never updated is never complete.
func (s *Store) Complete(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return false
	}
	for _, name := range s.schema.Required {
		if empty(rec[name]) {
			return false
		}
	}
	return true
}

// Missing lists the required fields still empty on the record, in schema order.
func (s *Store) Missing(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.recs[id]
	var out []string
	for _, name := range s.schema.Required {
		if empty(rec[name]) {
			out = append(out, name)
		}
	}
	return out
}

// Clear discards the record's in-memory state, e.g. after finalization.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	delete(s.recs, id)
	s.mu.Unlock()
}

func cloneFields(rec Fields) Fields {
	out := make(Fields, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
