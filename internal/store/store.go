// Package store persists service connections as a YAML catalogue. Records
// are stored as tagged documents carrying the kind discriminator, and
// retrieval reconstructs the concrete variant through the registry, so
// callers always get back the fully-typed connection.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aryankumar/dockyard/internal/connection"
	"github.com/aryankumar/dockyard/internal/util"
)

// record is one persisted connection: the variant's full field set as a
// tagged document. The "kind" key is the discriminator.
type record map[string]any

// catalogue is the on-disk file shape.
type catalogue struct {
	Connections []record `yaml:"connections"`
}

// Store is a file-backed connection repository. It enforces global name
// uniqueness and kind immutability, and implements connection.Repository.
// An empty path keeps the catalogue in memory only, which tests use.
type Store struct {
	mu       sync.RWMutex
	path     string
	registry *connection.Registry
	records  map[string]record // keyed by id
}

// Open loads (or initializes) the catalogue at path.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		registry: connection.Default,
		records:  make(map[string]record),
	}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read connection catalogue: %w", err)
	}

	var cat catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse connection catalogue: %w", err)
	}

	for _, rec := range cat.Connections {
		id, _ := rec["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("catalogue entry without id: %w", util.ErrInvalidConfig)
		}
		s.records[id] = rec
	}

	return s, nil
}

// Create persists a new connection. The name must be unused across all
// variants.
func (s *Store) Create(ctx context.Context, conn connection.Connection) error {
	meta := conn.Meta()
	if meta.ID == "" {
		return fmt.Errorf("connection has no id: %w", util.ErrInvalidConfig)
	}

	rec, err := encode(conn)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[meta.ID]; exists {
		return fmt.Errorf("id %q: %w", meta.ID, util.ErrDuplicateName)
	}
	if id := s.findByNameLocked(meta.Name); id != "" {
		return fmt.Errorf("name %q: %w", meta.Name, util.ErrDuplicateName)
	}

	s.records[meta.ID] = rec
	return s.saveLocked()
}

// Get returns the fully-typed variant for an identifier.
func (s *Store) Get(ctx context.Context, id string) (connection.Connection, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("id %q: %w", id, util.ErrNotFound)
	}
	return s.decode(rec)
}

// GetByName returns the fully-typed variant with the given unique name.
func (s *Store) GetByName(ctx context.Context, name string) (connection.Connection, error) {
	s.mu.RLock()
	id := s.findByNameLocked(name)
	var rec record
	if id != "" {
		rec = s.records[id]
	}
	s.mu.RUnlock()

	if id == "" {
		return nil, fmt.Errorf("name %q: %w", name, util.ErrNotFound)
	}
	return s.decode(rec)
}

// Update replaces an existing record. The kind discriminator is fixed at
// creation; an update carrying a different kind is rejected.
func (s *Store) Update(ctx context.Context, conn connection.Connection) error {
	meta := conn.Meta()

	rec, err := encode(conn)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[meta.ID]
	if !ok {
		return fmt.Errorf("id %q: %w", meta.ID, util.ErrNotFound)
	}
	if kind, _ := existing["kind"].(string); kind != string(meta.Kind) {
		return fmt.Errorf("cannot change kind %q to %q: %w", kind, meta.Kind, util.ErrKindMismatch)
	}
	if id := s.findByNameLocked(meta.Name); id != "" && id != meta.ID {
		return fmt.Errorf("name %q: %w", meta.Name, util.ErrDuplicateName)
	}

	s.records[meta.ID] = rec
	return s.saveLocked()
}

// Delete removes a record by identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("id %q: %w", id, util.ErrNotFound)
	}
	delete(s.records, id)
	return s.saveLocked()
}

// List returns all connections sorted by name.
func (s *Store) List(ctx context.Context) ([]connection.Connection, error) {
	s.mu.RLock()
	recs := make([]record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	conns := make([]connection.Connection, 0, len(recs))
	for _, rec := range recs {
		conn, err := s.decode(rec)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	sort.Slice(conns, func(i, j int) bool {
		return conns[i].Meta().Name < conns[j].Meta().Name
	})
	return conns, nil
}

// findByNameLocked returns the id holding name, or "". Callers must hold
// the lock.
func (s *Store) findByNameLocked(name string) string {
	for id, rec := range s.records {
		if n, _ := rec["name"].(string); n == name {
			return id
		}
	}
	return ""
}

// saveLocked writes the catalogue to disk. Callers must hold the write
// lock. A memory-only store skips the write.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	cat := catalogue{Connections: make([]record, 0, len(s.records))}
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cat.Connections = append(cat.Connections, s.records[id])
	}

	data, err := yaml.Marshal(&cat)
	if err != nil {
		return fmt.Errorf("failed to marshal connection catalogue: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalogue directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write connection catalogue: %w", err)
	}
	return nil
}

// encode flattens a variant into a tagged record via its YAML shape.
func encode(conn connection.Connection) (record, error) {
	raw, err := yaml.Marshal(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection: %w", err)
	}

	var rec record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode connection: %w", err)
	}
	return rec, nil
}

// decode reconstructs the concrete variant named by the record's kind
// tag. The registry's constructor guarantees the returned value is the
// fully-typed variant, never the abstract base.
func (s *Store) decode(rec record) (connection.Connection, error) {
	kind, _ := rec["kind"].(string)
	conn, err := s.registry.New(connection.Kind(kind))
	if err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode connection: %w", err)
	}
	if err := yaml.Unmarshal(raw, conn); err != nil {
		return nil, fmt.Errorf("failed to decode connection: %w", err)
	}
	return conn, nil
}
