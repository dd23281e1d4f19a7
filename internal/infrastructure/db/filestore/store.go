// Package filestore keeps each collection in a JSON file under a data
// directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zetas/barbershop/internal/core/ports"
)

var emptyCollection = []byte("[]")

// Store is a ports.RecordStore backed by <dir>/<kind>.json. Mutations are
// serialized per process, and writes go through a temp file and rename so a
// crash never leaves a half-written collection.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Read(_ context.Context, kind ports.RecordKind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(kind)
}

func (s *Store) Write(_ context.Context, kind ports.RecordKind, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(kind, data)
}

func (s *Store) Mutate(_ context.Context, kind ports.RecordKind, fn ports.MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(kind)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.write(kind, next)
}

// Ping checks that the data directory is usable.
func (s *Store) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	return nil
}

func (s *Store) path(kind ports.RecordKind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

func (s *Store) read(kind ports.RecordKind) ([]byte, error) {
	p := s.path(kind)
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.write(kind, emptyCollection); err != nil {
			return nil, err
		}
		return emptyCollection, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", kind, err)
	}
	return data, nil
}

func (s *Store) write(kind ports.RecordKind, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("filestore: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, string(kind)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("filestore: write %s: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("filestore: close %s: %w", kind, err)
	}
	if err := os.Rename(tmpName, s.path(kind)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("filestore: rename %s: %w", kind, err)
	}
	return nil
}
