package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"logistica/infrastructure/apperr"
)

// Collection files under the data directory. Each holds one JSON array.
//
// When an operation must hold more than one collection lock at a time it
// acquires them in the order they are declared here.
const (
	Schedules   = "schedules.json"
	Conference  = "conference.json"
	Storage     = "storage.json"
	Allocations = "allocations.json"
	Products    = "products.json"
)

// Store reads and rewrites whole-collection JSON files. Every collection has
// a single in-process writer lock so read-modify-write cycles serialize.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute file path for a collection or auxiliary file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the collection file has been written yet.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// Load returns the whole collection. A missing file is an empty collection.
func Load[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return read[T](s.Path(name))
}

// View runs fn over the current collection while holding its lock, so writes
// to other collections made inside fn see a stable snapshot.
func View[T any](ctx context.Context, s *Store, name string, fn func(items []T) error) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	items, err := read[T](s.Path(name))
	if err != nil {
		return err
	}
	return fn(items)
}

// Update runs fn over the current collection under the collection lock and
// rewrites the file with its result. When fn fails nothing is written.
func Update[T any](ctx context.Context, s *Store, name string, fn func(items []T) ([]T, error)) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	items, err := read[T](s.Path(name))
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return write(s.dir, name, next)
}

// Replace overwrites the collection without reading it first.
func Replace[T any](ctx context.Context, s *Store, name string, items []T) error {
	return Update(ctx, s, name, func([]T) ([]T, error) {
		return items, nil
	})
}

func read[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, apperr.IO("falha ao ler "+filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	items := make([]T, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperr.IO("arquivo corrompido "+filepath.Base(path), err)
	}
	return items, nil
}

// write replaces the file through a temp file and rename, so a crash leaves
// either the old or the new collection on disk.
func write[T any](dir, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return apperr.IO("falha ao serializar "+name, err)
	}

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return apperr.IO("falha ao gravar "+name, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return apperr.IO("falha ao gravar "+name, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperr.IO("falha ao gravar "+name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return apperr.IO("falha ao gravar "+name, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return apperr.IO("falha ao gravar "+name, err)
	}
	return nil
}
