// Package filestore keeps session entries in a JSON file in the data folder.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-hospital-client/sessions"
)

const FileName = "session.json"

var _ sessions.Repo = (*Store)(nil)

type Store struct {
	path string
	lock sync.Mutex
}

// New returns a store backed by dataFolder/session.json. The folder is
// created on first write.
func New(dataFolder string) *Store {
	return &Store{path: filepath.Join(dataFolder, FileName)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	entries, err := s.load()
	if err != nil {
		// a corrupt file is replaced rather than blocking every write
		entries = map[string]string{}
	}
	entries[key] = value
	return s.save(entries)
}

func (s *Store) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	entries, err := s.load()
	if err != nil {
		entries = map[string]string{}
	}
	if _, ok := entries[key]; !ok && err == nil {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *Store) load() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore load] read %s: %w", s.path, err)
	}
	entries := map[string]string{}
	if len(b) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("[filestore load] decode %s: %w", s.path, err)
	}
	return entries, nil
}

// save writes through a temp file and rename so a crash never leaves a
// half-written file behind.
func (s *Store) save(entries map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestore save] mkdir %s: %w", dir, err)
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore save] encode: %w", err)
	}
	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("[filestore save] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore save] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore save] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore save] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore save] rename: %w", err)
	}
	return nil
}
