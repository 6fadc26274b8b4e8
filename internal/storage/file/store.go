package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"zoblogs/internal/storage"
)

const fileExt = ".zst"

// envelope is the on-disk format of a single key.
type envelope struct {
	Version int64  `json:"version"`
	Value   []byte `json:"value"`
}

// Store keeps one compressed file per key inside dir. Writes go to a
// temporary file that is synced and renamed over the previous one, so a
// crash leaves either the old or the new value on disk. The mutex makes
// compare-and-swap atomic within one process only.
type Store struct {
	mu         sync.Mutex
	dir        string
	compressor Compressor
}

func NewStore(dir string, compressor Compressor) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	return &Store{dir: dir, compressor: compressor}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Store) Get(_ context.Context, key string) (storage.Entry, error) {
	if !storage.ValidKey(key) {
		return storage.Entry{}, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load(key)
	if err != nil {
		return storage.Entry{}, err
	}
	return storage.Entry{Value: env.Value, Version: env.Version}, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	if !storage.ValidKey(key) {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	env, err := s.load(key)
	switch {
	case err == nil:
		current = env.Version
	case err != storage.ErrNotFound:
		return 0, err
	}
	if current != expected {
		return 0, storage.ErrVersionConflict
	}

	next := expected + 1
	if err := s.save(key, &envelope{Version: next, Value: value}); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	s.compressor.Close()
	return nil
}

func (s *Store) load(key string) (*envelope, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	raw, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &env, nil
}

func (s *Store) save(key string, env *envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	data, err := s.compressor.Compress(raw)
	if err != nil {
		return err
	}

	fileName := s.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

var _ storage.Store = (*Store)(nil)
