// Package template provides prompt template sources for description generation.
package template

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/kailas-cloud/surveyd/internal/db"
	"github.com/kailas-cloud/surveyd/internal/domain"
)

//go:embed data/*.txt
var defaultFS embed.FS

const fileExt = ".txt"

// FSSource reads templates as <key>.txt files from a filesystem.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewEmbedded returns the templates compiled into the binary.
func NewEmbedded() *FSSource {
	return &FSSource{fsys: defaultFS, dir: "data"}
}

// NewDir returns a source reading templates from a directory on disk.
func NewDir(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), dir: "."}
}

// NewFS returns a source over an arbitrary filesystem (tests, overlays).
func NewFS(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys, dir: "."}
}

// Template returns the content of <key>.txt.
func (s *FSSource) Template(_ context.Context, key string) (string, error) {
	if !fs.ValidPath(key) {
		return "", fmt.Errorf("invalid template key %q: %w", key, domain.ErrTemplateNotFound)
	}
	data, err := fs.ReadFile(s.fsys, path.Join(s.dir, key+fileExt))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("template %q: %w", key, domain.ErrTemplateNotFound)
		}
		return "", fmt.Errorf("read template %q: %w", key, err)
	}
	return string(data), nil
}

// Keys lists the template keys available in the source.
func (s *FSSource) Keys() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != fileExt {
			continue
		}
		keys = append(keys, name[:len(name)-len(fileExt)])
	}
	return keys, nil
}

// kvStore is the consumer interface for key-value backed templates (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// KVSource reads templates from a key-value store under a key prefix.
type KVSource struct {
	store  kvStore
	prefix string
}

// NewKV creates a key-value backed template source.
func NewKV(s kvStore, prefix string) *KVSource {
	return &KVSource{store: s, prefix: prefix}
}

// Template returns the value stored at prefix+key.
func (s *KVSource) Template(ctx context.Context, key string) (string, error) {
	data, err := s.store.Get(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", fmt.Errorf("template %q: %w", key, domain.ErrTemplateNotFound)
		}
		return "", fmt.Errorf("get template %q: %w", key, err)
	}
	return string(data), nil
}

// Put stores a template under prefix+key.
func (s *KVSource) Put(ctx context.Context, key, content string) error {
	if err := s.store.Set(ctx, s.prefix+key, []byte(content)); err != nil {
		return fmt.Errorf("put template %q: %w", key, err)
	}
	return nil
}

// Sync copies every template from src into the key-value store.
func Sync(ctx context.Context, src *FSSource, dst *KVSource) ([]string, error) {
	keys, err := src.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		content, err := src.Template(ctx, k)
		if err != nil {
			return nil, err
		}
		if err := dst.Put(ctx, k, content); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
