package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// ErrNotFound is returned by Read when nothing has been persisted yet.
var ErrNotFound = errors.New("store: snapshot not found")

// Persistence reads and writes the serialized cache snapshot.
type Persistence interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Erase() error
	Path() string
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv for the file at path. The parent
// directory is used as the diskv base path and the file name as the key.
func Load(path string) (Persistence, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: cache path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("store: resolve %q: %w", path, err)
	}
	base, key := filepath.Split(abs)
	base = filepath.Clean(base)
	if key == "" {
		return nil, fmt.Errorf("store: %q names a directory", path)
	}
	if err := os.MkdirAll(filepath.Join(base, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	return &persistence{
		d: diskv.New(diskv.Options{
			BasePath: base,
			// Writes land in TempDir first and are renamed into place, so a
			// reader in another process never sees a half-written file.
			TempDir:  filepath.Join(base, tempDirName),
			FilePerm: 0o600,
			PathPerm: 0o755,
			// No in-memory cache: another process may rewrite the file.
			CacheSizeMax: 0,
		}),
		basePath: base,
		key:      key,
	}, nil
}

const tempDirName = ".tmp"

type persistence struct {
	d        *diskv.Diskv
	basePath string
	key      string
}

func (p *persistence) Path() string {
	return filepath.Join(p.basePath, p.key)
}

func (p *persistence) Read() ([]byte, error) {
	data, err := p.d.Read(p.key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", p.Path(), err)
	}
	return data, nil
}

func (p *persistence) Write(data []byte) error {
	if err := p.d.Write(p.key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", p.Path(), err)
	}
	return nil
}

func (p *persistence) Erase() error {
	if err := p.d.Erase(p.key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", p.Path(), err)
	}
	return nil
}
