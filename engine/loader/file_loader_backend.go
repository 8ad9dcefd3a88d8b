package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// fileLoaderBackendImpl is a loaderBackend reading assets from a directory tree.
type fileLoaderBackendImpl struct {
	baseDir string
}

var _ loaderBackend = &fileLoaderBackendImpl{}

// newFileLoaderBackend creates a backend rooted at baseDir. Asset names are slash-separated
// paths relative to baseDir.
//
// Parameters:
//   - baseDir: the directory holding the assets
//
// Returns:
//   - *fileLoaderBackendImpl: the file backend
func newFileLoaderBackend(baseDir string) *fileLoaderBackendImpl {
	return &fileLoaderBackendImpl{baseDir: baseDir}
}

func (b *fileLoaderBackendImpl) path(name string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(name))
}

func (b *fileLoaderBackendImpl) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(b.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

func (b *fileLoaderBackendImpl) Store(name string, data []byte) error {
	p := b.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	return os.WriteFile(p, data, 0o644)
}

func (b *fileLoaderBackendImpl) Names() ([]string, error) {
	var names []string
	err := filepath.WalkDir(b.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := formatFor(p); !ok {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", b.baseDir, err)
	}
	return names, nil
}

func (b *fileLoaderBackendImpl) Close() error {
	return nil
}
