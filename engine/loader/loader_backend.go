package loader

import (
	"errors"
	"io"
)

// ErrAssetNotFound is returned when a backend has no asset under the requested name.
var ErrAssetNotFound = errors.New("asset not found")

// loaderBackend defines where serialized assets live. Concrete implementations (file system,
// LevelDB bundle) only move bytes; decoding and validation happen in the loader.
type loaderBackend interface {
	// Open returns a reader over the raw bytes of the named asset.
	//
	// Parameters:
	//   - name: the asset name, including its file extension
	//
	// Returns:
	//   - io.ReadCloser: the asset bytes; the caller must close it
	//   - error: ErrAssetNotFound if no such asset exists, or an I/O error
	Open(name string) (io.ReadCloser, error)

	// Store writes the raw bytes of the named asset, replacing any previous version.
	//
	// Parameters:
	//   - name: the asset name, including its file extension
	//   - data: the serialized asset
	//
	// Returns:
	//   - error: error if the write fails
	Store(name string, data []byte) error

	// Names lists every asset name held by the backend.
	//
	// Returns:
	//   - []string: asset names in no particular order
	//   - error: error if listing fails
	Names() ([]string, error)

	// Close releases backend resources.
	//
	// Returns:
	//   - error: error if closing fails
	Close() error
}
