package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// assetKeyPrefix namespaces asset entries inside a shared database.
const assetKeyPrefix = "asset-"

// leveldbLoaderBackendImpl is a loaderBackend storing every asset of a bundle in one LevelDB database.
type leveldbLoaderBackendImpl struct {
	db *leveldb.DB

	// owned is true when the backend opened the database and must close it.
	owned bool
}

var _ loaderBackend = &leveldbLoaderBackendImpl{}

// newLevelDBLoaderBackend wraps db, or opens the database at path when db is nil.
//
// Parameters:
//   - db: an already open database, or nil
//   - path: the database directory used when db is nil
//
// Returns:
//   - *leveldbLoaderBackendImpl: the LevelDB backend
//   - error: error if the database cannot be opened
func newLevelDBLoaderBackend(db *leveldb.DB, path string) (*leveldbLoaderBackendImpl, error) {
	if db != nil {
		return &leveldbLoaderBackendImpl{db: db}, nil
	}
	if path == "" {
		return nil, errors.New("leveldb backend needs a database or a database path")
	}
	opened, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database %s: %w", path, err)
	}
	return &leveldbLoaderBackendImpl{db: opened, owned: true}, nil
}

func (b *leveldbLoaderBackendImpl) Open(name string) (io.ReadCloser, error) {
	data, err := b.db.Get([]byte(assetKeyPrefix+name), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *leveldbLoaderBackendImpl) Store(name string, data []byte) error {
	if err := b.db.Put([]byte(assetKeyPrefix+name), data, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (b *leveldbLoaderBackendImpl) Names() ([]string, error) {
	iter := b.db.NewIterator(util.BytesPrefix([]byte(assetKeyPrefix)), nil)
	defer iter.Release()

	var names []string
	for iter.Next() {
		names = append(names, strings.TrimPrefix(string(iter.Key()), assetKeyPrefix))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return names, nil
}

func (b *leveldbLoaderBackendImpl) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
