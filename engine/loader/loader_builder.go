package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"

	"github.com/syndtr/goleveldb/leveldb"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithBaseDir is an option builder that sets the directory the file backend reads from.
// Defaults to the working directory.
//
// Parameters:
//   - dir: the asset directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the base directory option to a loader
func WithBaseDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.baseDir = dir
	}
}

// WithDatabasePath is an option builder that sets the LevelDB bundle directory opened by the
// LevelDB backend. The loader closes the database on Close.
//
// Parameters:
//   - path: the database directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the database path option to a loader
func WithDatabasePath(path string) LoaderBuilderOption {
	return func(l *loader) {
		l.databasePath = path
	}
}

// WithDatabase is an option builder that hands an already open LevelDB database to the LevelDB
// backend. The caller keeps ownership and closes it.
//
// Parameters:
//   - db: the open database
//
// Returns:
//   - LoaderBuilderOption: a function that applies the database option to a loader
func WithDatabase(db *leveldb.DB) LoaderBuilderOption {
	return func(l *loader) {
		l.database = db
	}
}

// WithSkeleton is an option builder that pre-populates the skeleton cache.
//
// Parameters:
//   - key: the cache key for the skeleton
//   - s: the skeleton to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skeleton option to a loader
func WithSkeleton(key string, s skeleton.Skeleton) LoaderBuilderOption {
	return func(l *loader) {
		l.skeletonCache[key] = s
	}
}

// WithClip is an option builder that pre-populates the clip cache.
//
// Parameters:
//   - key: the cache key for the clip
//   - c: the clip to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the clip option to a loader
func WithClip(key string, c animation.Clip) LoaderBuilderOption {
	return func(l *loader) {
		l.clipCache[key] = c
	}
}
