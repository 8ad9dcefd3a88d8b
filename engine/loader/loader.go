package loader

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"

	"github.com/syndtr/goleveldb/leveldb"
)

// ErrUnsupportedFormat is returned for asset names whose extension is not a known asset format.
var ErrUnsupportedFormat = errors.New("unsupported asset format")

// LoaderBackendType identifies where the loader reads assets from.
type LoaderBackendType int

const (
	// BackendTypeFile reads assets from files under a base directory.
	BackendTypeFile LoaderBackendType = iota

	// BackendTypeLevelDB reads assets from a LevelDB bundle database.
	BackendTypeLevelDB
)

// AssetFormat identifies the serialized layout of an asset.
type AssetFormat int

const (
	// FormatSkeleton is the GOBSKEL skeleton layout.
	FormatSkeleton AssetFormat = iota

	// FormatClip is the GOBSKELANIM clip layout.
	FormatClip
)

func (f AssetFormat) String() string {
	switch f {
	case FormatSkeleton:
		return "skeleton"
	case FormatClip:
		return "clip"
	default:
		return fmt.Sprintf("AssetFormat(%d)", int(f))
	}
}

// formatFor resolves the asset format from the extension of name.
func formatFor(name string) (AssetFormat, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case skeleton.FileExtension:
		return FormatSkeleton, true
	case animation.FileExtension:
		return FormatClip, true
	default:
		return 0, false
	}
}

// FormatFor resolves the asset format from the extension of name.
//
// Parameters:
//   - name: the asset name or path
//
// Returns:
//   - AssetFormat: the detected format
//   - error: ErrUnsupportedFormat if the extension is unknown
func FormatFor(name string) (AssetFormat, error) {
	f, ok := formatFor(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path.Ext(name))
	}
	return f, nil
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	skeletonCache map[string]skeleton.Skeleton
	clipCache     map[string]animation.Clip

	baseDir      string
	databasePath string
	database     *leveldb.DB

	backend loaderBackend
}

// Loader loads and caches skeletons and animation clips. It abstracts where the bytes live
// (files, a LevelDB bundle) behind a backend and keeps every successfully decoded asset in a cache
// keyed by name. Assets that fail to decode or validate are never cached.
type Loader interface {
	// LoadSkeleton decodes the named skeleton and caches it.
	// If the skeleton is already cached, the cached version is returned.
	//
	// Parameters:
	//   - name: the asset name, ending in .gobskel
	//
	// Returns:
	//   - skeleton.Skeleton: the loaded skeleton
	//   - error: error if the asset is missing, unsupported or malformed
	LoadSkeleton(name string) (skeleton.Skeleton, error)

	// LoadClip decodes the named clip and caches it. When skel is not nil the clip's joint count
	// must match the skeleton's; a mismatching clip is rejected and not cached.
	//
	// Parameters:
	//   - name: the asset name, ending in .gobskelanim
	//   - skel: the skeleton the clip will be sampled against, or nil to skip the check
	//
	// Returns:
	//   - animation.Clip: the loaded clip
	//   - error: error if the asset is missing, unsupported, malformed or mismatched
	LoadClip(name string, skel skeleton.Skeleton) (animation.Clip, error)

	// Skeleton retrieves a cached skeleton by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - skeleton.Skeleton: the cached skeleton or nil
	Skeleton(name string) skeleton.Skeleton

	// Clip retrieves a cached clip by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - animation.Clip: the cached clip or nil
	Clip(name string) animation.Clip

	// Store validates serialized asset bytes by decoding them and writes them to the backend.
	// Any cached copy under the same name is dropped.
	//
	// Parameters:
	//   - name: the asset name; its extension selects the format
	//   - data: the serialized asset
	//
	// Returns:
	//   - error: error if the bytes do not decode or the write fails
	Store(name string, data []byte) error

	// Names lists the asset names available from the backend.
	//
	// Returns:
	//   - []string: the asset names
	//   - error: error if the backend cannot be listed
	Names() ([]string, error)

	// Close releases the backend. Cached assets remain usable.
	//
	// Returns:
	//   - error: error if the backend fails to close
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the backend to read assets from (BackendTypeFile or BackendTypeLevelDB)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader configured with the provided backend and options
//   - error: error if the backend cannot be created
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) (Loader, error) {
	l := &loader{
		mu:            sync.RWMutex{},
		skeletonCache: make(map[string]skeleton.Skeleton),
		clipCache:     make(map[string]animation.Clip),
		baseDir:       ".",
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeFile:
		l.backend = newFileLoaderBackend(l.baseDir)
	case BackendTypeLevelDB:
		b, err := newLevelDBLoaderBackend(l.database, l.databasePath)
		if err != nil {
			return nil, err
		}
		l.backend = b
	default:
		return nil, fmt.Errorf("unknown loader backend type %d", backendType)
	}

	return l, nil
}

func (l *loader) LoadSkeleton(name string) (skeleton.Skeleton, error) {
	l.mu.RLock()
	if cached, ok := l.skeletonCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if err := l.expectFormat(name, FormatSkeleton); err != nil {
		return nil, err
	}

	data, err := l.read(name)
	if err != nil {
		return nil, err
	}
	s, err := skeleton.Decode(bytes.NewReader(data), skeleton.WithName(assetBaseName(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	l.mu.Lock()
	l.skeletonCache[name] = s
	l.mu.Unlock()

	common.Logger().Debug("loaded skeleton", "name", name, "joints", s.JointCount())
	return s, nil
}

func (l *loader) LoadClip(name string, skel skeleton.Skeleton) (animation.Clip, error) {
	l.mu.RLock()
	cached, ok := l.clipCache[name]
	l.mu.RUnlock()
	if ok {
		if err := checkClip(name, cached, skel); err != nil {
			return nil, err
		}
		return cached, nil
	}

	if err := l.expectFormat(name, FormatClip); err != nil {
		return nil, err
	}

	data, err := l.read(name)
	if err != nil {
		return nil, err
	}
	c, err := animation.Decode(bytes.NewReader(data), animation.WithName(assetBaseName(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	if err := checkClip(name, c, skel); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.clipCache[name] = c
	l.mu.Unlock()

	common.Logger().Debug("loaded clip", "name", name, "joints", c.JointCount(), "duration", c.Duration())
	return c, nil
}

func (l *loader) Skeleton(name string) skeleton.Skeleton {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skeletonCache[name]
}

func (l *loader) Clip(name string) animation.Clip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clipCache[name]
}

func (l *loader) Store(name string, data []byte) error {
	format, err := FormatFor(name)
	if err != nil {
		return err
	}

	switch format {
	case FormatSkeleton:
		_, err = skeleton.Decode(bytes.NewReader(data))
	case FormatClip:
		_, err = animation.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("refusing to store %s: %w", name, err)
	}

	if err := l.backend.Store(name, data); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.skeletonCache, name)
	delete(l.clipCache, name)
	l.mu.Unlock()

	common.Logger().Debug("stored asset", "name", name, "format", format, "bytes", len(data))
	return nil
}

func (l *loader) Names() ([]string, error) {
	return l.backend.Names()
}

func (l *loader) Close() error {
	return l.backend.Close()
}

// expectFormat checks that name carries the extension of want.
func (l *loader) expectFormat(name string, want AssetFormat) error {
	got, err := FormatFor(name)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s is a %s, not a %s", ErrUnsupportedFormat, name, got, want)
	}
	return nil
}

// read fetches the raw bytes of name from the backend.
func (l *loader) read(name string) ([]byte, error) {
	rc, err := l.backend.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// checkClip rejects clips whose joint count differs from skel.
func checkClip(name string, c animation.Clip, skel skeleton.Skeleton) error {
	if skel == nil || c.JointCount() == skel.JointCount() {
		return nil
	}
	return fmt.Errorf("%w: clip %s animates %d joints, skeleton %q has %d",
		common.ErrJointCountMismatch, name, c.JointCount(), skel.Name(), skel.JointCount())
}

// assetBaseName strips the directory and extension from an asset name.
func assetBaseName(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
