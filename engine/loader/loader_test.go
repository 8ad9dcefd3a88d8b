package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/syndtr/goleveldb/leveldb"
)

func encodedSkeleton(t *testing.T, joints int) []byte {
	t.Helper()
	js := make([]skeleton.Joint, joints)
	for i := range js {
		js[i].InverseBindMatrix = mgl32.Ident4()
		if i > 0 {
			js[i].ParentIndex = uint32(i - 1)
		}
	}
	s, err := skeleton.NewSkeleton(js)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := skeleton.Encode(&buf, s); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodedClip(t *testing.T, joints int) []byte {
	t.Helper()
	move, err := animation.NewChannel([]float32{0, 1}, []common.Vec3{{0, 0, 0}, {0, 1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	ja := make([]animation.JointAnimation, joints)
	for i := range ja {
		ja[i] = animation.NewJointAnimation(animation.Vec3Channel{}, animation.QuaternionChannel{}, move)
	}
	c, err := animation.NewClip(1, ja)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := animation.Encode(&buf, c); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newFileLoader(t *testing.T) (Loader, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLoader(BackendTypeFile, WithBaseDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l, dir
}

func newLevelDBLoader(t *testing.T) Loader {
	t.Helper()
	l, err := NewLoader(BackendTypeLevelDB, WithDatabasePath(filepath.Join(t.TempDir(), "assets.db")))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		want    AssetFormat
		wantErr bool
	}{
		{"hero.gobskel", FormatSkeleton, false},
		{"anims/Run.GOBSKELANIM", FormatClip, false},
		{"hero.gltf", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFor(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatFor(%q) = %v, %v", tt.name, got, err)
			}
		})
	}
}

func TestLoaderBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Loader{
		"file": func(t *testing.T) Loader {
			l, _ := newFileLoader(t)
			return l
		},
		"leveldb": newLevelDBLoader,
	}

	for name, newLoader := range backends {
		t.Run(name, func(t *testing.T) {
			l := newLoader(t)

			if err := l.Store("hero.gobskel", encodedSkeleton(t, 3)); err != nil {
				t.Fatal(err)
			}
			if err := l.Store("anims/walk.gobskelanim", encodedClip(t, 3)); err != nil {
				t.Fatal(err)
			}
			if err := l.Store("anims/short.gobskelanim", encodedClip(t, 2)); err != nil {
				t.Fatal(err)
			}

			names, err := l.Names()
			if err != nil {
				t.Fatal(err)
			}
			slices.Sort(names)
			want := []string{"anims/short.gobskelanim", "anims/walk.gobskelanim", "hero.gobskel"}
			if !slices.Equal(names, want) {
				t.Errorf("Names = %v, want %v", names, want)
			}

			skel, err := l.LoadSkeleton("hero.gobskel")
			if err != nil {
				t.Fatal(err)
			}
			if skel.JointCount() != 3 || skel.Name() != "hero" {
				t.Errorf("skeleton = %d joints, name %q", skel.JointCount(), skel.Name())
			}
			again, err := l.LoadSkeleton("hero.gobskel")
			if err != nil || again != skel {
				t.Errorf("second load did not hit the cache")
			}

			clip, err := l.LoadClip("anims/walk.gobskelanim", skel)
			if err != nil {
				t.Fatal(err)
			}
			if clip.Name() != "walk" || l.Clip("anims/walk.gobskelanim") != clip {
				t.Errorf("clip not cached under its name")
			}

			if _, err := l.LoadClip("anims/short.gobskelanim", skel); !errors.Is(err, common.ErrJointCountMismatch) {
				t.Errorf("expected ErrJointCountMismatch, got %v", err)
			}
			if l.Clip("anims/short.gobskelanim") != nil {
				t.Errorf("mismatched clip was cached")
			}

			if _, err := l.LoadSkeleton("missing.gobskel"); !errors.Is(err, ErrAssetNotFound) {
				t.Errorf("expected ErrAssetNotFound, got %v", err)
			}
		})
	}
}

func TestLoaderRejectsBadAssets(t *testing.T) {
	l, dir := newFileLoader(t)

	if err := l.Store("hero.gobskel", encodedClip(t, 1)); !errors.Is(err, skeleton.ErrMalformedAsset) {
		t.Errorf("expected ErrMalformedAsset storing a clip as a skeleton, got %v", err)
	}
	if err := l.Store("hero.fbx", encodedSkeleton(t, 1)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	data := encodedSkeleton(t, 2)
	if err := os.WriteFile(filepath.Join(dir, "broken.gobskel"), data[:len(data)-2], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadSkeleton("broken.gobskel"); !errors.Is(err, skeleton.ErrMalformedAsset) {
		t.Errorf("expected ErrMalformedAsset, got %v", err)
	}
	if l.Skeleton("broken.gobskel") != nil {
		t.Errorf("malformed skeleton was cached")
	}

	if _, err := l.LoadClip("hero.gobskel", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat loading a skeleton as a clip, got %v", err)
	}
}

func TestStoreInvalidatesCache(t *testing.T) {
	l, _ := newFileLoader(t)
	if err := l.Store("hero.gobskel", encodedSkeleton(t, 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadSkeleton("hero.gobskel"); err != nil {
		t.Fatal(err)
	}
	if err := l.Store("hero.gobskel", encodedSkeleton(t, 4)); err != nil {
		t.Fatal(err)
	}
	s, err := l.LoadSkeleton("hero.gobskel")
	if err != nil {
		t.Fatal(err)
	}
	if s.JointCount() != 4 {
		t.Errorf("JointCount = %d after overwrite, want 4", s.JointCount())
	}
}

func TestSharedDatabase(t *testing.T) {
	db, err := leveldb.OpenFile(filepath.Join(t.TempDir(), "shared.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.Put([]byte("unrelated"), []byte("x"), nil); err != nil {
		t.Fatal(err)
	}

	l, err := NewLoader(BackendTypeLevelDB, WithDatabase(db))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Store("hero.gobskel", encodedSkeleton(t, 1)); err != nil {
		t.Fatal(err)
	}
	names, err := l.Names()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"hero.gobskel"}) {
		t.Errorf("Names = %v", names)
	}

	// Closing the loader must leave a caller-owned database open.
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Get([]byte("unrelated"), nil); err != nil {
		t.Errorf("database closed by loader: %v", err)
	}
}

func TestPrepopulatedCache(t *testing.T) {
	s, err := skeleton.NewSkeleton([]skeleton.Joint{{InverseBindMatrix: mgl32.Ident4()}})
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewLoader(BackendTypeFile, WithBaseDir(t.TempDir()), WithSkeleton("rig", s))
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.LoadSkeleton("rig")
	if err != nil || got != s {
		t.Errorf("LoadSkeleton(rig) = %v, %v", got, err)
	}

	if _, err := NewLoader(BackendTypeLevelDB); err == nil {
		t.Error("expected error for LevelDB backend without a database")
	}
}
