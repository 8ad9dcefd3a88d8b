package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLerpFloat(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float32
		want    float32
	}{
		{"start", 2, 6, 0, 2},
		{"end", 2, 6, 1, 6},
		{"middle", 2, 6, 0.5, 4},
		{"extrapolate", 0, 1, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LerpFloat(tt.a, tt.b, tt.t); got != tt.want {
				t.Errorf("LerpFloat(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
			}
			if tt.t <= 1 {
				if got := InverseLerp(tt.a, tt.b, tt.want); !NearlyEqual(got, tt.t, 1e-6) {
					t.Errorf("InverseLerp = %v, want %v", got, tt.t)
				}
			}
		})
	}
}

func TestNormalizeQuaternion(t *testing.T) {
	tests := []struct {
		name string
		in   Quaternion
		want Quaternion
	}{
		{"already unit", IdentityQuaternion(), IdentityQuaternion()},
		{"scaled", Quaternion{W: 0, V: Vec3{0, 3, 0}}, Quaternion{W: 0, V: Vec3{0, 1, 0}}},
		{"zero", Quaternion{}, IdentityQuaternion()},
		{"nan", Quaternion{W: float32(math.NaN())}, IdentityQuaternion()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuaternion(tt.in); !NearlyEqualRotation(got, tt.want, 1e-6) {
				t.Errorf("NormalizeQuaternion(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortestArc(t *testing.T) {
	a := IdentityQuaternion()
	b := AxisAngle(Vec3{0, 1, 0}, 0.5).Scale(-1)
	got := ShortestArc(a, b)
	if a.Dot(got) < 0 {
		t.Errorf("ShortestArc kept the long way: dot = %v", a.Dot(got))
	}
	if !NearlyEqualRotation(got, b, 1e-6) {
		t.Errorf("ShortestArc changed the rotation")
	}
}

func TestQuaternionInterpolation(t *testing.T) {
	a := IdentityQuaternion()
	b := AxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	mid := AxisAngle(Vec3{0, 0, 1}, math.Pi/4)

	interps := map[string]func(a, b Quaternion, t float32) Quaternion{
		"lerp":  LerpQuaternion,
		"slerp": Slerp,
	}
	for name, interp := range interps {
		t.Run(name, func(t *testing.T) {
			if got := interp(a, b, 0); !NearlyEqualRotation(got, a, 1e-5) {
				t.Errorf("t=0: %v", got)
			}
			if got := interp(a, b, 1); !NearlyEqualRotation(got, b, 1e-5) {
				t.Errorf("t=1: %v", got)
			}
			// Both paths are symmetric, so the halfway point is the same rotation.
			if got := interp(a, b, 0.5); !NearlyEqualRotation(got, mid, 1e-5) {
				t.Errorf("t=0.5: %v, want %v", got, mid)
			}
			if got := interp(a, a, 0.3); !NearlyEqualRotation(got, a, 1e-6) {
				t.Errorf("identical inputs: %v", got)
			}
		})
	}

	// Slerp keeps constant angular velocity where lerp does not.
	quarter := Slerp(a, b, 0.25)
	if got := AngleBetween(a, quarter); !NearlyEqual(got, math.Pi/8, 1e-4) {
		t.Errorf("Slerp quarter angle = %v, want %v", got, math.Pi/8)
	}
}

func TestSlerpNearOpposite(t *testing.T) {
	a := IdentityQuaternion()
	tests := []struct {
		name string
		b    Quaternion
	}{
		{"just under half turn", AxisAngle(Vec3{0, 1, 0}, math.Pi-0.01)},
		{"half turn", AxisAngle(Vec3{0, 1, 0}, math.Pi)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range []float32{0, 0.3, 0.5, 1} {
				got := Slerp(a, tt.b, f)
				if want := LerpQuaternion(a, tt.b, f); got != want {
					t.Errorf("t=%v: Slerp = %v, want lerp fallback %v", f, got, want)
				}
				l := got.Len()
				if math.IsNaN(float64(l)) || !NearlyEqual(l, 1, 1e-5) {
					t.Errorf("t=%v: length %v, want a finite unit quaternion", f, l)
				}
			}
		})
	}
}

func TestRotateTowards(t *testing.T) {
	a := IdentityQuaternion()
	b := AxisAngle(Vec3{1, 0, 0}, 1)

	step := RotateTowards(a, b, 0.25)
	if got := AngleBetween(a, step); !NearlyEqual(got, 0.25, 1e-4) {
		t.Errorf("stepped %v radians, want 0.25", got)
	}
	if got := RotateTowards(a, b, 2); got != b {
		t.Errorf("RotateTowards within reach = %v, want %v", got, b)
	}
}

func TestRowMajor(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	rm := RowMajor(m)
	// Translation sits in the last column, so row-major puts it at indices 3, 7 and 11.
	if rm[3] != 1 || rm[7] != 2 || rm[11] != 3 || rm[15] != 1 {
		t.Errorf("RowMajor(translate) = %v", rm)
	}
	if back := MatrixFromRowMajor(rm); back != m {
		t.Errorf("MatrixFromRowMajor(RowMajor(m)) = %v, want %v", back, m)
	}

	dst := make([]float32, 32)
	PackRowMajor(dst, []Matrix4x4{mgl32.Ident4(), m})
	if dst[0] != 1 || dst[16+3] != 1 || dst[16+11] != 3 {
		t.Errorf("PackRowMajor = %v", dst)
	}
}

func TestNearlyEqual(t *testing.T) {
	q := AxisAngle(Vec3{0, 1, 0}, 1)
	if !NearlyEqualRotation(q, q.Scale(-1), 1e-6) {
		t.Error("q and -q compared unequal")
	}
	if NearlyEqualRotation(q, IdentityQuaternion(), 1e-3) {
		t.Error("different rotations compared equal")
	}
	if !NearlyEqual(0, 1e-7, 1e-6) || NearlyEqual(0, 1e-3, 1e-6) {
		t.Error("NearlyEqual is not an absolute comparison near zero")
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32{}) != nil {
		t.Error("empty slice produced bytes")
	}
	b := SliceToBytes([]float32{1, 2})
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	if got := math.Float32frombits(uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24); got != 2 {
		t.Errorf("second element = %v, want 2", got)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Coalesce = %d, want 3", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce = %q, want empty", got)
	}
}
