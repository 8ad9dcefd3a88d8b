package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a 3 component float32 vector used for joint positions and scales.
type Vec3 = mgl32.Vec3

// Quaternion is a rotation quaternion stored as a scalar W and a vector part V (x, y, z).
// Unit length is assumed by every rotation operation in this package.
type Quaternion = mgl32.Quat

// Matrix4x4 is a 4x4 float32 matrix. It is stored in column-major order (mgl32 convention);
// use MatrixFromRowMajor and RowMajor to convert at file and GPU boundaries.
type Matrix4x4 = mgl32.Mat4

const (
	// slerpFallbackSine is the half-angle sine above which Slerp falls back to LerpQuaternion.
	// Rotations this close to 180 degrees make the sine denominator numerically unstable.
	slerpFallbackSine = 0.999

	// slerpMinSine is the half-angle sine below which the inputs are treated as identical.
	slerpMinSine = 1e-6
)

// IdentityQuaternion returns the identity rotation (1, 0, 0, 0).
//
// Returns:
//   - Quaternion: the identity quaternion
func IdentityQuaternion() Quaternion {
	return mgl32.QuatIdent()
}

// AxisAngle builds a rotation of radians about the given axis.
// The axis is expected to be normalized.
//
// Parameters:
//   - axis: the unit rotation axis
//   - radians: the rotation angle in radians
//
// Returns:
//   - Quaternion: the rotation quaternion
func AxisAngle(axis Vec3, radians float32) Quaternion {
	half := float64(radians) / 2
	return Quaternion{
		W: float32(math.Cos(half)),
		V: axis.Mul(float32(math.Sin(half))),
	}
}

// LerpFloat linearly interpolates between a and b as (1-t)*a + t*b.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: the interpolated value
func LerpFloat(a, b, t float32) float32 {
	return (1-t)*a + t*b
}

// InverseLerp returns where v falls between a and b, so that LerpFloat(a, b, InverseLerp(a, b, v)) == v.
// The caller guarantees a != b.
//
// Parameters:
//   - a: value mapped to 0
//   - b: value mapped to 1
//   - v: the value to locate
//
// Returns:
//   - float32: the normalized position of v
func InverseLerp(a, b, v float32) float32 {
	return (v - a) / (b - a)
}

// LerpVec3 interpolates two vectors componentwise using (1-t)*a + t*b.
// The result is exactly a at t = 0 and exactly b at t = 1 for finite inputs.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - Vec3: the interpolated vector
func LerpVec3(a, b Vec3, t float32) Vec3 {
	return Vec3{
		LerpFloat(a[0], b[0], t),
		LerpFloat(a[1], b[1], t),
		LerpFloat(a[2], b[2], t),
	}
}

// MulVec3 multiplies two vectors componentwise.
func MulVec3(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// RotateVec3 rotates v by the unit quaternion q.
func RotateVec3(q Quaternion, v Vec3) Vec3 {
	return q.Rotate(v)
}

// InverseQuaternion returns the conjugate of q, which is its inverse when q is a unit quaternion.
func InverseQuaternion(q Quaternion) Quaternion {
	return q.Conjugate()
}

// NormalizeQuaternion scales q to unit length.
// A zero-length quaternion has no meaningful direction and yields the identity rotation.
//
// Parameters:
//   - q: the quaternion to normalize
//
// Returns:
//   - Quaternion: the unit quaternion, or identity for degenerate input
func NormalizeQuaternion(q Quaternion) Quaternion {
	l := q.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return IdentityQuaternion()
	}
	return Quaternion{W: q.W / l, V: Vec3{q.V[0] / l, q.V[1] / l, q.V[2] / l}}
}

// ShortestArc returns b or -b, whichever lies in the same hemisphere as a.
// Both represent the same rotation; interpolating from a toward the result takes the short path.
//
// Parameters:
//   - a: the reference quaternion
//   - b: the quaternion to correct
//
// Returns:
//   - Quaternion: b with dot(a, result) >= 0
func ShortestArc(a, b Quaternion) Quaternion {
	if a.Dot(b) < 0 {
		return b.Scale(-1)
	}
	return b
}

// LerpQuaternion interpolates two rotations along the shortest arc with a componentwise blend
// followed by renormalization. This is an approximation of Slerp that is cheap and stable.
//
// Parameters:
//   - a: rotation at t = 0
//   - b: rotation at t = 1
//   - t: interpolation factor
//
// Returns:
//   - Quaternion: the normalized interpolated rotation
func LerpQuaternion(a, b Quaternion, t float32) Quaternion {
	b = ShortestArc(a, b)
	return NormalizeQuaternion(a.Scale(1 - t).Add(b.Scale(t)))
}

// Slerp interpolates two rotations along the shortest arc at constant angular velocity.
// When the rotations are nearly opposite (half-angle sine above 0.999) or identical,
// it falls back to LerpQuaternion instead of dividing by an unstable sine.
//
// Parameters:
//   - a: rotation at t = 0
//   - b: rotation at t = 1
//   - t: interpolation factor
//
// Returns:
//   - Quaternion: the interpolated rotation
func Slerp(a, b Quaternion, t float32) Quaternion {
	b = ShortestArc(a, b)
	cosHalf := float64(a.Dot(b))
	if cosHalf > 1 {
		cosHalf = 1
	}
	sinHalf := math.Sqrt(1 - cosHalf*cosHalf)
	if math.Abs(sinHalf) > slerpFallbackSine || sinHalf < slerpMinSine {
		return LerpQuaternion(a, b, t)
	}

	halfAngle := math.Acos(cosHalf)
	ratioA := float32(math.Sin(float64(1-t)*halfAngle) / sinHalf)
	ratioB := float32(math.Sin(float64(t)*halfAngle) / sinHalf)
	return a.Scale(ratioA).Add(b.Scale(ratioB))
}

// AngleBetween returns the rotation angle in radians needed to get from a to b.
func AngleBetween(a, b Quaternion) float32 {
	d := math.Abs(float64(a.Dot(b)))
	if d > 1 {
		d = 1
	}
	return float32(2 * math.Acos(d))
}

// RotateTowards rotates a toward b by at most maxRadians, returning b once it is within reach.
//
// Parameters:
//   - a: the current rotation
//   - b: the target rotation
//   - maxRadians: the largest angle to rotate by
//
// Returns:
//   - Quaternion: the rotation after stepping toward b
func RotateTowards(a, b Quaternion, maxRadians float32) Quaternion {
	b = ShortestArc(a, b)
	angle := AngleBetween(a, b)
	if angle <= maxRadians {
		return b
	}
	return Slerp(a, b, maxRadians/angle)
}

// MatrixFromRowMajor converts 16 row-major floats (the on-disk layout) into a Matrix4x4.
//
// Parameters:
//   - m: the matrix elements, row by row
//
// Returns:
//   - Matrix4x4: the equivalent matrix
func MatrixFromRowMajor(m [16]float32) Matrix4x4 {
	return Matrix4x4(m).Transpose()
}

// RowMajor flattens m into 16 row-major floats, the layout consumed by files and the renderer.
//
// Parameters:
//   - m: the matrix to flatten
//
// Returns:
//   - [16]float32: the matrix elements, row by row
func RowMajor(m Matrix4x4) [16]float32 {
	return [16]float32(m.Transpose())
}

// PackRowMajor writes each matrix of ms into dst as 16 consecutive row-major floats.
// dst must hold at least 16*len(ms) elements.
//
// Parameters:
//   - dst: destination slice
//   - ms: matrices to pack
func PackRowMajor(dst []float32, ms []Matrix4x4) {
	for i, m := range ms {
		rm := RowMajor(m)
		copy(dst[i*16:(i+1)*16], rm[:])
	}
}

// NearlyEqual reports whether |a-b| <= eps. Unlike mgl32's relative comparison it treats values
// near zero the same as any other.
func NearlyEqual(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

// NearlyEqualVec3 compares two vectors componentwise with an absolute tolerance.
func NearlyEqualVec3(a, b Vec3, eps float32) bool {
	return NearlyEqual(a[0], b[0], eps) && NearlyEqual(a[1], b[1], eps) && NearlyEqual(a[2], b[2], eps)
}

// NearlyEqualRotation reports whether a and b describe the same rotation within eps per component.
// q and -q are treated as equal.
func NearlyEqualRotation(a, b Quaternion, eps float32) bool {
	same := NearlyEqual(a.W, b.W, eps) && NearlyEqualVec3(a.V, b.V, eps)
	flipped := NearlyEqual(a.W, -b.W, eps) && NearlyEqualVec3(a.V, b.V.Mul(-1), eps)
	return same || flipped
}

// NearlyEqualMatrix compares two matrices elementwise with an absolute tolerance.
func NearlyEqualMatrix(a, b Matrix4x4, eps float32) bool {
	for i := range a {
		if !NearlyEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}
