package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a decomposed joint transform, either relative to the joint's parent (a local pose)
// or relative to the model root (a model-space pose).
type Transform struct {
	// Position is the translation component.
	Position Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation Quaternion

	// Scale is the per-axis scale factor.
	Scale Vec3
}

// IdentityTransform returns a transform with zero position, identity rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Position: Vec3{0, 0, 0},
		Rotation: IdentityQuaternion(),
		Scale:    Vec3{1, 1, 1},
	}
}

// LerpTransform interpolates two transforms. Position and scale are blended componentwise and the
// rotation uses the shortest-arc LerpQuaternion.
//
// Parameters:
//   - a: transform at t = 0
//   - b: transform at t = 1
//   - t: interpolation factor
//
// Returns:
//   - Transform: the blended transform
func LerpTransform(a, b Transform, t float32) Transform {
	return Transform{
		Position: LerpVec3(a.Position, b.Position, t),
		Rotation: LerpQuaternion(a.Rotation, b.Rotation, t),
		Scale:    LerpVec3(a.Scale, b.Scale, t),
	}
}

// ConcatenateTransforms applies child in the space of parent. This is the single composition rule
// used for hierarchy resolution and it matches the position * rotation * scale order of TransformToMatrix:
//
//	scale    = child.scale * parent.scale
//	rotation = parent.rotation * child.rotation
//	position = parent.rotation(child.position * parent.scale) + parent.position
//
// Parameters:
//   - parent: the parent's transform
//   - child: the child's transform relative to parent
//
// Returns:
//   - Transform: the child's transform in the parent's space
func ConcatenateTransforms(parent, child Transform) Transform {
	return Transform{
		Scale:    MulVec3(child.Scale, parent.Scale),
		Rotation: parent.Rotation.Mul(child.Rotation),
		Position: RotateVec3(parent.Rotation, MulVec3(child.Position, parent.Scale)).Add(parent.Position),
	}
}

// TransformToMatrix builds the matrix T * R * S for t.
//
// Parameters:
//   - t: the transform to convert
//
// Returns:
//   - Matrix4x4: the affine matrix of t
func TransformToMatrix(t Transform) Matrix4x4 {
	translate := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	scale := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// TransformToMatrixInverse builds S^-1 * R^-1 * T^-1 for t, the inverse of TransformToMatrix(t)
// without a general matrix inversion. Scale components must be non-zero.
//
// Parameters:
//   - t: the transform to invert
//
// Returns:
//   - Matrix4x4: the inverse affine matrix of t
func TransformToMatrixInverse(t Transform) Matrix4x4 {
	translate := mgl32.Translate3D(-t.Position[0], -t.Position[1], -t.Position[2])
	scale := mgl32.Scale3D(1/t.Scale[0], 1/t.Scale[1], 1/t.Scale[2])
	return scale.Mul4(InverseQuaternion(t.Rotation).Mat4()).Mul4(translate)
}
