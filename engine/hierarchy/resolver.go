package hierarchy

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// LocalPosesToModelSpace resolves parent-relative poses into model space in a single forward pass.
// The root's local pose is its model-space pose; every other joint is its parent's model-space
// transform concatenated with its local pose. Parents precede children in a Skeleton, so out may
// alias local.
//
// Parameters:
//   - out: destination model-space poses, one per joint
//   - local: parent-relative poses, one per joint
//   - skel: the skeleton defining the hierarchy
//
// Returns:
//   - error: common.ErrJointCountMismatch if either buffer length differs from the joint count
func LocalPosesToModelSpace(out, local []common.Transform, skel skeleton.Skeleton) error {
	n := skel.JointCount()
	if len(out) != n || len(local) != n {
		return fmt.Errorf("%w: skeleton has %d joints, buffers have %d and %d", common.ErrJointCountMismatch, n, len(out), len(local))
	}

	out[0] = local[0]
	for i := 1; i < n; i++ {
		out[i] = common.ConcatenateTransforms(out[skel.ParentIndex(i)], local[i])
	}
	return nil
}

// BuildSkinningMatrices computes matrix(model[i]) * inverseBind[i] for every joint.
// At the bind pose every result is the identity matrix.
//
// Parameters:
//   - out: destination skinning matrices, one per joint
//   - model: model-space poses, one per joint
//   - skel: the skeleton supplying inverse bind matrices
//
// Returns:
//   - error: common.ErrJointCountMismatch if either buffer length differs from the joint count
func BuildSkinningMatrices(out []common.Matrix4x4, model []common.Transform, skel skeleton.Skeleton) error {
	n := skel.JointCount()
	if len(out) != n || len(model) != n {
		return fmt.Errorf("%w: skeleton has %d joints, buffers have %d and %d", common.ErrJointCountMismatch, n, len(out), len(model))
	}

	for i := range out {
		out[i] = common.TransformToMatrix(model[i]).Mul4(skel.InverseBindMatrix(i))
	}
	return nil
}

// Resolver bundles the model-space scratch buffer needed to turn a local pose into skinning
// matrices for one skeleton. It is not safe for concurrent use; give each goroutine its own.
type Resolver struct {
	skel  skeleton.Skeleton
	model []common.Transform
}

// NewResolver allocates a Resolver for skel.
//
// Parameters:
//   - skel: the skeleton to resolve poses for
//
// Returns:
//   - *Resolver: the resolver
func NewResolver(skel skeleton.Skeleton) *Resolver {
	return &Resolver{
		skel:  skel,
		model: make([]common.Transform, skel.JointCount()),
	}
}

// Skeleton returns the skeleton the resolver was built for.
func (r *Resolver) Skeleton() skeleton.Skeleton {
	return r.skel
}

// ModelSpace returns the model-space poses computed by the last Resolve call.
// The slice is owned by the Resolver and overwritten on the next call.
func (r *Resolver) ModelSpace() []common.Transform {
	return r.model
}

// Resolve converts a local pose into skinning matrices.
//
// Parameters:
//   - out: destination skinning matrices, one per joint
//   - local: parent-relative poses, one per joint
//
// Returns:
//   - error: common.ErrJointCountMismatch if a buffer length differs from the joint count
func (r *Resolver) Resolve(out []common.Matrix4x4, local []common.Transform) error {
	if err := LocalPosesToModelSpace(r.model, local, r.skel); err != nil {
		return err
	}
	return BuildSkinningMatrices(out, r.model, r.skel)
}
