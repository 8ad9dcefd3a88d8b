package pose

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// ReferencePose names a clip and time whose sample is subtracted from a layer before it is
// blended additively.
type ReferencePose struct {
	Clip animation.Clip
	Time float32
}

func checkLengths(out []common.Transform, in ...[]common.Transform) error {
	for _, s := range in {
		if len(s) != len(out) {
			return fmt.Errorf("%w: pose buffers have %d and %d joints", common.ErrJointCountMismatch, len(out), len(s))
		}
	}
	return nil
}

// BuildDifferencePose writes the delta from reference to target into out, for use with AdditiveBlend.
// Rotation is target * inverse(reference); position and scale are componentwise differences.
// out may alias either input.
//
// Parameters:
//   - out: destination delta pose
//   - reference: the pose the delta is measured from
//   - target: the pose the delta is measured to
//
// Returns:
//   - error: common.ErrJointCountMismatch if the buffers differ in length
func BuildDifferencePose(out, reference, target []common.Transform) error {
	if err := checkLengths(out, reference, target); err != nil {
		return err
	}
	for i := range out {
		ref, tgt := reference[i], target[i]
		out[i] = common.Transform{
			Position: tgt.Position.Sub(ref.Position),
			Rotation: tgt.Rotation.Mul(common.InverseQuaternion(ref.Rotation)),
			Scale:    tgt.Scale.Sub(ref.Scale),
		}
	}
	return nil
}

// AdditiveBlend layers a delta pose onto base with the given weight and writes the result into out.
//
//	position = base.position + added.position * weight
//	rotation = lerp(identity, added.rotation, weight) * base.rotation
//	scale    = base.scale + added.scale * weight
//
// At weight 0 the output equals base exactly. out may alias either input.
//
// Parameters:
//   - out: destination pose
//   - base: the pose being layered onto
//   - added: the delta pose, usually from BuildDifferencePose
//   - weight: the layer weight
//
// Returns:
//   - error: common.ErrJointCountMismatch if the buffers differ in length
func AdditiveBlend(out, base, added []common.Transform, weight float32) error {
	if err := checkLengths(out, base, added); err != nil {
		return err
	}
	if weight == 0 {
		copy(out, base)
		return nil
	}
	identity := common.IdentityQuaternion()
	for i := range out {
		b, a := base[i], added[i]
		out[i] = common.Transform{
			Position: b.Position.Add(a.Position.Mul(weight)),
			Rotation: common.LerpQuaternion(identity, a.Rotation, weight).Mul(b.Rotation),
			Scale:    b.Scale.Add(a.Scale.Mul(weight)),
		}
	}
	return nil
}

// LinearBlend interpolates two poses joint by joint and writes the result into out.
// t = 0 yields a and t = 1 yields b. out may alias either input.
//
// Parameters:
//   - out: destination pose
//   - a: pose at t = 0
//   - b: pose at t = 1
//   - t: interpolation factor
//
// Returns:
//   - error: common.ErrJointCountMismatch if the buffers differ in length
func LinearBlend(out, a, b []common.Transform, t float32) error {
	if err := checkLengths(out, a, b); err != nil {
		return err
	}
	for i := range out {
		out[i] = common.LerpTransform(a[i], b[i], t)
	}
	return nil
}

// BlendSkeletonAnimation samples clip at time and blends the sample additively onto accum in place.
// When ref is not nil, the sample is first converted into a difference pose relative to ref's sample.
// Calling it repeatedly on the same accum stacks layers.
//
// Parameters:
//   - accum: the pose accumulated so far, updated in place
//   - clip: the clip to layer
//   - time: the sample time in seconds
//   - weight: the layer weight
//   - ref: optional reference pose for difference extraction
//
// Returns:
//   - error: common.ErrJointCountMismatch if any clip's joint count differs from len(accum)
func BlendSkeletonAnimation(accum []common.Transform, clip animation.Clip, time, weight float32, ref *ReferencePose) error {
	sample := make([]common.Transform, len(accum))
	var refSample []common.Transform
	if ref != nil {
		refSample = make([]common.Transform, len(accum))
	}
	return blendSkeletonAnimation(accum, clip, time, weight, ref, sample, refSample)
}

func blendSkeletonAnimation(accum []common.Transform, clip animation.Clip, time, weight float32, ref *ReferencePose, sample, refSample []common.Transform) error {
	if err := animation.SampleSkeletonAnimation(sample, time, clip); err != nil {
		return err
	}
	if ref != nil {
		if err := animation.SampleSkeletonAnimation(refSample, ref.Time, ref.Clip); err != nil {
			return fmt.Errorf("reference pose: %w", err)
		}
		if err := BuildDifferencePose(sample, refSample, sample); err != nil {
			return err
		}
	}
	return AdditiveBlend(accum, accum, sample, weight)
}
