package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// SampleSkeletonAnimation samples every joint of clip at time into out. Each joint's channels are
// sampled independently; time is clamped to each channel's key range, so looping must be applied
// by the caller before sampling.
//
// Parameters:
//   - out: destination local poses, one per clip joint
//   - time: the sample time in seconds
//   - clip: the clip to sample
//
// Returns:
//   - error: common.ErrJointCountMismatch if len(out) differs from the clip's joint count
func SampleSkeletonAnimation(out []common.Transform, time float32, clip Clip) error {
	if len(out) != clip.JointCount() {
		return fmt.Errorf("%w: pose buffer has %d joints, clip has %d", common.ErrJointCountMismatch, len(out), clip.JointCount())
	}
	for i := range out {
		out[i] = clip.JointAnimation(i).Sample(time)
	}
	return nil
}

// SampleJoint samples a single joint of clip at time.
//
// Parameters:
//   - clip: the clip to sample
//   - jointIndex: the joint to sample
//   - time: the sample time in seconds
//
// Returns:
//   - common.Transform: the joint's local transform
//   - error: error if jointIndex is out of range
func SampleJoint(clip Clip, jointIndex int, time float32) (common.Transform, error) {
	if jointIndex < 0 || jointIndex >= clip.JointCount() {
		return common.Transform{}, fmt.Errorf("joint index %d out of range [0, %d)", jointIndex, clip.JointCount())
	}
	return clip.JointAnimation(jointIndex).Sample(time), nil
}
