package animation

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// JointAnimation holds the three independent keyframe channels of one joint.
// Each channel has its own key count and key times.
type JointAnimation struct {
	Scale     Vec3Channel
	Rotate    QuaternionChannel
	Translate Vec3Channel
}

// NewJointAnimation groups three channels into a JointAnimation.
//
// Parameters:
//   - scale: the scale channel, possibly empty
//   - rotate: the rotation channel, possibly empty
//   - translate: the translation channel, possibly empty
//
// Returns:
//   - JointAnimation: the joint animation
func NewJointAnimation(scale Vec3Channel, rotate QuaternionChannel, translate Vec3Channel) JointAnimation {
	return JointAnimation{Scale: scale, Rotate: rotate, Translate: translate}
}

// Sample evaluates all three channels at time. Empty channels fall back to the matching
// component of the identity transform.
//
// Parameters:
//   - time: the sample time in seconds
//
// Returns:
//   - common.Transform: the joint's local transform
func (j JointAnimation) Sample(time float32) common.Transform {
	return common.Transform{
		Scale:    j.Scale.Sample(time, common.Vec3{1, 1, 1}),
		Rotation: j.Rotate.Sample(time, common.IdentityQuaternion()),
		Position: j.Translate.Sample(time, common.Vec3{}),
	}
}

// Duration returns the time of the latest key across the three channels.
func (j JointAnimation) Duration() float32 {
	return max(j.Scale.LastTime(), j.Rotate.LastTime(), j.Translate.LastTime())
}

// clip is the implementation of the Clip interface.
type clip struct {
	name            string
	duration        float32
	keysPerSecond   uint32
	jointAnimations []JointAnimation
}

// Clip is an immutable skeletal animation: one JointAnimation per skeleton joint, indexed the
// same way as the skeleton. A Clip is safe to share across goroutines.
type Clip interface {
	// Name returns the debug name of the clip, or an empty string.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Duration returns the authored length of the clip in seconds. Callers use it for looping
	// and clamping; sampling does not consult it.
	//
	// Returns:
	//   - float32: the clip duration
	Duration() float32

	// KeysPerSecond returns the authored sample rate, or 0 if unknown.
	//
	// Returns:
	//   - uint32: the key rate
	KeysPerSecond() uint32

	// JointCount returns the number of joint animations in the clip.
	//
	// Returns:
	//   - int: the joint count
	JointCount() int

	// JointAnimation returns the channels of joint i.
	//
	// Parameters:
	//   - i: the joint index
	//
	// Returns:
	//   - JointAnimation: the joint's channels
	JointAnimation(i int) JointAnimation
}

var _ Clip = &clip{}

// NewClip creates a Clip. The joints slice is copied.
//
// Parameters:
//   - duration: the clip length in seconds, finite and not negative
//   - joints: one JointAnimation per skeleton joint
//   - options: variadic list of ClipBuilderOption functions
//
// Returns:
//   - Clip: the clip
//   - error: ErrMalformedAsset if the duration is invalid
func NewClip(duration float32, joints []JointAnimation, options ...ClipBuilderOption) (Clip, error) {
	if math.IsNaN(float64(duration)) || math.IsInf(float64(duration), 0) || duration < 0 {
		return nil, fmt.Errorf("%w: invalid duration %g", ErrMalformedAsset, duration)
	}

	c := &clip{
		duration:        duration,
		jointAnimations: append([]JointAnimation(nil), joints...),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *clip) Name() string {
	return c.name
}

func (c *clip) Duration() float32 {
	return c.duration
}

func (c *clip) KeysPerSecond() uint32 {
	return c.keysPerSecond
}

func (c *clip) JointCount() int {
	return len(c.jointAnimations)
}

func (c *clip) JointAnimation(i int) JointAnimation {
	return c.jointAnimations[i]
}
