package pose

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// LayerMode selects how a layer's sample is combined with the pose beneath it.
type LayerMode int

const (
	// LayerModeAdditive adds the layer's (optionally differenced) sample on top with AdditiveBlend.
	LayerModeAdditive LayerMode = iota

	// LayerModeOverride cross-fades toward the layer's sample with LinearBlend.
	LayerModeOverride
)

func (m LayerMode) String() string {
	switch m {
	case LayerModeAdditive:
		return "additive"
	case LayerModeOverride:
		return "override"
	default:
		return fmt.Sprintf("LayerMode(%d)", int(m))
	}
}

// Layer is one entry of a LayerStack.
type Layer struct {
	Clip   animation.Clip
	Time   float32
	Weight float32
	Mode   LayerMode

	// Reference is used in additive mode to turn the sample into a difference pose. Ignored for override.
	Reference *ReferencePose
}

// ApplyLayer combines a layer sample with the current pose and writes the new pose into out.
// Additive mode expects sample to already be a difference pose when one is wanted.
// out may alias either input.
//
// Parameters:
//   - out: destination pose
//   - current: the pose beneath the layer
//   - sample: the layer's pose
//   - weight: the layer weight
//   - mode: how the layer is combined
//
// Returns:
//   - error: common.ErrJointCountMismatch if the buffers differ in length, or an error for an unknown mode
func ApplyLayer(out, current, sample []common.Transform, weight float32, mode LayerMode) error {
	switch mode {
	case LayerModeAdditive:
		return AdditiveBlend(out, current, sample, weight)
	case LayerModeOverride:
		return LinearBlend(out, current, sample, weight)
	default:
		return fmt.Errorf("unknown layer mode %v", mode)
	}
}

// LayerStack evaluates a base clip followed by layers onto a pose buffer. It owns scratch buffers
// sized to one joint count, so a stack must not be shared between goroutines.
type LayerStack struct {
	sample    []common.Transform
	refSample []common.Transform
}

// NewLayerStack allocates a LayerStack for poses of jointCount joints.
//
// Parameters:
//   - jointCount: the number of joints in every pose evaluated by the stack
//
// Returns:
//   - *LayerStack: the stack
func NewLayerStack(jointCount int) *LayerStack {
	return &LayerStack{
		sample:    make([]common.Transform, jointCount),
		refSample: make([]common.Transform, jointCount),
	}
}

// JointCount returns the pose size the stack was created for.
func (s *LayerStack) JointCount() int {
	return len(s.sample)
}

// Evaluate samples base at baseTime into out and applies each layer in order.
// Layers with zero weight are skipped.
//
// Parameters:
//   - out: destination local pose
//   - base: the base clip
//   - baseTime: the base clip sample time
//   - layers: layers applied bottom to top
//
// Returns:
//   - error: error if any buffer or clip disagrees with the stack's joint count
func (s *LayerStack) Evaluate(out []common.Transform, base animation.Clip, baseTime float32, layers []Layer) error {
	if err := animation.SampleSkeletonAnimation(out, baseTime, base); err != nil {
		return err
	}
	return s.Apply(out, layers)
}

// Apply applies layers in order onto out in place.
//
// Parameters:
//   - out: the pose to modify
//   - layers: layers applied bottom to top
//
// Returns:
//   - error: error if any buffer or clip disagrees with the stack's joint count
func (s *LayerStack) Apply(out []common.Transform, layers []Layer) error {
	if len(out) != len(s.sample) {
		return fmt.Errorf("%w: pose buffer has %d joints, stack has %d", common.ErrJointCountMismatch, len(out), len(s.sample))
	}
	for i, l := range layers {
		if l.Weight == 0 {
			continue
		}
		var err error
		if l.Mode == LayerModeAdditive {
			err = blendSkeletonAnimation(out, l.Clip, l.Time, l.Weight, l.Reference, s.sample, s.refSample)
		} else {
			err = animation.SampleSkeletonAnimation(s.sample, l.Time, l.Clip)
			if err == nil {
				err = ApplyLayer(out, out, s.sample, l.Weight, l.Mode)
			}
		}
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
