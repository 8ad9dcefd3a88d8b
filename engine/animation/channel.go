package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

var (
	// ErrMalformedAsset is returned when clip data is truncated, inconsistent or otherwise unreadable.
	ErrMalformedAsset = errors.New("malformed animation asset")
)

// Key is the set of value types a keyframe channel can carry.
type Key interface {
	common.Vec3 | common.Quaternion
}

// Channel is an immutable keyframe timeline for one transform component of one joint.
// Key times are in seconds and strictly ascending. A zero Channel has no keys and means the
// component is not animated.
type Channel[T Key] struct {
	times  []float32
	values []T
}

// Vec3Channel carries scale or translation keys.
type Vec3Channel = Channel[common.Vec3]

// QuaternionChannel carries rotation keys.
type QuaternionChannel = Channel[common.Quaternion]

// NewChannel creates a Channel from parallel key time and value slices. Both slices are copied.
//
// Parameters:
//   - times: key times in seconds, strictly ascending and finite
//   - values: key values, one per time
//
// Returns:
//   - Channel[T]: the channel
//   - error: ErrMalformedAsset if the lengths differ or the times are not strictly ascending
func NewChannel[T Key](times []float32, values []T) (Channel[T], error) {
	if len(times) != len(values) {
		return Channel[T]{}, fmt.Errorf("%w: %d key times for %d values", ErrMalformedAsset, len(times), len(values))
	}
	for i, tm := range times {
		if math.IsNaN(float64(tm)) || math.IsInf(float64(tm), 0) {
			return Channel[T]{}, fmt.Errorf("%w: key %d has non-finite time", ErrMalformedAsset, i)
		}
		if i > 0 && tm <= times[i-1] {
			return Channel[T]{}, fmt.Errorf("%w: key %d time %g does not follow %g", ErrMalformedAsset, i, tm, times[i-1])
		}
	}
	if len(times) == 0 {
		return Channel[T]{}, nil
	}
	return Channel[T]{
		times:  append([]float32(nil), times...),
		values: append([]T(nil), values...),
	}, nil
}

// Len returns the number of keys in the channel.
func (c Channel[T]) Len() int {
	return len(c.times)
}

// Time returns the time of key i.
func (c Channel[T]) Time(i int) float32 {
	return c.times[i]
}

// Value returns the value of key i.
func (c Channel[T]) Value(i int) T {
	return c.values[i]
}

// LastTime returns the time of the final key, or 0 for an empty channel.
func (c Channel[T]) LastTime() float32 {
	if len(c.times) == 0 {
		return 0
	}
	return c.times[len(c.times)-1]
}

// FindBracket returns the indices of the two keys surrounding time.
// At or before the first key, both indices are 0; at or after the last key, both are the last index.
// A time landing exactly on a key returns that key's index twice. The channel must not be empty.
//
// Parameters:
//   - time: the sample time in seconds
//
// Returns:
//   - int: the index of the key at or before time
//   - int: the index of the key after time, or the same index when clamped or exact
func (c Channel[T]) FindBracket(time float32) (int, int) {
	last := len(c.times) - 1
	// A NaN time fails every comparison and lands here, on the first key.
	if !(time > c.times[0]) {
		return 0, 0
	}
	if time >= c.times[last] {
		return last, last
	}

	next := sort.Search(len(c.times), func(i int) bool { return c.times[i] > time })
	if c.times[next-1] == time {
		return next - 1, next - 1
	}
	return next - 1, next
}

// Sample evaluates the channel at time. Keys are reproduced exactly; between keys the value is a
// linear interpolation, with shortest-arc correction and renormalization for rotations.
// An empty channel yields fallback.
//
// Parameters:
//   - time: the sample time in seconds
//   - fallback: the value returned when the channel has no keys
//
// Returns:
//   - T: the sampled value
func (c Channel[T]) Sample(time float32, fallback T) T {
	if len(c.times) == 0 {
		return fallback
	}

	first, second := c.FindBracket(time)
	if first == second {
		return c.values[first]
	}

	t := common.InverseLerp(c.times[first], c.times[second], time)
	return lerpKey(c.values[first], c.values[second], t)
}

func lerpKey[T Key](a, b T, t float32) T {
	switch av := any(a).(type) {
	case common.Vec3:
		return any(common.LerpVec3(av, any(b).(common.Vec3), t)).(T)
	case common.Quaternion:
		return any(common.LerpQuaternion(av, any(b).(common.Quaternion), t)).(T)
	}
	return a
}
