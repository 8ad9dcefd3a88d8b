package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// AnimatorBuilderOption is a functional option for configuring an Animator via NewAnimator.
type AnimatorBuilderOption func(*animator)

type namedClip struct {
	name string
	clip animation.Clip
}

// WithMaxInstances is an option builder that sets the instance capacity. AddInstance fails once
// the capacity is reached. Defaults to 200.
//
// Parameters:
//   - n: the maximum number of instances
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the capacity option to an animator
func WithMaxInstances(n uint32) AnimatorBuilderOption {
	return func(a *animator) {
		a.maxInstances = n
	}
}

// WithWorkers is an option builder that sets how many pool workers evaluate instances.
// Defaults to runtime.NumCPU().
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the worker option to an animator
func WithWorkers(n int) AnimatorBuilderOption {
	return func(a *animator) {
		a.workers = max(n, 0)
	}
}

// WithProfiler is an option builder that records every PrepareFrame into p.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the profiler option to an animator
func WithProfiler(p *profiler.Profiler) AnimatorBuilderOption {
	return func(a *animator) {
		a.profiler = p
	}
}

// WithClip is an option builder that registers a clip at construction. Clips are indexed in the
// order given.
//
// Parameters:
//   - name: the clip name
//   - clip: the clip
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clip option to an animator
func WithClip(name string, clip animation.Clip) AnimatorBuilderOption {
	return func(a *animator) {
		a.pendingClips = append(a.pendingClips, namedClip{name: name, clip: clip})
	}
}
