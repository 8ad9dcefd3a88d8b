package animator

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/pose"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

var (
	// ErrInstanceLimit is returned by AddInstance when the animator already holds MaxInstances instances.
	ErrInstanceLimit = errors.New("animator instance limit reached")

	// ErrInvalidInstance is returned when an instance index is out of range.
	ErrInvalidInstance = errors.New("invalid instance index")

	// ErrInvalidClip is returned when a clip index or name is not registered.
	ErrInvalidClip = errors.New("invalid clip")
)

const (
	// defaultMaxInstances is the instance capacity used when WithMaxInstances is not given.
	defaultMaxInstances = 200

	// maxTasksPerFrame bounds how many tasks one PrepareFrame submits; it matches the pool queue size.
	maxTasksPerFrame = 256

	// matrixBytes is the size of one row-major float32 4x4 matrix.
	matrixBytes = 64
)

// BufferWrite is a staged upload of one instance's skinning matrices. Data holds JointCount
// row-major float32 matrices and stays valid until the next PrepareFrame.
type BufferWrite struct {
	Instance uint32
	Offset   uint64
	Data     []byte
}

// Layer is an additive animation played on top of an instance's primary clip.
type Layer struct {
	// ClipIndex is the clip layered on top.
	ClipIndex uint32

	// ReferenceClipIndex is the clip whose pose is subtracted from the layer before blending,
	// or -1 to add the layer's pose unchanged.
	ReferenceClipIndex int

	// ReferenceTime is the time at which the reference clip is sampled.
	ReferenceTime float32

	// Weight scales the layer's contribution.
	Weight float32

	// Loop wraps the layer's playback time at its clip duration instead of holding the last pose.
	Loop bool
}

// layerState is the playback state of one Layer on one instance.
type layerState struct {
	Layer
	time      float32
	reference *pose.ReferencePose
}

// instanceState holds the playback state of one instance.
type instanceState struct {
	playing   bool
	clipIndex uint32

	time, speed                 float32
	loop, blending              bool
	blendTo                     uint32
	blendToTime                 float32
	blendDuration, blendElapsed float32

	layers []layerState
}

// evalScratch holds the buffers one evaluation task reuses across frames.
type evalScratch struct {
	local, target []common.Transform
	stack         *pose.LayerStack
	resolver      *hierarchy.Resolver
	layers        []pose.Layer
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	skeleton skeleton.Skeleton

	clips        []animation.Clip
	clipNames    map[string]uint32
	pendingClips []namedClip

	maxInstances, instanceCount uint32
	instanceStateData           []instanceState

	// palette holds JointCount skinning matrices per instance; packed holds the same data row-major.
	palette []common.Matrix4x4
	packed  []float32

	stagedWriteData []BufferWrite

	workers int
	pool    worker.DynamicWorkerPool
	scratch []*evalScratch

	profiler *profiler.Profiler
}

// Animator plays skeletal animation clips on many instances of one skeleton.
//
// The Animator owns per-instance playback state (clip, time, speed, looping, cross-fades and
// additive layers). Each PrepareFrame advances that state and poses every instance in parallel on a
// worker pool, producing one palette of skinning matrices per instance and staging it as a
// BufferWrite for upload. Which clips play and when is decided by the caller.
type Animator interface {
	// Skeleton returns the skeleton every instance is posed against.
	//
	// Returns:
	//   - skeleton.Skeleton: the shared skeleton
	Skeleton() skeleton.Skeleton

	// AddClip registers a clip for playback.
	//
	// Parameters:
	//   - name: a unique name to look the clip up by
	//   - clip: the clip; its joint count must match the skeleton
	//
	// Returns:
	//   - uint32: the index of the added clip
	//   - error: common.ErrJointCountMismatch or a duplicate-name error
	AddClip(name string, clip animation.Clip) (uint32, error)

	// ClipIndex looks up a registered clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - uint32: the clip index
	//   - bool: false if no clip has that name
	ClipIndex(name string) (uint32, bool)

	// ClipCount returns the number of registered clips.
	//
	// Returns:
	//   - int: the clip count
	ClipCount() int

	// MaxInstances returns the maximum number of instances this animator can manage.
	//
	// Returns:
	//   - uint32: the maximum number of instances supported
	MaxInstances() uint32

	// InstanceCount returns the current number of registered instances.
	//
	// Returns:
	//   - uint32: the number of active instances
	InstanceCount() uint32

	// AddInstance registers a new instance. Until a clip is played the instance holds the bind pose.
	//
	// Returns:
	//   - uint32: the index of the newly registered instance
	//   - error: ErrInstanceLimit if the animator is full
	AddInstance() (uint32, error)

	// RemoveInstance removes the instance at the given index using a swap-remove strategy.
	// The last instance's state is moved into the removed slot.
	//
	// Parameters:
	//   - index: the instance index to remove
	//
	// Returns:
	//   - uint32: the old last index that was swapped into the removed slot (only meaningful when bool is true)
	//   - bool: true if the last instance was swapped into the removed slot
	RemoveInstance(index uint32) (uint32, bool)

	// PlayAnimation starts playback of a clip on an instance from time 0 at normal speed,
	// cancelling any blend in progress.
	//
	// Parameters:
	//   - instanceIndex: the instance to animate
	//   - clipIndex: the clip to play
	//   - loop: whether the clip wraps at its duration
	//
	// Returns:
	//   - error: ErrInvalidInstance or ErrInvalidClip
	PlayAnimation(instanceIndex, clipIndex uint32, loop bool) error

	// BlendToAnimation cross-fades an instance from its current clip to a new one over blendDuration
	// seconds. The target starts at time 0. A non-positive duration switches immediately.
	//
	// Parameters:
	//   - instanceIndex: the instance to blend
	//   - targetClipIndex: the clip to blend to
	//   - blendDuration: the transition time in seconds
	//
	// Returns:
	//   - error: ErrInvalidInstance or ErrInvalidClip
	BlendToAnimation(instanceIndex, targetClipIndex uint32, blendDuration float32) error

	// SetAnimationTime sets the playback position of an instance's current clip.
	// No-op for an invalid instance.
	//
	// Parameters:
	//   - instanceIndex: the instance to update
	//   - time: the playback time in seconds
	SetAnimationTime(instanceIndex uint32, time float32)

	// SetAnimationSpeed sets the playback speed multiplier of an instance.
	// No-op for an invalid instance.
	//
	// Parameters:
	//   - instanceIndex: the instance to update
	//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
	SetAnimationSpeed(instanceIndex uint32, speed float32)

	// AnimationTime returns the playback position of an instance's current clip.
	//
	// Parameters:
	//   - instanceIndex: the instance to query
	//
	// Returns:
	//   - float32: the playback time in seconds, or 0 for an invalid instance
	AnimationTime(instanceIndex uint32) float32

	// CurrentClip returns the clip an instance is playing.
	//
	// Parameters:
	//   - instanceIndex: the instance to query
	//
	// Returns:
	//   - uint32: the clip index
	//   - bool: false if the instance is invalid or has not started a clip
	CurrentClip(instanceIndex uint32) (uint32, bool)

	// IsBlending returns whether an instance is currently cross-fading.
	//
	// Parameters:
	//   - instanceIndex: the instance to check
	//
	// Returns:
	//   - bool: true if the instance is blending
	IsBlending(instanceIndex uint32) bool

	// BlendProgress returns the current blend progress for an instance.
	//
	// Parameters:
	//   - instanceIndex: the instance to check
	//
	// Returns:
	//   - float32: blend progress from 0.0 (start) to 1.0 (complete), or 0.0 if not blending
	BlendProgress(instanceIndex uint32) float32

	// CancelBlend stops an in-progress blend and keeps the current primary clip.
	//
	// Parameters:
	//   - instanceIndex: the instance to cancel blending for
	CancelBlend(instanceIndex uint32)

	// AddLayer adds an additive layer to an instance. Layers are applied in the order added, on top of
	// the playing clip; an instance that has not started a clip keeps its bind pose.
	//
	// Parameters:
	//   - instanceIndex: the instance to layer onto
	//   - layer: the layer description
	//
	// Returns:
	//   - int: the layer index on that instance
	//   - error: ErrInvalidInstance or ErrInvalidClip
	AddLayer(instanceIndex uint32, layer Layer) (int, error)

	// SetLayerWeight changes the weight of an existing layer.
	//
	// Parameters:
	//   - instanceIndex: the instance owning the layer
	//   - layerIndex: the layer index returned by AddLayer
	//   - weight: the new weight
	//
	// Returns:
	//   - error: ErrInvalidInstance or an out of range error
	SetLayerWeight(instanceIndex uint32, layerIndex int, weight float32) error

	// ClearLayers removes every layer from an instance. No-op for an invalid instance.
	//
	// Parameters:
	//   - instanceIndex: the instance to clear
	ClearLayers(instanceIndex uint32)

	// PrepareFrame advances every instance by deltaTime, poses all instances in parallel and stages
	// one BufferWrite per instance.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: the first evaluation error, if any instance failed to pose
	PrepareFrame(deltaTime float32) error

	// SkinningMatrices returns a copy of the skinning matrices computed for an instance by the last PrepareFrame.
	//
	// Parameters:
	//   - instanceIndex: the instance to query
	//
	// Returns:
	//   - []common.Matrix4x4: JointCount matrices, or nil for an invalid instance
	SkinningMatrices(instanceIndex uint32) []common.Matrix4x4

	// StagedWriteData returns and clears the pending buffer writes.
	//
	// Returns:
	//   - []BufferWrite: the pending writes
	StagedWriteData() []BufferWrite
}

var _ Animator = &animator{}

// NewAnimator creates an Animator for instances of skel.
//
// Parameters:
//   - skel: the skeleton every instance is posed against
//   - options: variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: the animator
//   - error: error if a clip supplied through WithClip does not match the skeleton
func NewAnimator(skel skeleton.Skeleton, options ...AnimatorBuilderOption) (Animator, error) {
	a := &animator{
		mu:           &sync.Mutex{},
		skeleton:     skel,
		clipNames:    make(map[string]uint32),
		maxInstances: defaultMaxInstances,
	}

	for _, opt := range options {
		opt(a)
	}

	pending := a.pendingClips
	a.pendingClips = nil
	for _, c := range pending {
		if _, err := a.AddClip(c.name, c.clip); err != nil {
			return nil, err
		}
	}

	a.workers = common.Coalesce(a.workers, runtime.NumCPU())
	a.pool = worker.NewDynamicWorkerPool(a.workers, maxTasksPerFrame, 1*time.Second)
	a.instanceStateData = make([]instanceState, 0, a.maxInstances)
	return a, nil
}

func (a *animator) Skeleton() skeleton.Skeleton {
	return a.skeleton
}

func (a *animator) AddClip(name string, clip animation.Clip) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if clip.JointCount() != a.skeleton.JointCount() {
		return 0, fmt.Errorf("%w: clip %q animates %d joints, skeleton has %d",
			common.ErrJointCountMismatch, name, clip.JointCount(), a.skeleton.JointCount())
	}
	if _, ok := a.clipNames[name]; ok {
		return 0, fmt.Errorf("clip %q already registered", name)
	}

	idx := uint32(len(a.clips))
	a.clips = append(a.clips, clip)
	a.clipNames[name] = idx
	return idx, nil
}

func (a *animator) ClipIndex(name string) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.clipNames[name]
	return idx, ok
}

func (a *animator) ClipCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.clips)
}

func (a *animator) MaxInstances() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxInstances
}

func (a *animator) InstanceCount() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instanceCount
}

func (a *animator) AddInstance() (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.instanceCount >= a.maxInstances {
		return 0, fmt.Errorf("%w: %d", ErrInstanceLimit, a.maxInstances)
	}

	idx := a.instanceCount
	a.instanceCount++
	a.instanceStateData = append(a.instanceStateData, instanceState{speed: 1})

	jc := a.skeleton.JointCount()
	for range jc {
		a.palette = append(a.palette, common.Matrix4x4{})
	}
	a.packed = append(a.packed, make([]float32, jc*16)...)
	a.resetPalette(idx)

	return idx, nil
}

func (a *animator) RemoveInstance(index uint32) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.instanceCount == 0 || index >= a.instanceCount {
		return 0, false
	}

	last := a.instanceCount - 1
	swapped := index != last
	jc := a.skeleton.JointCount()

	if swapped {
		a.instanceStateData[index] = a.instanceStateData[last]
		copy(a.palette[int(index)*jc:int(index+1)*jc], a.palette[int(last)*jc:int(last+1)*jc])
		copy(a.packed[int(index)*jc*16:int(index+1)*jc*16], a.packed[int(last)*jc*16:int(last+1)*jc*16])
	}

	a.instanceStateData = a.instanceStateData[:last]
	a.palette = a.palette[:int(last)*jc]
	a.packed = a.packed[:int(last)*jc*16]
	a.instanceCount--

	return last, swapped
}

func (a *animator) PlayAnimation(instanceIndex, clipIndex uint32, loop bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validate(instanceIndex, clipIndex); err != nil {
		return err
	}
	state := &a.instanceStateData[instanceIndex]
	state.playing = true
	state.clipIndex = clipIndex
	state.time = 0
	state.speed = 1.0
	state.loop = loop
	state.blending = false
	state.blendElapsed = 0
	return nil
}

func (a *animator) BlendToAnimation(instanceIndex, targetClipIndex uint32, blendDuration float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validate(instanceIndex, targetClipIndex); err != nil {
		return err
	}
	state := &a.instanceStateData[instanceIndex]
	if !state.playing || blendDuration <= 0 {
		state.playing = true
		state.clipIndex = targetClipIndex
		state.time = 0
		state.blending = false
		state.blendElapsed = 0
		return nil
	}
	state.blending = true
	state.blendTo = targetClipIndex
	state.blendToTime = 0
	state.blendDuration = blendDuration
	state.blendElapsed = 0
	return nil
}

func (a *animator) SetAnimationTime(instanceIndex uint32, time float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return
	}
	a.instanceStateData[instanceIndex].time = time
}

func (a *animator) SetAnimationSpeed(instanceIndex uint32, speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return
	}
	a.instanceStateData[instanceIndex].speed = speed
}

func (a *animator) AnimationTime(instanceIndex uint32) float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return 0
	}
	return a.instanceStateData[instanceIndex].time
}

func (a *animator) CurrentClip(instanceIndex uint32) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount || !a.instanceStateData[instanceIndex].playing {
		return 0, false
	}
	return a.instanceStateData[instanceIndex].clipIndex, true
}

func (a *animator) IsBlending(instanceIndex uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return false
	}
	return a.instanceStateData[instanceIndex].blending
}

func (a *animator) BlendProgress(instanceIndex uint32) float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return 0
	}
	state := &a.instanceStateData[instanceIndex]
	if !state.blending {
		return 0
	}
	return state.blendElapsed / state.blendDuration
}

func (a *animator) CancelBlend(instanceIndex uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return
	}
	a.instanceStateData[instanceIndex].blending = false
	a.instanceStateData[instanceIndex].blendElapsed = 0
}

func (a *animator) AddLayer(instanceIndex uint32, layer Layer) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validate(instanceIndex, layer.ClipIndex); err != nil {
		return 0, err
	}

	ls := layerState{Layer: layer}
	if layer.ReferenceClipIndex >= 0 {
		if layer.ReferenceClipIndex >= len(a.clips) {
			return 0, fmt.Errorf("%w: reference clip index %d", ErrInvalidClip, layer.ReferenceClipIndex)
		}
		ls.reference = &pose.ReferencePose{Clip: a.clips[layer.ReferenceClipIndex], Time: layer.ReferenceTime}
	}

	state := &a.instanceStateData[instanceIndex]
	state.layers = append(state.layers, ls)
	return len(state.layers) - 1, nil
}

func (a *animator) SetLayerWeight(instanceIndex uint32, layerIndex int, weight float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return fmt.Errorf("%w: %d", ErrInvalidInstance, instanceIndex)
	}
	state := &a.instanceStateData[instanceIndex]
	if layerIndex < 0 || layerIndex >= len(state.layers) {
		return fmt.Errorf("layer index %d out of range [0, %d)", layerIndex, len(state.layers))
	}
	state.layers[layerIndex].Weight = weight
	return nil
}

func (a *animator) ClearLayers(instanceIndex uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return
	}
	a.instanceStateData[instanceIndex].layers = nil
}

func (a *animator) PrepareFrame(deltaTime float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	for i := range a.instanceStateData {
		a.advance(&a.instanceStateData[i], deltaTime)
	}

	count := int(a.instanceCount)
	if count == 0 {
		return nil
	}

	// Split instances into contiguous batches so one frame never submits more tasks than the pool queue holds.
	batches := min(count, a.workers*4, maxTasksPerFrame)
	batchSize := (count + batches - 1) / batches
	batches = (count + batchSize - 1) / batchSize
	a.ensureScratch(batches)

	errs := make([]error, batches)
	var wg sync.WaitGroup
	for b := 0; b < batches; b++ {
		first := b * batchSize
		end := min(first+batchSize, count)
		scratch := a.scratch[b]
		id := b

		wg.Add(1)
		a.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := first; i < end; i++ {
					if err := a.evaluate(i, scratch); err != nil {
						errs[id] = fmt.Errorf("instance %d: %w", i, err)
						return nil, errs[id]
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	jc := a.skeleton.JointCount()
	stride := jc * 16
	for i := 0; i < count; i++ {
		a.stagedWriteData = append(a.stagedWriteData, BufferWrite{
			Instance: uint32(i),
			Offset:   uint64(i * jc * matrixBytes),
			Data:     common.SliceToBytes(a.packed[i*stride : (i+1)*stride]),
		})
	}

	if a.profiler != nil {
		a.profiler.Record(count, time.Since(start))
		a.profiler.Tick()
	}
	return nil
}

func (a *animator) SkinningMatrices(instanceIndex uint32) []common.Matrix4x4 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= a.instanceCount {
		return nil
	}
	jc := a.skeleton.JointCount()
	out := make([]common.Matrix4x4, jc)
	copy(out, a.palette[int(instanceIndex)*jc:int(instanceIndex+1)*jc])
	return out
}

func (a *animator) StagedWriteData() []BufferWrite {
	a.mu.Lock()
	defer a.mu.Unlock()
	writes := a.stagedWriteData
	a.stagedWriteData = nil
	return writes
}

// validate checks an instance and clip index pair. Callers hold a.mu.
func (a *animator) validate(instanceIndex, clipIndex uint32) error {
	if instanceIndex >= a.instanceCount {
		return fmt.Errorf("%w: %d", ErrInvalidInstance, instanceIndex)
	}
	if int(clipIndex) >= len(a.clips) {
		return fmt.Errorf("%w: index %d", ErrInvalidClip, clipIndex)
	}
	return nil
}

// advance steps one instance's playback clocks by deltaTime and completes finished blends.
func (a *animator) advance(state *instanceState, deltaTime float32) {
	if state.playing {
		state.time = wrapTime(state.time+deltaTime*state.speed, a.clips[state.clipIndex].Duration(), state.loop)

		if state.blending {
			state.blendElapsed += deltaTime
			state.blendToTime = wrapTime(state.blendToTime+deltaTime*state.speed, a.clips[state.blendTo].Duration(), state.loop)

			if state.blendElapsed/state.blendDuration >= 1.0 {
				state.clipIndex = state.blendTo
				state.time = state.blendToTime
				state.blending = false
				state.blendElapsed = 0
			}
		}
	}

	for i := range state.layers {
		l := &state.layers[i]
		l.time = wrapTime(l.time+deltaTime*state.speed, a.clips[l.ClipIndex].Duration(), l.Loop)
	}
}

// wrapTime wraps t into [0, duration) when looping and clamps it to [0, duration] otherwise.
func wrapTime(t, duration float32, loop bool) float32 {
	if duration <= 0 {
		return 0
	}
	if loop {
		if t >= duration || t < 0 {
			t = float32(math.Mod(float64(t), float64(duration)))
			if t < 0 {
				t += duration
			}
		}
		return t
	}
	return min(max(t, 0), duration)
}

// evaluate poses instance i into its palette slot. Runs on a pool worker; it only touches
// instance i's slots and the task's own scratch.
func (a *animator) evaluate(i int, s *evalScratch) error {
	state := &a.instanceStateData[i]
	jc := a.skeleton.JointCount()
	out := a.palette[i*jc : (i+1)*jc]

	// Layers are deltas on top of a clip; without one the instance holds the bind pose.
	if !state.playing {
		a.resetPalette(uint32(i))
		return nil
	}

	if err := animation.SampleSkeletonAnimation(s.local, state.time, a.clips[state.clipIndex]); err != nil {
		return err
	}
	if state.blending {
		if err := animation.SampleSkeletonAnimation(s.target, state.blendToTime, a.clips[state.blendTo]); err != nil {
			return err
		}
		progress := min(state.blendElapsed/state.blendDuration, 1)
		if err := pose.LinearBlend(s.local, s.local, s.target, progress); err != nil {
			return err
		}
	}

	s.layers = s.layers[:0]
	for _, l := range state.layers {
		s.layers = append(s.layers, pose.Layer{
			Clip:      a.clips[l.ClipIndex],
			Time:      l.time,
			Weight:    l.Weight,
			Mode:      pose.LayerModeAdditive,
			Reference: l.reference,
		})
	}
	if err := s.stack.Apply(s.local, s.layers); err != nil {
		return err
	}

	if err := s.resolver.Resolve(out, s.local); err != nil {
		return err
	}
	common.PackRowMajor(a.packed[i*jc*16:(i+1)*jc*16], out)
	return nil
}

// resetPalette fills an instance's palette with identity matrices, the bind pose.
func (a *animator) resetPalette(index uint32) {
	jc := a.skeleton.JointCount()
	out := a.palette[int(index)*jc : int(index+1)*jc]
	for j := range out {
		out[j] = common.Matrix4x4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	}
	common.PackRowMajor(a.packed[int(index)*jc*16:int(index+1)*jc*16], out)
}

// ensureScratch grows the per-task scratch pool to n entries.
func (a *animator) ensureScratch(n int) {
	jc := a.skeleton.JointCount()
	for len(a.scratch) < n {
		a.scratch = append(a.scratch, &evalScratch{
			local:    make([]common.Transform, jc),
			target:   make([]common.Transform, jc),
			stack:    pose.NewLayerStack(jc),
			resolver: hierarchy.NewResolver(a.skeleton),
		})
	}
}
