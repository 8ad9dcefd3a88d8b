package skin_buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"

	"github.com/cogentcore/webgpu/wgpu"
)

// MatrixSize is the byte size of one row-major float32 4x4 skinning matrix.
const MatrixSize = 64

// ErrNotInitialized is returned when a SkinBuffer is written before Init.
var ErrNotInitialized = errors.New("skin buffer not initialized")

// skinBuffer is the implementation of the SkinBuffer interface.
type skinBuffer struct {
	mu *sync.Mutex

	label        string
	jointCount   int
	maxInstances uint32

	buffer *wgpu.Buffer
}

// SkinBuffer is a GPU storage buffer holding one palette of skinning matrices per animator instance.
// Instance i's palette starts at byte i * JointCount * MatrixSize, matching the offsets an
// animator.Animator stages.
type SkinBuffer interface {
	// Label returns the label of the GPU buffer.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Size returns the byte size of the buffer.
	//
	// Returns:
	//   - uint64: JointCount * MaxInstances * MatrixSize
	Size() uint64

	// Buffer returns the GPU buffer, or nil before Init.
	//
	// Returns:
	//   - *wgpu.Buffer: the storage buffer
	Buffer() *wgpu.Buffer

	// Init creates the GPU storage buffer on device. Calling Init again is a no-op.
	//
	// Parameters:
	//   - device: the device to allocate on
	//
	// Returns:
	//   - error: error if buffer creation fails
	Init(device *wgpu.Device) error

	// Write uploads staged animator writes to the GPU queue.
	//
	// Parameters:
	//   - queue: the device queue
	//   - writes: the writes returned by animator.Animator.StagedWriteData
	//
	// Returns:
	//   - error: ErrNotInitialized, or an error if a write falls outside the buffer
	Write(queue *wgpu.Queue, writes []animator.BufferWrite) error

	// Release frees the GPU buffer.
	Release()
}

var _ SkinBuffer = &skinBuffer{}

// NewSkinBuffer creates a SkinBuffer sized for an animator. Init must be called before Write.
//
// Parameters:
//   - label: the GPU buffer label
//   - jointCount: the skeleton joint count
//   - maxInstances: the animator instance capacity
//
// Returns:
//   - SkinBuffer: the skin buffer
func NewSkinBuffer(label string, jointCount int, maxInstances uint32) SkinBuffer {
	return &skinBuffer{
		mu:           &sync.Mutex{},
		label:        label,
		jointCount:   jointCount,
		maxInstances: maxInstances,
	}
}

// NewSkinBufferFor creates a SkinBuffer sized for the given animator's skeleton and capacity.
//
// Parameters:
//   - label: the GPU buffer label
//   - a: the animator whose writes the buffer receives
//
// Returns:
//   - SkinBuffer: the skin buffer
func NewSkinBufferFor(label string, a animator.Animator) SkinBuffer {
	return NewSkinBuffer(label, a.Skeleton().JointCount(), a.MaxInstances())
}

func (s *skinBuffer) Label() string {
	return s.label
}

func (s *skinBuffer) Size() uint64 {
	return uint64(s.jointCount) * uint64(s.maxInstances) * MatrixSize
}

func (s *skinBuffer) Buffer() *wgpu.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

func (s *skinBuffer) Init(device *wgpu.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer != nil {
		return nil
	}

	// Zero-sized storage buffers are rejected by wgpu validation.
	size := max(s.Size(), MatrixSize)
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            s.label,
		Size:             size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create skin buffer %q: %w", s.label, err)
	}
	s.buffer = buf
	return nil
}

func (s *skinBuffer) Write(queue *wgpu.Queue, writes []animator.BufferWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return ErrNotInitialized
	}
	if err := s.checkWrites(writes); err != nil {
		return err
	}
	for _, w := range writes {
		queue.WriteBuffer(s.buffer, w.Offset, w.Data)
	}
	return nil
}

// checkWrites rejects writes that would fall outside the buffer.
func (s *skinBuffer) checkWrites(writes []animator.BufferWrite) error {
	size := s.Size()
	for _, w := range writes {
		if w.Offset+uint64(len(w.Data)) > size {
			return fmt.Errorf("skin buffer %q: write for instance %d at offset %d with %d bytes exceeds size %d",
				s.label, w.Instance, w.Offset, len(w.Data), size)
		}
	}
	return nil
}

func (s *skinBuffer) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}
