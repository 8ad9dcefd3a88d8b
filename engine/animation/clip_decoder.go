package animation

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// FileExtension is the file extension of serialized clips.
const FileExtension = ".gobskelanim"

// maxPrealloc caps how many elements are allocated up front from an untrusted count.
const maxPrealloc = 4096

// Decode reads a GOBSKELANIM clip. The layout is little-endian:
//
//	float32 duration
//	uint32  jointCount
//	jointCount x {
//	    uint32 n, float32[n] times, Vec3[n] scale values
//	    uint32 n, float32[n] times, Quaternion[n] rotation values (w, x, y, z)
//	    uint32 n, float32[n] times, Vec3[n] translation values
//	}
//
// The stream must end exactly after the last joint. The file does not carry a key rate;
// pass WithKeysPerSecond to record one.
//
// Parameters:
//   - r: the reader positioned at the start of the asset
//   - options: variadic list of ClipBuilderOption functions applied to the result
//
// Returns:
//   - Clip: the decoded clip
//   - error: ErrMalformedAsset on truncation, trailing bytes or invalid key times
func Decode(r io.Reader, options ...ClipBuilderOption) (Clip, error) {
	br := common.NewBinaryReader(r)

	duration := br.Float32()
	count := br.Uint32()
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedAsset, err)
	}

	joints := make([]JointAnimation, 0, min(int(count), maxPrealloc))
	for i := uint32(0); i < count; i++ {
		scale, err := readChannel(br, br.Vec3)
		if err != nil {
			return nil, fmt.Errorf("joint %d scale: %w", i, err)
		}
		rotate, err := readChannel(br, br.Quaternion)
		if err != nil {
			return nil, fmt.Errorf("joint %d rotate: %w", i, err)
		}
		translate, err := readChannel(br, br.Vec3)
		if err != nil {
			return nil, fmt.Errorf("joint %d translate: %w", i, err)
		}
		joints = append(joints, NewJointAnimation(scale, rotate, translate))
	}

	if !br.AtEOF() {
		return nil, fmt.Errorf("%w: trailing bytes after %d joints", ErrMalformedAsset, count)
	}

	return NewClip(duration, joints, options...)
}

func readChannel[T Key](br *common.BinaryReader, readValue func() T) (Channel[T], error) {
	n := br.Uint32()
	if err := br.Err(); err != nil {
		return Channel[T]{}, fmt.Errorf("%w: reading key count: %v", ErrMalformedAsset, err)
	}

	times := make([]float32, 0, min(int(n), maxPrealloc))
	for k := uint32(0); k < n; k++ {
		times = append(times, br.Float32())
		if br.Err() != nil {
			break
		}
	}
	values := make([]T, 0, min(int(n), maxPrealloc))
	for k := uint32(0); k < n && br.Err() == nil; k++ {
		values = append(values, readValue())
	}
	if err := br.Err(); err != nil {
		return Channel[T]{}, fmt.Errorf("%w: reading %d keys: %v", ErrMalformedAsset, n, err)
	}

	return NewChannel(times, values)
}

// Encode writes c in the GOBSKELANIM layout read by Decode.
//
// Parameters:
//   - w: the destination writer
//   - c: the clip to serialize
//
// Returns:
//   - error: the first write error, or nil
func Encode(w io.Writer, c Clip) error {
	bw := common.NewBinaryWriter(w)
	bw.Float32(c.Duration())
	bw.Uint32(uint32(c.JointCount()))
	for i := 0; i < c.JointCount(); i++ {
		ja := c.JointAnimation(i)
		writeChannel(bw, ja.Scale, bw.Vec3)
		writeChannel(bw, ja.Rotate, bw.Quaternion)
		writeChannel(bw, ja.Translate, bw.Vec3)
	}
	return bw.Flush()
}

func writeChannel[T Key](bw *common.BinaryWriter, c Channel[T], writeValue func(T)) {
	bw.Uint32(uint32(c.Len()))
	for _, t := range c.times {
		bw.Float32(t)
	}
	for _, v := range c.values {
		writeValue(v)
	}
}
