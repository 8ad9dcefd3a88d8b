package common

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// BinaryReader reads little-endian scalars from an asset stream. The first error is sticky:
// once a read fails every later read is a no-op returning zero, and Err reports the failure.
type BinaryReader struct {
	r   *bufio.Reader
	buf [64]byte
	err error
}

// NewBinaryReader wraps r for little-endian reads.
func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: bufio.NewReader(r)}
}

func (b *BinaryReader) read(n int) []byte {
	if b.err != nil {
		return nil
	}
	if _, err := io.ReadFull(b.r, b.buf[:n]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		b.err = err
		return nil
	}
	return b.buf[:n]
}

// Uint32 reads one little-endian uint32.
func (b *BinaryReader) Uint32() uint32 {
	p := b.read(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// Float32 reads one little-endian IEEE-754 float32.
func (b *BinaryReader) Float32() float32 {
	return math.Float32frombits(b.Uint32())
}

// Vec3 reads three float32 values as x, y, z.
func (b *BinaryReader) Vec3() Vec3 {
	return Vec3{b.Float32(), b.Float32(), b.Float32()}
}

// Quaternion reads four float32 values in w, x, y, z order.
func (b *BinaryReader) Quaternion() Quaternion {
	w := b.Float32()
	return Quaternion{W: w, V: b.Vec3()}
}

// Matrix reads 16 row-major float32 values.
func (b *BinaryReader) Matrix() Matrix4x4 {
	var m [16]float32
	for i := range m {
		m[i] = b.Float32()
	}
	return MatrixFromRowMajor(m)
}

// Err returns the first read error, or nil.
func (b *BinaryReader) Err() error {
	return b.err
}

// AtEOF reports whether the stream has been fully consumed. It returns false if a read error occurred
// or if any bytes remain.
func (b *BinaryReader) AtEOF() bool {
	if b.err != nil {
		return false
	}
	_, err := b.r.Peek(1)
	return errors.Is(err, io.EOF)
}

// BinaryWriter writes little-endian scalars to an asset stream with a sticky first error.
type BinaryWriter struct {
	w   *bufio.Writer
	buf [4]byte
	err error
}

// NewBinaryWriter wraps w for little-endian writes. Call Flush when done.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: bufio.NewWriter(w)}
}

// Uint32 writes one little-endian uint32.
func (b *BinaryWriter) Uint32(v uint32) {
	if b.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(b.buf[:], v)
	_, b.err = b.w.Write(b.buf[:])
}

// Float32 writes one little-endian IEEE-754 float32.
func (b *BinaryWriter) Float32(v float32) {
	b.Uint32(math.Float32bits(v))
}

// Vec3 writes x, y, z.
func (b *BinaryWriter) Vec3(v Vec3) {
	b.Float32(v[0])
	b.Float32(v[1])
	b.Float32(v[2])
}

// Quaternion writes w, x, y, z.
func (b *BinaryWriter) Quaternion(q Quaternion) {
	b.Float32(q.W)
	b.Vec3(q.V)
}

// Matrix writes m as 16 row-major float32 values.
func (b *BinaryWriter) Matrix(m Matrix4x4) {
	for _, f := range RowMajor(m) {
		b.Float32(f)
	}
}

// Flush writes any buffered data and returns the first error seen.
func (b *BinaryWriter) Flush() error {
	if b.err != nil {
		return b.err
	}
	return b.w.Flush()
}
