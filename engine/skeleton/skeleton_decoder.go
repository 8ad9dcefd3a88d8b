package skeleton

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// FileExtension is the file extension of serialized skeletons.
const FileExtension = ".gobskel"

// maxPrealloc caps how many joints are allocated up front from an untrusted header count.
const maxPrealloc = 4096

// Decode reads a GOBSKEL skeleton. The layout is little-endian:
//
//	uint32 jointCount
//	uint32 rootJointIndex
//	jointCount x { uint32 parentIndex, float32[16] inverseBindMatrix (row-major) }
//
// The stream must end exactly after the last joint.
//
// Parameters:
//   - r: the reader positioned at the start of the asset
//   - options: variadic list of SkeletonBuilderOption functions applied to the result
//
// Returns:
//   - Skeleton: the decoded skeleton
//   - error: ErrMalformedAsset on truncation or trailing bytes, ErrInvalidHierarchy on bad ordering
func Decode(r io.Reader, options ...SkeletonBuilderOption) (Skeleton, error) {
	br := common.NewBinaryReader(r)

	count := br.Uint32()
	root := br.Uint32()
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedAsset, err)
	}

	joints := make([]Joint, 0, min(int(count), maxPrealloc))
	for i := uint32(0); i < count; i++ {
		j := Joint{
			ParentIndex:       br.Uint32(),
			InverseBindMatrix: br.Matrix(),
		}
		if err := br.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading joint %d of %d: %v", ErrMalformedAsset, i, count, err)
		}
		joints = append(joints, j)
	}

	if !br.AtEOF() {
		return nil, fmt.Errorf("%w: trailing bytes after %d joints", ErrMalformedAsset, count)
	}

	if root != 0 {
		common.Logger().Warn("skeleton stores a non-zero root joint index; joint 0 is used as the root", "rootJointIndex", root)
	}

	opts := append([]SkeletonBuilderOption{WithRootJointIndex(root)}, options...)
	return NewSkeleton(joints, opts...)
}

// Encode writes s in the GOBSKEL layout read by Decode.
//
// Parameters:
//   - w: the destination writer
//   - s: the skeleton to serialize
//
// Returns:
//   - error: the first write error, or nil
func Encode(w io.Writer, s Skeleton) error {
	bw := common.NewBinaryWriter(w)
	bw.Uint32(uint32(s.JointCount()))
	bw.Uint32(s.RootJointIndex())
	for i := 0; i < s.JointCount(); i++ {
		j := s.Joint(i)
		bw.Uint32(j.ParentIndex)
		bw.Matrix(j.InverseBindMatrix)
	}
	return bw.Flush()
}
