package skeleton

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// SortJoints computes a parents-first ordering for joints given in arbitrary order, as produced by
// an importer walking a scene graph. Exactly one joint may have no parent (parent index < 0).
//
// Parameters:
//   - parents: the parent index of each joint in source order, negative for the root
//
// Returns:
//   - []int: source indices in sorted order; sorted[newIdx] = oldIdx
//   - map[int]int: old joint index to new joint index mapping
//   - error: ErrInvalidHierarchy if there is not exactly one root or a joint is unreachable from it
func SortJoints(parents []int32) ([]int, map[int]int, error) {
	if len(parents) == 0 {
		return nil, nil, fmt.Errorf("%w: skeleton has no joints", ErrInvalidHierarchy)
	}

	root := -1
	children := make(map[int][]int)
	for i, p := range parents {
		if p < 0 {
			if root >= 0 {
				return nil, nil, fmt.Errorf("%w: joints %d and %d are both roots", ErrInvalidHierarchy, root, i)
			}
			root = i
			continue
		}
		if int(p) >= len(parents) {
			return nil, nil, fmt.Errorf("%w: joint %d has out of range parent %d", ErrInvalidHierarchy, i, p)
		}
		children[int(p)] = append(children[int(p)], i)
	}
	if root < 0 {
		return nil, nil, fmt.Errorf("%w: no root joint", ErrInvalidHierarchy)
	}

	// BFS from the root; children are visited after their parent.
	sorted := make([]int, 0, len(parents))
	queue := []int{root}
	for len(queue) > 0 {
		oldIdx := queue[0]
		queue = queue[1:]
		sorted = append(sorted, oldIdx)
		queue = append(queue, children[oldIdx]...)
	}

	if len(sorted) != len(parents) {
		return nil, nil, fmt.Errorf("%w: %d joints are not reachable from root %d", ErrInvalidHierarchy, len(parents)-len(sorted), root)
	}

	oldToNew := make(map[int]int, len(sorted))
	for newIdx, oldIdx := range sorted {
		oldToNew[oldIdx] = newIdx
	}

	return sorted, oldToNew, nil
}

// NewSortedSkeleton sorts joints given in arbitrary order and builds a Skeleton from them.
// Joint names, if supplied with WithJointNames, must be in source order and are reordered to match.
//
// Parameters:
//   - parents: the parent index of each joint in source order, negative for the root
//   - inverseBind: the inverse bind matrix of each joint in source order
//   - names: joint names in source order, or nil
//   - options: variadic list of SkeletonBuilderOption functions
//
// Returns:
//   - Skeleton: the sorted skeleton
//   - map[int]int: old joint index to new joint index mapping, for remapping clips and skin weights
//   - error: error if the inputs disagree in length or the hierarchy is invalid
func NewSortedSkeleton(parents []int32, inverseBind []common.Matrix4x4, names []string, options ...SkeletonBuilderOption) (Skeleton, map[int]int, error) {
	if len(parents) != len(inverseBind) || (names != nil && len(names) != len(parents)) {
		return nil, nil, fmt.Errorf("%w: %d parents, %d inverse bind matrices, %d names", common.ErrJointCountMismatch, len(parents), len(inverseBind), len(names))
	}

	sorted, oldToNew, err := SortJoints(parents)
	if err != nil {
		return nil, nil, err
	}

	joints := make([]Joint, len(sorted))
	var sortedNames []string
	if names != nil {
		sortedNames = make([]string, len(sorted))
	}
	for newIdx, oldIdx := range sorted {
		parent := 0
		if parents[oldIdx] >= 0 {
			parent = oldToNew[int(parents[oldIdx])]
		}
		joints[newIdx] = Joint{
			ParentIndex:       uint32(parent),
			InverseBindMatrix: inverseBind[oldIdx],
		}
		if names != nil {
			sortedNames[newIdx] = names[oldIdx]
		}
	}

	if sortedNames != nil {
		options = append(options, WithJointNames(sortedNames))
	}
	s, err := NewSkeleton(joints, options...)
	if err != nil {
		return nil, nil, err
	}
	return s, oldToNew, nil
}
