package skeleton

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

var (
	// ErrInvalidHierarchy is returned when joints are not stored parents-first with joint 0 as the root.
	ErrInvalidHierarchy = errors.New("invalid joint hierarchy")

	// ErrMalformedAsset is returned when skeleton bytes are truncated or otherwise unreadable.
	ErrMalformedAsset = errors.New("malformed skeleton asset")
)

// Joint is a single node of the joint hierarchy.
type Joint struct {
	// ParentIndex is the index of this joint's parent. The root joint is its own parent.
	ParentIndex uint32

	// InverseBindMatrix maps a model-space vertex into this joint's space at bind pose.
	InverseBindMatrix common.Matrix4x4
}

// skeleton is the implementation of the Skeleton interface.
type skeleton struct {
	name           string
	joints         []Joint
	rootJointIndex uint32
	jointNames     []string
	nameToIndex    map[string]int
}

// Skeleton is an immutable joint hierarchy with per-joint inverse bind matrices.
//
// Joints are stored in topological order: joint 0 is the root and is its own parent, and every
// other joint's parent index is lower than its own index. This lets every consumer resolve the
// hierarchy in a single forward pass. A Skeleton is safe to share across goroutines.
type Skeleton interface {
	// Name returns the debug name of the skeleton, or an empty string.
	//
	// Returns:
	//   - string: the skeleton name
	Name() string

	// JointCount returns the number of joints in the skeleton.
	//
	// Returns:
	//   - int: the joint count
	JointCount() int

	// RootJointIndex returns the stored root joint index. This is deprecated file metadata and is
	// conventionally 0; the hierarchy itself always treats joint 0 as the root.
	//
	// Returns:
	//   - uint32: the stored root joint index
	RootJointIndex() uint32

	// Joint returns a copy of the joint at index i.
	//
	// Parameters:
	//   - i: the joint index, in [0, JointCount())
	//
	// Returns:
	//   - Joint: the joint data
	Joint(i int) Joint

	// Joints returns a copy of every joint in stored order.
	//
	// Returns:
	//   - []Joint: the joints
	Joints() []Joint

	// ParentIndex returns the parent index of joint i.
	//
	// Parameters:
	//   - i: the joint index
	//
	// Returns:
	//   - int: the parent joint index
	ParentIndex(i int) int

	// InverseBindMatrix returns the model-space inverse bind matrix of joint i.
	//
	// Parameters:
	//   - i: the joint index
	//
	// Returns:
	//   - common.Matrix4x4: the inverse bind matrix
	InverseBindMatrix(i int) common.Matrix4x4

	// JointName returns the name of joint i, or an empty string if the skeleton carries no names.
	//
	// Parameters:
	//   - i: the joint index
	//
	// Returns:
	//   - string: the joint name
	JointName(i int) string

	// JointIndex looks up a joint by name.
	//
	// Parameters:
	//   - name: the joint name
	//
	// Returns:
	//   - int: the joint index, or -1 if no joint has that name
	JointIndex(name string) int
}

var _ Skeleton = &skeleton{}

// NewSkeleton creates a Skeleton from joints stored parents-first.
// The joints slice is copied, so the caller may reuse it.
//
// Parameters:
//   - joints: the joints in topological order
//   - options: variadic list of SkeletonBuilderOption functions
//
// Returns:
//   - Skeleton: the validated skeleton
//   - error: ErrInvalidHierarchy if the ordering invariant does not hold
func NewSkeleton(joints []Joint, options ...SkeletonBuilderOption) (Skeleton, error) {
	if err := Validate(joints); err != nil {
		return nil, err
	}

	s := &skeleton{
		joints: make([]Joint, len(joints)),
	}
	copy(s.joints, joints)

	for _, opt := range options {
		opt(s)
	}

	if s.jointNames != nil {
		if len(s.jointNames) != len(s.joints) {
			return nil, fmt.Errorf("%w: %d joint names for %d joints", ErrInvalidHierarchy, len(s.jointNames), len(s.joints))
		}
		s.nameToIndex = make(map[string]int, len(s.jointNames))
		for i, name := range s.jointNames {
			s.nameToIndex[name] = i
		}
	}

	return s, nil
}

// NewFromBindPose creates a Skeleton from parent indices and parent-relative bind transforms.
// Model-space bind transforms are resolved in one forward pass and each joint stores the inverse
// of its model-space bind matrix.
//
// Parameters:
//   - parents: the parent index of each joint, parents-first with parents[0] == 0
//   - localBind: the bind transform of each joint relative to its parent
//   - options: variadic list of SkeletonBuilderOption functions
//
// Returns:
//   - Skeleton: the validated skeleton
//   - error: error if the inputs differ in length or the hierarchy is invalid
func NewFromBindPose(parents []uint32, localBind []common.Transform, options ...SkeletonBuilderOption) (Skeleton, error) {
	if len(parents) != len(localBind) {
		return nil, fmt.Errorf("%w: %d parents for %d bind transforms", common.ErrJointCountMismatch, len(parents), len(localBind))
	}

	joints := make([]Joint, len(parents))
	for i, p := range parents {
		joints[i].ParentIndex = p
	}
	if err := Validate(joints); err != nil {
		return nil, err
	}

	modelBind := make([]common.Transform, len(localBind))
	for i := range joints {
		if i == 0 {
			modelBind[i] = localBind[i]
		} else {
			modelBind[i] = common.ConcatenateTransforms(modelBind[parents[i]], localBind[i])
		}
		joints[i].InverseBindMatrix = common.TransformToMatrixInverse(modelBind[i])
	}

	return NewSkeleton(joints, options...)
}

// Validate checks the parents-first ordering invariant of a joint list.
//
// Parameters:
//   - joints: the joints to check
//
// Returns:
//   - error: ErrInvalidHierarchy naming the first offending joint, or nil
func Validate(joints []Joint) error {
	if len(joints) == 0 {
		return fmt.Errorf("%w: skeleton has no joints", ErrInvalidHierarchy)
	}
	if joints[0].ParentIndex != 0 {
		return fmt.Errorf("%w: root joint has parent %d, want 0", ErrInvalidHierarchy, joints[0].ParentIndex)
	}
	for i := 1; i < len(joints); i++ {
		if int(joints[i].ParentIndex) >= i {
			return fmt.Errorf("%w: joint %d has parent %d, want < %d", ErrInvalidHierarchy, i, joints[i].ParentIndex, i)
		}
	}
	return nil
}

func (s *skeleton) Name() string {
	return s.name
}

func (s *skeleton) JointCount() int {
	return len(s.joints)
}

func (s *skeleton) RootJointIndex() uint32 {
	return s.rootJointIndex
}

func (s *skeleton) Joint(i int) Joint {
	return s.joints[i]
}

func (s *skeleton) Joints() []Joint {
	out := make([]Joint, len(s.joints))
	copy(out, s.joints)
	return out
}

func (s *skeleton) ParentIndex(i int) int {
	return int(s.joints[i].ParentIndex)
}

func (s *skeleton) InverseBindMatrix(i int) common.Matrix4x4 {
	return s.joints[i].InverseBindMatrix
}

func (s *skeleton) JointName(i int) string {
	if s.jointNames == nil {
		return ""
	}
	return s.jointNames[i]
}

func (s *skeleton) JointIndex(name string) int {
	if idx, ok := s.nameToIndex[name]; ok {
		return idx
	}
	return -1
}
