package skeleton

// SkeletonBuilderOption is a functional option for configuring a Skeleton during construction.
type SkeletonBuilderOption func(*skeleton)

// WithName is an option builder that sets the debug name of the Skeleton.
//
// Parameters:
//   - name: the skeleton name
//
// Returns:
//   - SkeletonBuilderOption: a function that applies the name option to a skeleton
func WithName(name string) SkeletonBuilderOption {
	return func(s *skeleton) {
		s.name = name
	}
}

// WithRootJointIndex is an option builder that records the deprecated root joint index from a file header.
// The value is kept for round-tripping only; joint 0 is always the root.
//
// Parameters:
//   - index: the stored root joint index
//
// Returns:
//   - SkeletonBuilderOption: a function that applies the root index option to a skeleton
func WithRootJointIndex(index uint32) SkeletonBuilderOption {
	return func(s *skeleton) {
		s.rootJointIndex = index
	}
}

// WithJointNames is an option builder that attaches a name to every joint for lookup with JointIndex.
// The slice must have one entry per joint; it is copied.
//
// Parameters:
//   - names: the joint names in joint order
//
// Returns:
//   - SkeletonBuilderOption: a function that applies the joint names option to a skeleton
func WithJointNames(names []string) SkeletonBuilderOption {
	return func(s *skeleton) {
		s.jointNames = append([]string(nil), names...)
	}
}
