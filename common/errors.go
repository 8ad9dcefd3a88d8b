package common

import "errors"

// ErrJointCountMismatch is returned when a pose buffer, clip, or matrix array does not have
// the joint count required by the operation it was passed to.
var ErrJointCountMismatch = errors.New("joint count mismatch")
