package policy

import (
	"errors"
	"fmt"
)

// ErrDenied matches every *DeniedError.
var ErrDenied = errors.New("operation denied")

// DeniedError reports a rejected operation.
type DeniedError struct {
	Action string
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%v: %v", e.Action, e.Reason)
}

// Is makes errors.Is(err, ErrDenied) succeed.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// ModeError reports an unknown policy mode.
type ModeError struct {
	Mode string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("unsupported policy mode: %q", e.Mode)
}
