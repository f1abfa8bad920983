package accesscontrol

import "errors"

// ErrNotScoped is returned for scoped role tasks given a standard role.
var ErrNotScoped = errors.New("role is not scoped")
