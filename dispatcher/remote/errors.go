package remote

import "errors"

// ErrUnauthorized is returned when the server rejected the credentials.
var ErrUnauthorized = errors.New("management endpoint rejected credentials")
