// Package idgen generates opaque identifiers for queued messages and
// management requests.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

var newFunc = func() string { return uuid.New().String() }

// New returns a random UUID string.
func New() string { return newFunc() }

// Sequence makes New return prefix-1, prefix-2 ... until the returned
// function is called.
func Sequence(prefix string) (restore func()) {
	previous := newFunc
	i := 0
	newFunc = func() string {
		i++
		return prefix + "-" + strconv.Itoa(i)
	}
	return func() { newFunc = previous }
}
