// Package clock is the time source of run timestamps.
package clock

import "time"

var nowFunc = time.Now

// Now returns the current time.
func Now() time.Time { return nowFunc() }

// Freeze makes Now return t until the returned function is called.
func Freeze(t time.Time) (restore func()) {
	previous := nowFunc
	nowFunc = func() time.Time { return t }
	return func() { nowFunc = previous }
}
