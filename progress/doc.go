// Package progress provides a tracker keeping aggregated task counters of a
// chain run. A Tracker implements flow.Progress and may notify an observer
// after every change.
package progress
