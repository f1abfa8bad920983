// Package extension provides the registry of user supplied extensions. The
// registry accepts registrations only after the hosting service marked it
// ready.
package extension
