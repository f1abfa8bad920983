package extension

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind tells where an extension contributes.
type Kind string

const (
	KindHeader Kind = "header"
	KindFooter Kind = "footer"
	KindCustom Kind = "custom"
)

var (
	ErrNotReady  = errors.New("extension registry is not ready")
	ErrDuplicate = errors.New("extension already registered")
	ErrInvalid   = errors.New("invalid extension")
)

// Extension is a named entry point.
type Extension struct {
	ID         string
	Title      string
	Kind       Kind
	EntryPoint func(ctx context.Context) error
}

// Registry holds extensions by ID.
type Registry struct {
	mux        sync.RWMutex
	ready      bool
	extensions map[string]*Extension
}

// NewRegistry creates a registry that is not yet ready.
func NewRegistry() *Registry {
	return &Registry{extensions: map[string]*Extension{}}
}

// Ready allows registrations.
func (r *Registry) Ready() {
	r.mux.Lock()
	r.ready = true
	r.mux.Unlock()
}

// IsReady reports whether Ready was called.
func (r *Registry) IsReady() bool {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.ready
}

// Register adds an extension.
func (r *Registry) Register(extension *Extension) error {
	if extension == nil || extension.ID == "" {
		return ErrInvalid
	}
	if extension.Kind == "" {
		extension.Kind = KindCustom
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if !r.ready {
		return ErrNotReady
	}
	if _, ok := r.extensions[extension.ID]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicate, extension.ID)
	}
	r.extensions[extension.ID] = extension
	return nil
}

// Lookup returns an extension by ID.
func (r *Registry) Lookup(id string) (*Extension, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret, ok := r.extensions[id]
	return ret, ok
}

// List returns extensions sorted by ID, optionally filtered by kind.
func (r *Registry) List(kinds ...Kind) []*Extension {
	r.mux.RLock()
	defer r.mux.RUnlock()
	var ret []*Extension
	for _, extension := range r.extensions {
		if len(kinds) > 0 && !hasKind(kinds, extension.Kind) {
			continue
		}
		ret = append(ret, extension)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// Run invokes the entry point of an extension.
func (r *Registry) Run(ctx context.Context, id string) error {
	extension, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("extension %v not found", id)
	}
	if extension.EntryPoint == nil {
		return nil
	}
	return extension.EntryPoint(ctx)
}

func hasKind(kinds []Kind, kind Kind) bool {
	for _, candidate := range kinds {
		if candidate == kind {
			return true
		}
	}
	return false
}
