// Package memory provides an in-process management server implementing
// dispatcher.Dispatcher. It keeps a resource tree, records every call and
// supports fault injection, which makes it the dispatcher of choice for
// tests and dry runs.
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/model"
)

// Call is a recorded round trip.
type Call struct {
	Operation  *model.Operation
	Attachment *dispatcher.Attachment
}

// Service is an in-memory management server.
type Service struct {
	mux     sync.Mutex
	tree    tree
	faults  []Fault
	calls   []Call
	content map[string][]byte
}

// compositeFailure carries a structured failure description.
type compositeFailure struct {
	description map[string]interface{}
}

func (c *compositeFailure) Error() string {
	return fmt.Sprintf("%v", c.description)
}

// New creates a standalone server with an empty model.
func New(options ...Option) *Service {
	ret := &Service{tree: tree{}, content: map[string][]byte{}}
	ret.tree.put(model.Root(), map[string]interface{}{
		model.AttrLaunchType:      "STANDALONE",
		model.AttrProcessType:     "Server",
		model.AttrProductName:     "WildFly",
		model.AttrManagementMajor: 22,
		model.AttrManagementMinor: 0,
		model.AttrManagementMicro: 0,
	})
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *Service) put(address model.Address, attributes map[string]interface{}) {
	s.tree.put(address, attributes)
}

// Execute runs a single operation.
func (s *Service) Execute(ctx context.Context, operation *model.Operation) (model.Node, error) {
	if err := ctx.Err(); err != nil {
		return model.Node{}, err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.calls = append(s.calls, Call{Operation: operation})
	return s.apply(operation)
}

// ExecuteComposite runs the composite in one call. Either all steps are
// applied or none.
func (s *Service) ExecuteComposite(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error) {
	if composite.IsEmpty() {
		return model.NewCompositeResult(), nil
	}
	operation := composite.Operation()
	result, err := s.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	return model.CompositeResultOf(result, composite.Len())
}

// Upload stores the attachment as deployment content and runs the operation.
func (s *Service) Upload(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
	if err := ctx.Err(); err != nil {
		return model.Node{}, err
	}
	if attachment == nil || len(attachment.Data) == 0 {
		return model.Node{}, dispatcher.ErrNoAttachment
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.calls = append(s.calls, Call{Operation: operation, Attachment: attachment})
	digest := sha1.Sum(attachment.Data)
	hash := hex.EncodeToString(digest[:])
	s.content[hash] = attachment.Data

	stored := &model.Operation{Name: operation.Name, Address: operation.Address, Params: map[string]interface{}{}}
	for k, v := range operation.Params {
		stored.Params[k] = v
	}
	stored.Params[model.AttrContent] = []interface{}{map[string]interface{}{"hash": hash}}
	return s.apply(stored)
}

func (s *Service) apply(operation *model.Operation) (model.Node, error) {
	working := s.tree
	if operation.Name == model.OpComposite {
		working = s.tree.clone()
	}
	result, err := execute(working, s.faults, operation)
	if err != nil {
		var composite *compositeFailure
		if errors.As(err, &composite) {
			return model.Node{}, model.NewFailure(operation, model.NewNode(composite.description))
		}
		return model.Node{}, model.NewFailure(operation, model.NewNode(err.Error()))
	}
	if operation.Name == model.OpComposite {
		s.tree = working
	}
	return model.NewNode(result), nil
}

// Calls returns recorded round trips in order.
func (s *Service) Calls() []Call {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret := make([]Call, len(s.calls))
	copy(ret, s.calls)
	return ret
}

// CallCount returns the number of round trips.
func (s *Service) CallCount() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.calls)
}

// Reset clears recorded calls.
func (s *Service) Reset() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.calls = nil
}

// Exists returns true if the resource exists.
func (s *Service) Exists(address model.Address) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	_, ok := s.tree[key(address)]
	return ok
}

// Attribute returns a resource attribute.
func (s *Service) Attribute(address model.Address, name string) (interface{}, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	r, ok := s.tree[key(address)]
	if !ok {
		return nil, false
	}
	value, ok := r.attributes[name]
	return value, ok
}

// Content returns uploaded content by hash.
func (s *Service) Content(hash string) []byte {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.content[hash]
}
