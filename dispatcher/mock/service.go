// Package mock provides a programmable dispatcher.Dispatcher stub.
package mock

import (
	"context"
	"sync"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/model"
)

// Handler answers an operation.
type Handler func(ctx context.Context, operation *model.Operation) (model.Node, error)

// CompositeHandler answers a composite.
type CompositeHandler func(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error)

// UploadHandler answers an upload.
type UploadHandler func(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error)

// Service is a dispatcher stub. Unset handlers answer with an undefined node.
type Service struct {
	OnExecute   Handler
	OnComposite CompositeHandler
	OnUpload    UploadHandler

	mux        sync.Mutex
	executed   []*model.Operation
	composites []*model.Composite
	uploads    []*model.Operation
}

// Execute records and delegates to OnExecute.
func (s *Service) Execute(ctx context.Context, operation *model.Operation) (model.Node, error) {
	s.mux.Lock()
	s.executed = append(s.executed, operation)
	handler := s.OnExecute
	s.mux.Unlock()
	if handler == nil {
		return model.Node{}, nil
	}
	return handler(ctx, operation)
}

// ExecuteComposite records and delegates to OnComposite, by default every
// step succeeds without result.
func (s *Service) ExecuteComposite(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error) {
	s.mux.Lock()
	s.composites = append(s.composites, composite)
	handler := s.OnComposite
	s.mux.Unlock()
	if handler == nil {
		steps := make([]*model.Result, composite.Len())
		for i := range steps {
			steps[i] = model.NewResult(nil)
		}
		return model.NewCompositeResult(steps...), nil
	}
	return handler(ctx, composite)
}

// Upload records and delegates to OnUpload.
func (s *Service) Upload(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
	s.mux.Lock()
	s.uploads = append(s.uploads, operation)
	handler := s.OnUpload
	s.mux.Unlock()
	if handler == nil {
		return model.Node{}, nil
	}
	return handler(ctx, attachment, operation)
}

// Executed returns operations passed to Execute.
func (s *Service) Executed() []*model.Operation {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]*model.Operation{}, s.executed...)
}

// Composites returns composites passed to ExecuteComposite.
func (s *Service) Composites() []*model.Composite {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]*model.Composite{}, s.composites...)
}

// Uploads returns operations passed to Upload.
func (s *Service) Uploads() []*model.Operation {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]*model.Operation{}, s.uploads...)
}

// Calls returns the total number of round trips.
func (s *Service) Calls() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.executed) + len(s.composites) + len(s.uploads)
}

// Fail returns a handler failing every operation with description.
func Fail(description string) Handler {
	return func(ctx context.Context, operation *model.Operation) (model.Node, error) {
		return model.Node{}, model.NewFailure(operation, model.NewNode(description))
	}
}

// Reply returns a handler answering every operation with value.
func Reply(value interface{}) Handler {
	return func(ctx context.Context, operation *model.Operation) (model.Node, error) {
		return model.NewNode(value), nil
	}
}
