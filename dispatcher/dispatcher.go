// Package dispatcher defines the client executing management operations
// against a server.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/mgmtflow/model"
)

// ErrNoAttachment is returned by Upload without attachment data.
var ErrNoAttachment = errors.New("attachment was empty")

// Dispatcher executes management operations. A failed operation is reported
// as *model.Failure. Implementations must be safe for concurrent use.
type Dispatcher interface {
	// Execute runs a single operation and returns its result node.
	Execute(ctx context.Context, operation *model.Operation) (model.Node, error)
	// ExecuteComposite runs all operations in one round trip. Step results
	// are aligned with the submission order.
	ExecuteComposite(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error)
	// Upload runs an operation with the attachment as its input stream 0.
	Upload(ctx context.Context, attachment *Attachment, operation *model.Operation) (model.Node, error)
}

// Attachment is file content uploaded with an operation.
type Attachment struct {
	Name string
	Data []byte
}

// LoadAttachment reads an attachment from any afs supported URL.
func LoadAttachment(ctx context.Context, fs afs.Service, URL string) (*Attachment, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment %v: %w", URL, err)
	}
	return &Attachment{Name: path.Base(URL), Data: data}, nil
}

// InputStream marks the operation content as the first uploaded stream.
func InputStream(operation *model.Operation) *model.Operation {
	if operation.Params == nil {
		operation.Params = map[string]interface{}{}
	}
	operation.Params[model.AttrContent] = []interface{}{
		map[string]interface{}{model.AttrInputStreamIndex: 0},
	}
	return operation
}
