// Package remote implements dispatcher.Dispatcher over the HTTP management
// API using DMR JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/internal/idgen"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tracing"
	"github.com/viant/scy"
)

const (
	managementPath  = "/management"
	uploadPath      = "/management-upload"
	requestIDHeader = "X-Request-Id"
	defaultTimeout  = 30 * time.Second
)

// Service is an HTTP management client.
type Service struct {
	endpoint       string
	client         *http.Client
	timeout        time.Duration
	logger         logrus.FieldLogger
	secrets        *scy.Service
	secretURL      string
	secretKey      string
	credentials    *Credentials
	credentialsMux sync.Mutex
	reveal         func(ctx context.Context) (*Credentials, error)
}

// New creates a client for endpoint, for example http://localhost:9990.
func New(endpoint string, options ...Option) *Service {
	ret := &Service{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  defaultTimeout,
		secrets:  scy.New(),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.client == nil {
		ret.client = &http.Client{}
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logger
	}
	return ret
}

// Execute posts a single operation.
func (s *Service) Execute(ctx context.Context, operation *model.Operation) (model.Node, error) {
	body, err := json.Marshal(operation)
	if err != nil {
		return model.Node{}, fmt.Errorf("failed to encode %v: %w", operation, err)
	}
	return s.send(ctx, operation, s.endpoint+managementPath, "application/json", bytes.NewReader(body))
}

// ExecuteComposite posts all steps as one composite operation.
func (s *Service) ExecuteComposite(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error) {
	if composite.IsEmpty() {
		return model.NewCompositeResult(), nil
	}
	result, err := s.Execute(ctx, composite.Operation())
	if err != nil {
		return nil, err
	}
	return model.CompositeResultOf(result, composite.Len())
}

// Upload posts a multipart request with the operation and the attachment.
func (s *Service) Upload(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
	if attachment == nil || len(attachment.Data) == 0 {
		return model.Node{}, dispatcher.ErrNoAttachment
	}
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	file, err := writer.CreateFormFile("file", attachment.Name)
	if err != nil {
		return model.Node{}, err
	}
	if _, err = file.Write(attachment.Data); err != nil {
		return model.Node{}, err
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="operation"`)
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return model.Node{}, err
	}
	if err = json.NewEncoder(part).Encode(operation); err != nil {
		return model.Node{}, fmt.Errorf("failed to encode %v: %w", operation, err)
	}
	if err = writer.Close(); err != nil {
		return model.Node{}, err
	}
	return s.send(ctx, operation, s.endpoint+uploadPath, writer.FormDataContentType(), buffer)
}

func (s *Service) send(ctx context.Context, operation *model.Operation, URL, contentType string, body io.Reader) (ret model.Node, err error) {
	requestID := idgen.New()
	ctx, span := tracing.StartSpan(ctx, "dmr "+operation.Name, tracing.KindClient)
	span.WithAttributes(map[string]string{
		tracing.AttrOperation: operation.Name,
		tracing.AttrAddress:   operation.Address.String(),
		tracing.AttrRequestID: requestID,
	})
	defer func() { tracing.EndSpan(span, err) }()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, body)
	if err != nil {
		return model.Node{}, err
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set(requestIDHeader, requestID)
	credentials, err := s.loadCredentials(ctx)
	if err != nil {
		return model.Node{}, err
	}
	if credentials != nil {
		request.SetBasicAuth(credentials.Username, credentials.Password)
	}

	started := time.Now()
	logger := s.logger.WithFields(logrus.Fields{
		"operation": operation.Name,
		"address":   operation.Address.String(),
		"requestId": requestID,
	})
	response, err := s.client.Do(request)
	if err != nil {
		logger.WithError(err).Debug("management request failed")
		return model.Node{}, fmt.Errorf("failed to call %v: %w", URL, err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return model.Node{}, fmt.Errorf("failed to read response: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"status":  response.StatusCode,
		"elapsed": time.Since(started).String(),
	}).Debug("management request done")

	result := &model.Result{}
	if err = json.Unmarshal(data, result); err != nil || result.Outcome == "" {
		if response.StatusCode == http.StatusUnauthorized {
			return model.Node{}, ErrUnauthorized
		}
		return model.Node{}, fmt.Errorf("unexpected response %v from %v: %s", response.StatusCode, URL, truncate(data, 256))
	}
	if !result.IsSuccess() {
		return model.Node{}, result.Failure(operation)
	}
	return result.Result, nil
}

func truncate(data []byte, size int) []byte {
	if len(data) <= size {
		return data
	}
	return data[:size]
}
