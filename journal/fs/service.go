// Package fs keeps the run journal as JSON files on any afs supported
// storage.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
)

// Service stores one <id>.json file per run under basePath.
type Service struct {
	basePath string
	fs       afs.Service
	logger   logrus.FieldLogger
	mu       sync.RWMutex
}

var _ journal.Store = (*Service)(nil)

// Save writes the run file.
func (s *Service) Save(ctx context.Context, run *journal.Run) error {
	if run == nil {
		return dao.ErrNilEntity
	}
	if run.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.runPath(run.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save run to file %s: %w", filePath, err)
	}
	return nil
}

// Load reads the run file.
func (s *Service) Load(ctx context.Context, id string) (*journal.Run, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	filePath := s.runPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if run exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("run %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	run := &journal.Run{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return run, nil
}

// Delete removes the run file.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.runPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if run exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("run %s: %w", id, dao.ErrNotFound)
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}

// List reads every run file, newest first. Unreadable files are logged and
// skipped.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*journal.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}
	var runs []*journal.Run
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to read run file")
			continue
		}
		run := &journal.Run{}
		if err := json.Unmarshal(data, run); err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to unmarshal run file")
			continue
		}
		if !journal.MatchState(run, parameters) {
			continue
		}
		runs = append(runs, run)
	}
	journal.SortByStart(runs)
	return runs, nil
}

func (s *Service) runPath(id string) string {
	return url.Join(s.basePath, id+".json")
}

// New creates the store, creating basePath when missing. The logger may be nil.
func New(ctx context.Context, basePath string, logger logrus.FieldLogger) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fs := afs.New()
	basePath = url.Normalize(basePath, file.Scheme)
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{basePath: basePath, fs: fs, logger: logger}, nil
}
