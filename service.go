package mgmtflow

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/dispatcher/memory"
	"github.com/viant/mgmtflow/dispatcher/remote"
	"github.com/viant/mgmtflow/extension"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/internal/api"
	"github.com/viant/mgmtflow/journal"
	jfs "github.com/viant/mgmtflow/journal/fs"
	jmemory "github.com/viant/mgmtflow/journal/memory"
	jsqlite "github.com/viant/mgmtflow/journal/sqlite"
	"github.com/viant/mgmtflow/message"
	"github.com/viant/mgmtflow/metrics"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/policy"
	"github.com/viant/mgmtflow/progress"
	"github.com/viant/mgmtflow/tracing"
)

// Service runs management chains with logging, metrics, tracing and the run
// journal attached. It implements flow.Runner.
type Service struct {
	config     *Config
	dispatcher dispatcher.Dispatcher
	policy     *policy.Policy
	env        *model.Environment
	envMux     sync.Mutex
	journal    journal.Store
	recorder   *journal.Recorder
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	metrics    *metrics.Collector
	messages   *message.Service
	extensions *extension.Registry
	listeners  []flow.Listener
	logger     logrus.FieldLogger
	tracing    bool
	tracingErr error
	closers    []func() error
}

var _ flow.Runner = (*Service)(nil)

// New creates the service. Components not supplied through options are built
// from the configuration.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Close()
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = newLogger(&s.config.Log)
	}
	if s.tracingErr != nil {
		s.logger.WithError(s.tracingErr).Warn("tracing disabled")
	}
	if !s.tracing && s.config.Tracing.Enabled {
		cfg := s.config.Tracing
		if err := tracing.Init(cfg.ServiceName, cfg.ServiceVersion, cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		s.tracing = true
	}
	if s.dispatcher == nil {
		s.dispatcher = s.newDispatcher()
	}
	if s.policy == nil && !s.config.Policy.IsZero() {
		s.policy = policy.FromConfig(&s.config.Policy)
	}
	if s.policy != nil {
		s.dispatcher = policy.NewGuard(s.dispatcher, s.policy)
	}
	if s.journal == nil {
		store, err := s.newJournal(ctx)
		if err != nil {
			return err
		}
		s.journal = store
	}
	s.recorder = journal.NewRecorder(s.journal, s.logger)
	if s.registerer == nil {
		registry := prometheus.NewRegistry()
		s.registerer, s.gatherer = registry, registry
	}
	collector, err := metrics.New(s.registerer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	s.metrics = collector
	if s.messages == nil {
		s.messages = message.NewService(message.WithLogger(s.logger))
		s.closers = append(s.closers, func() error { s.messages.Close(); return nil })
	}
	if s.extensions == nil {
		s.extensions = extension.NewRegistry()
	}
	s.extensions.Ready()
	return nil
}

func newLogger(config *LogConfig) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(config.Level); err == nil {
		logger.SetLevel(level)
	}
	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func (s *Service) newDispatcher() dispatcher.Dispatcher {
	cfg := s.config.Dispatcher
	if cfg.Target == TargetMemory {
		var options []memory.Option
		if s.env != nil {
			options = append(options, memory.WithEnvironment(s.env))
		}
		return memory.New(options...)
	}
	options := []remote.Option{remote.WithTimeout(cfg.Timeout()), remote.WithLogger(s.logger)}
	switch {
	case cfg.Secret != "":
		options = append(options, remote.WithSecret(cfg.Secret, cfg.SecretKey))
	case cfg.Username != "":
		options = append(options, remote.WithBasicAuth(cfg.Username, cfg.Password))
	}
	return remote.New(cfg.Target, options...)
}

func (s *Service) newJournal(ctx context.Context) (journal.Store, error) {
	cfg := s.config.Journal
	switch cfg.Kind {
	case JournalFS:
		return jfs.New(ctx, cfg.URL, s.logger)
	case JournalSQLite:
		store, err := jsqlite.New(cfg.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	}
	return jmemory.New(), nil
}

// Run executes tasks as the chain name. Every run gets a journal entry,
// metrics, debug logs and, when enabled, a span per task.
func (s *Service) Run(ctx context.Context, name string, fctx *flow.Context, tasks ...flow.Task) (*flow.Context, error) {
	if fctx == nil {
		fctx = flow.NewContext(nil)
	}
	runID := journal.NewID()
	listeners := append([]flow.Listener{s.logEvent, s.metrics.Listener(), s.recorder.Listener()}, s.listeners...)
	options := []flow.Option{
		flow.WithName(name),
		flow.WithRunID(runID),
		flow.WithListener(flow.Listeners(listeners...)),
	}
	if !s.tracing {
		return flow.NewSequencer(fctx, tasks, options...).Run(ctx)
	}
	ctx, span := tracing.StartRun(ctx, name, runID)
	options = append(options, flow.WithDecorator(tracing.Decorator(map[string]string{tracing.AttrFlow: name, tracing.AttrRun: runID})))
	ret, err := flow.NewSequencer(fctx, tasks, options...).Run(ctx)
	tracing.EndSpan(span, err)
	return ret, err
}

func (s *Service) logEvent(event *flow.Event) {
	fields := logrus.Fields{"flow": event.Flow, "run": event.RunID}
	if event.Task != "" {
		fields["task"] = event.Task
		fields["index"] = event.Index
	}
	if event.Elapsed > 0 {
		fields["elapsed"] = event.Elapsed.Round(time.Microsecond).String()
	}
	entry := s.logger.WithFields(fields)
	switch event.Type {
	case flow.EventTaskFailed, flow.EventRunFailed:
		entry.WithError(event.Err).Warn(string(event.Type))
	case flow.EventRunCancelled:
		entry.WithError(event.Err).Info(string(event.Type))
	default:
		entry.Debug(string(event.Type))
	}
}

// Environment returns the server environment, read from the root resource
// unless supplied with WithEnvironment. Only a successful read is kept.
func (s *Service) Environment(ctx context.Context) (*model.Environment, error) {
	s.envMux.Lock()
	defer s.envMux.Unlock()
	if s.env != nil {
		return s.env, nil
	}
	operation := model.NewBuilder(model.Root(), model.OpReadResource).
		Param(model.AttrAttributesOnly, true).
		Param(model.AttrIncludeRuntime, true).
		Build()
	root, err := s.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	s.env = model.EnvironmentOf(root)
	return s.env, nil
}

// Dispatcher returns the dispatcher.
func (s *Service) Dispatcher() dispatcher.Dispatcher { return s.dispatcher }

// Journal returns the run journal store.
func (s *Service) Journal() journal.Store { return s.journal }

// Messages returns the message service.
func (s *Service) Messages() *message.Service { return s.messages }

// Extensions returns the extension registry.
func (s *Service) Extensions() *extension.Registry { return s.extensions }

// Config returns the configuration.
func (s *Service) Config() *Config { return s.config }

// API returns the HTTP server for the journal, metrics and extensions.
func (s *Service) API() *api.Server {
	return api.NewServer(s.config.API.Addr, s.journal, s.gatherer, s.extensions, s.logger)
}

// tracker returns a progress tracker logging every change at trace level.
func (s *Service) tracker(name string) flow.Progress {
	ret := progress.New("", name)
	ret.OnChange(func(snapshot progress.Snapshot) {
		s.logger.WithFields(logrus.Fields{
			"flow":      name,
			"completed": snapshot.CompletedTasks,
			"total":     snapshot.TotalTasks,
		}).Trace("progress")
	})
	return ret
}

// Close releases the message service and the journal store.
func (s *Service) Close() error {
	var ret error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && ret == nil {
			ret = err
		}
	}
	s.closers = nil
	return ret
}
