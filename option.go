package mgmtflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/extension"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/journal"
	"github.com/viant/mgmtflow/message"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/policy"
	"github.com/viant/mgmtflow/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the configuration, DefaultConfig otherwise.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithDispatcher sets the dispatcher instead of building one from
// Config.Dispatcher.
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

// WithEnvironment sets the server environment instead of reading it from
// the root resource.
func WithEnvironment(env *model.Environment) Option {
	return func(s *Service) { s.env = env }
}

// WithJournal sets the run journal store instead of building one from
// Config.Journal.
func WithJournal(store journal.Store) Option {
	return func(s *Service) { s.journal = store }
}

// WithLogger sets the logger instead of building one from Config.Log.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics registers run metrics on registerer; gatherer backs the
// /metrics endpoint and may be nil.
func WithMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) Option {
	return func(s *Service) {
		s.registerer = registerer
		s.gatherer = gatherer
	}
}

// WithMessages sets the message service.
func WithMessages(messages *message.Service) Option {
	return func(s *Service) { s.messages = messages }
}

// WithPolicy gates every operation with p, overriding Config.Policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithExtensions sets the extension registry.
func WithExtensions(registry *extension.Registry) Option {
	return func(s *Service) { s.extensions = registry }
}

// WithListener adds a listener to every run.
func WithListener(listener flow.Listener) Option {
	return func(s *Service) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}

// WithTracing enables tracing with the stdout exporter. An empty outputFile
// writes to os.Stdout. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
		s.tracing = s.tracingErr == nil
	}
}

// WithTracingExporter enables tracing with a custom exporter, for example
// OTLP or an in-memory exporter in tests.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
		s.tracing = s.tracingErr == nil
	}
}
