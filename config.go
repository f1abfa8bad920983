package mgmtflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/mgmtflow/internal/expr"
	"github.com/viant/mgmtflow/internal/yml"
	"github.com/viant/mgmtflow/policy"
)

// Journal kinds.
const (
	JournalMemory = "memory"
	JournalFS     = "fs"
	JournalSQLite = "sqlite"
)

// TargetMemory selects the in-process management model.
const TargetMemory = "mem"

// Config is the serialisable service configuration. The zero value of any
// section inherits DefaultConfig values when loaded with LoadConfig.
type Config struct {
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Tracing    TracingConfig    `json:"tracing" yaml:"tracing"`
	Log        LogConfig        `json:"log" yaml:"log"`
	API        APIConfig        `json:"api" yaml:"api"`
	Policy     policy.Config    `json:"policy" yaml:"policy"`
}

// DispatcherConfig selects the management endpoint.
type DispatcherConfig struct {
	// Target is "mem" or the base URL of the management interface.
	Target    string `json:"target" yaml:"target"`
	TimeoutMs int    `json:"timeoutMs" yaml:"timeoutMs"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	// Secret is a scy resource URL holding the credentials.
	Secret    string `json:"secret,omitempty" yaml:"secret,omitempty"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
}

// Timeout returns the request timeout.
func (c *DispatcherConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type JournalConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	// URL is the base directory for fs and the database path for sqlite.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type APIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns the default configuration: in-memory target and
// journal, text logs at info level, API on :8080.
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: DispatcherConfig{Target: TargetMemory, TimeoutMs: 30000},
		Journal:    JournalConfig{Kind: JournalMemory},
		Tracing:    TracingConfig{ServiceName: "mgmtflow", ServiceVersion: "dev"},
		Log:        LogConfig{Level: "info", Format: "text"},
		API:        APIConfig{Addr: ":8080"},
	}
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if target := c.Dispatcher.Target; target != TargetMemory {
		if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("dispatcher.target must be %q or an absolute URL, got %q", TargetMemory, target))
		}
	}
	if c.Dispatcher.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("dispatcher.timeoutMs must be > 0"))
	}
	switch c.Journal.Kind {
	case JournalMemory:
	case JournalFS, JournalSQLite:
		if c.Journal.URL == "" {
			errs = append(errs, fmt.Errorf("journal.url is required for %v journal", c.Journal.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported journal.kind %q", c.Journal.Kind))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log.format %q", c.Log.Format))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy.mode: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML configuration through afs, expanding ${env.KEY}
// expressions in string values, on top of DefaultConfig.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	node, err := yml.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	node.MapStrings(expr.ExpandEnv)
	ret := DefaultConfig()
	if err = node.Decode(ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
