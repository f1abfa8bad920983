// Package metrics exports chain run counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/mgmtflow/flow"
)

const namespace = "mgmtflow"

// Collector counts runs and tasks from sequencer events.
type Collector struct {
	runs     *prometheus.CounterVec
	tasks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collector and registers it on registerer.
func New(registerer prometheus.Registerer) (*Collector, error) {
	ret := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished chain runs.",
			},
			[]string{"flow", "state"},
		),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of applied tasks.",
			},
			[]string{"flow", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Chain run duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
	}
	for _, collector := range []prometheus.Collector{ret.runs, ret.tasks, ret.duration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Listener returns the collector as a flow.Listener.
func (c *Collector) Listener() flow.Listener {
	return c.Observe
}

// Observe updates the counters for event.
func (c *Collector) Observe(event *flow.Event) {
	if event == nil {
		return
	}
	switch event.Type {
	case flow.EventTaskDone:
		c.tasks.WithLabelValues(event.Flow, "success").Inc()
	case flow.EventTaskFailed:
		c.tasks.WithLabelValues(event.Flow, "failure").Inc()
	case flow.EventRunSucceeded:
		c.finish(event, flow.StateSucceeded)
	case flow.EventRunFailed:
		c.finish(event, flow.StateFailed)
	case flow.EventRunCancelled:
		c.finish(event, flow.StateCancelled)
	}
}

func (c *Collector) finish(event *flow.Event, state flow.State) {
	c.runs.WithLabelValues(event.Flow, string(state)).Inc()
	c.duration.WithLabelValues(event.Flow).Observe(event.Elapsed.Seconds())
}
