package tracing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/flow"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var exporter = tracetest.NewInMemoryExporter()

func TestMain(m *testing.M) {
	if err := InitWithExporter("mgmtflow", "test", exporter); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestDecorator(t *testing.T) {
	boom := errors.New("boom")
	testCases := []struct {
		description string
		tasks       []flow.Task
		expectErr   error
		expectSpans []string
		expectCodes []codes.Code
	}{
		{
			description: "every task gets a span",
			tasks: []flow.Task{
				flow.Named("first", flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return fctx, nil })),
				flow.Named("second", flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return fctx, nil })),
			},
			expectSpans: []string{"task first", "task second"},
			expectCodes: []codes.Code{codes.Ok, codes.Ok},
		},
		{
			description: "failure is recorded and returned unchanged",
			tasks: []flow.Task{
				flow.Named("broken", flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return nil, boom })),
				flow.Named("skipped", flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return fctx, nil })),
			},
			expectErr:   boom,
			expectSpans: []string{"task broken"},
			expectCodes: []codes.Code{codes.Error},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			exporter.Reset()
			sequencer := flow.NewSequencer(flow.NewContext(nil), tc.tasks, flow.WithDecorator(Decorator(map[string]string{"flow.name": "test"})))
			_, err := sequencer.Run(context.Background())
			if tc.expectErr != nil {
				assert.Same(t, tc.expectErr, err)
			} else {
				require.NoError(t, err)
			}
			spans := exporter.GetSpans()
			require.Len(t, spans, len(tc.expectSpans))
			for i, span := range spans {
				assert.Equal(t, tc.expectSpans[i], span.Name)
				assert.Equal(t, tc.expectCodes[i], span.Status.Code)
			}
		})
	}
}

func TestStartSpan_Nil(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(nil)
	EndSpan(nil, nil)
}

func TestStartRun(t *testing.T) {
	exporter.Reset()
	ctx, run := StartRun(context.Background(), "deploy", "01RUN")
	_, task := StartSpan(ctx, "task upload", KindInternal)
	EndSpan(task, nil)
	EndSpan(run, errors.New("failed"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "task upload", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "run deploy", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	attrs := map[string]string{}
	for _, kv := range spans[1].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, map[string]string{AttrFlow: "deploy", AttrRun: "01RUN"}, attrs)
}
