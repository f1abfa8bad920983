package tracing

import (
	"context"
	"strconv"

	"github.com/viant/mgmtflow/flow"
)

type tracedTask struct {
	task  flow.Task
	name  string
	attrs map[string]string
}

func (t *tracedTask) Name() string { return t.name }

func (t *tracedTask) Apply(ctx context.Context, fctx *flow.Context) (ret *flow.Context, err error) {
	ctx, span := StartSpan(ctx, "task "+t.name, KindInternal)
	span.WithAttributes(t.attrs)
	defer func() { EndSpan(span, err) }()
	ret, err = t.task.Apply(ctx, fctx)
	if err == nil && ret != nil {
		span.WithAttributes(map[string]string{AttrStackSize: strconv.Itoa(ret.StackSize())})
	}
	return ret, err
}

// Decorator returns a flow.Decorator wrapping every task in a span. attrs
// are added to each span.
func Decorator(attrs map[string]string) flow.Decorator {
	return func(task flow.Task) flow.Task {
		name := flow.NameOf(task)
		taskAttrs := map[string]string{AttrTask: name}
		for k, v := range attrs {
			taskAttrs[k] = v
		}
		return &tracedTask{task: task, name: name, attrs: taskAttrs}
	}
}
