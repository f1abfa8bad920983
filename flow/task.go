package flow

import (
	"context"
	"reflect"
)

// Task is one step of a chain. It receives the shared context and returns
// the (possibly updated) context or an error. Parameters of a task are bound
// at construction time; tasks are not retried and need not be idempotent.
type Task interface {
	Apply(ctx context.Context, fctx *Context) (*Context, error)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, fctx *Context) (*Context, error)

// Apply calls f.
func (f TaskFunc) Apply(ctx context.Context, fctx *Context) (*Context, error) {
	return f(ctx, fctx)
}

// Namer is implemented by tasks that report their own name.
type Namer interface {
	Name() string
}

type namedTask struct {
	name string
	Task
}

func (t *namedTask) Name() string { return t.name }

// Named attaches a name to task, used in logs, traces and the run journal.
func Named(name string, task Task) Task {
	return &namedTask{name: name, Task: task}
}

// NameOf returns the task name or the Go type name when the task is not a Namer.
func NameOf(task Task) string {
	if task == nil {
		return ""
	}
	if namer, ok := task.(Namer); ok {
		return namer.Name()
	}
	rType := reflect.TypeOf(task)
	for rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	if rType.Name() == "" {
		return rType.String()
	}
	return rType.Name()
}

// Decorator wraps a task, for example to add tracing around it. Decorators
// must preserve the outcome of the wrapped task.
type Decorator func(task Task) Task

// Continue resolves the context unchanged; it is the usual ending of a
// mutation task once its remote call succeeded.
func Continue(fctx *Context) (*Context, error) {
	return fctx, nil
}
