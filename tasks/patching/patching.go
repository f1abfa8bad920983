// Package patching reads the patch inventory of running hosts.
package patching

import (
	"context"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/topology"
)

// Address returns the patching resource of a host.
func Address(host *topology.Host) model.Address {
	return host.Address.Add(model.ResCoreService, model.ResPatching)
}

// ReadHostPatches reads the patching resource of a single host into
// Host.Patching.
type ReadHostPatches struct {
	dispatcher dispatcher.Dispatcher
	host       *topology.Host
}

// NewReadHostPatches creates the task.
func NewReadHostPatches(d dispatcher.Dispatcher, host *topology.Host) *ReadHostPatches {
	return &ReadHostPatches{dispatcher: d, host: host}
}

// Name returns the task name.
func (t *ReadHostPatches) Name() string { return "read-host-patches" }

// Apply reads the patches.
func (t *ReadHostPatches) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewBuilder(Address(t.host), model.OpReadResource).
		Param(model.AttrIncludeRuntime, true).
		Param(model.AttrRecursive, true).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	t.host.Patching = result
	return flow.Continue(fctx)
}

// ReadPatches reads the patches of every alive, running host found under
// topology.HostsKey. Hosts still starting are skipped.
type ReadPatches struct {
	dispatcher dispatcher.Dispatcher
}

// NewReadPatches creates the task.
func NewReadPatches(d dispatcher.Dispatcher) *ReadPatches {
	return &ReadPatches{dispatcher: d}
}

// Name returns the task name.
func (t *ReadPatches) Name() string { return "read-patches" }

// Apply runs one nested read per eligible host.
func (t *ReadPatches) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	hosts, _ := topology.HostsKey.Get(fctx)
	var tasks []flow.Task
	for _, host := range Eligible(hosts) {
		tasks = append(tasks, NewReadHostPatches(t.dispatcher, host))
	}
	if _, err := flow.Sequential(ctx, flow.NewContext(flow.NoopProgress), tasks...); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// Eligible filters the hosts whose patches can be read.
func Eligible(hosts []*topology.Host) []*topology.Host {
	var ret []*topology.Host
	for _, host := range hosts {
		if host.Alive && !host.IsStarting() && host.IsRunning() {
			ret = append(ret, host)
		}
	}
	return ret
}

// Patches returns the tasks reading the hosts and their patches.
func Patches(env *model.Environment, d dispatcher.Dispatcher) []flow.Task {
	return append(topology.Hosts(env, d), NewReadPatches(d))
}
