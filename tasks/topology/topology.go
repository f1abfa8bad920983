// Package topology reads hosts and running servers of a managed domain.
package topology

import (
	"context"
	"sort"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
)

// Context keys populated by topology tasks.
var (
	HostsKey   = flow.Key[[]*Host]("topology.hosts")
	ServersKey = flow.Key[[]*Server]("topology.servers")
)

// Host states.
const (
	StateRunning  = "running"
	StateStarting = "starting"
)

// Host is a host controller, or the server itself in standalone mode.
type Host struct {
	Name     string
	Address  model.Address
	State    string
	Master   bool
	Alive    bool
	Patching model.Node
}

// IsRunning returns true for a running host.
func (h *Host) IsRunning() bool { return h.State == StateRunning }

// IsStarting returns true while the host is starting.
func (h *Host) IsStarting() bool { return h.State == StateStarting }

// Server is a running server of a host.
type Server struct {
	Name        string
	Host        string
	ServerGroup string
	State       string
	Address     model.Address
}

// IsRunning returns true for a running server.
func (s *Server) IsRunning() bool { return s.State == StateRunning }

// ReadHosts stores the hosts under HostsKey, the domain controller first.
// In standalone mode it stores a single host addressing the server root.
type ReadHosts struct {
	env        *model.Environment
	dispatcher dispatcher.Dispatcher
}

// NewReadHosts creates the task.
func NewReadHosts(env *model.Environment, d dispatcher.Dispatcher) *ReadHosts {
	return &ReadHosts{env: env, dispatcher: d}
}

// Name returns the task name.
func (t *ReadHosts) Name() string { return "read-hosts" }

// Apply reads the hosts.
func (t *ReadHosts) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if t.env.IsStandalone() {
		host := &Host{Name: "standalone", Address: model.Root(), State: StateRunning, Master: true, Alive: true}
		HostsKey.Set(fctx, []*Host{host})
		return fctx, nil
	}
	operation := model.NewBuilder(model.Root(), model.OpReadChildrenResources).
		Param(model.AttrChildType, model.ResHost).
		Param(model.AttrIncludeRuntime, true).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	var hosts []*Host
	for _, property := range result.AsProperties() {
		hosts = append(hosts, &Host{
			Name:    property.Name,
			Address: model.NewAddress(model.ResHost, property.Name),
			State:   property.Value.Get(model.AttrHostState).AsString(),
			Master:  property.Value.Get(model.AttrMaster).AsBool(),
			Alive:   true,
		})
	}
	sort.SliceStable(hosts, func(i, j int) bool {
		if hosts[i].Master != hosts[j].Master {
			return hosts[i].Master
		}
		return hosts[i].Name < hosts[j].Name
	})
	return HostsKey.Resolve(fctx, hosts), nil
}

// ReadRunningServers stores running servers of all hosts under ServersKey.
// In standalone mode it stores an empty list.
type ReadRunningServers struct {
	env        *model.Environment
	dispatcher dispatcher.Dispatcher
}

// NewReadRunningServers creates the task.
func NewReadRunningServers(env *model.Environment, d dispatcher.Dispatcher) *ReadRunningServers {
	return &ReadRunningServers{env: env, dispatcher: d}
}

// Name returns the task name.
func (t *ReadRunningServers) Name() string { return "read-running-servers" }

// Apply reads the running servers.
func (t *ReadRunningServers) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if t.env.IsStandalone() {
		return ServersKey.Resolve(fctx, []*Server{}), nil
	}
	operation := model.NewBuilder(model.NewAddress(model.ResHost, "*", model.ResServer, "*"), model.OpReadResource).
		Param(model.AttrIncludeRuntime, true).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	servers := []*Server{}
	for _, item := range result.AsList() {
		address := model.NodeAddress(item.Get(model.AttrAddress))
		attributes := item.Get(model.AttrResult)
		server := &Server{
			Name:        address.Value(model.ResServer),
			Host:        address.Value(model.ResHost),
			ServerGroup: attributes.Get(model.ResServerGroup).AsString(),
			State:       attributes.Get(model.AttrServerState).AsString(),
			Address:     address,
		}
		if server.IsRunning() {
			servers = append(servers, server)
		}
	}
	return ServersKey.Resolve(fctx, servers), nil
}

// Hosts returns the tasks reading the hosts.
func Hosts(env *model.Environment, d dispatcher.Dispatcher) []flow.Task {
	return []flow.Task{NewReadHosts(env, d)}
}

// Servers returns the tasks reading the hosts and their running servers.
func Servers(env *model.Environment, d dispatcher.Dispatcher) []flow.Task {
	return []flow.Task{NewReadHosts(env, d), NewReadRunningServers(env, d)}
}
