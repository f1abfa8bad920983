// Package subsystem lists the runtime subsystems of a server.
package subsystem

import (
	"context"
	"sort"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
)

// SubsystemsKey holds the list produced by Read.
var SubsystemsKey = flow.Key[[]*Subsystem]("subsystem.subsystems")

// Entries listed ahead of the subsystems.
const (
	RuntimeStatus        = "server-runtime-status"
	ManagementOperations = "management-operations"
)

// Subsystem is an entry of the runtime subsystem list.
type Subsystem struct {
	Name  string
	Title string
}

var titles = map[string]string{
	"batch-jberet":       "Batch",
	"datasources":        "Datasources",
	"ejb3":               "EJB",
	"io":                 "IO",
	"jaxrs":              "JAX-RS",
	"jms-bridge":         "JMS Bridge",
	"jpa":                "JPA",
	"logging":            "Logging",
	"messaging-activemq": "Messaging",
	"naming":             "JNDI",
	"transactions":       "Transactions",
	"undertow":           "Web",
	"webservices":        "Web Services",
}

// Title returns the display title of a subsystem.
func Title(name string) string {
	if title, ok := titles[name]; ok {
		return title
	}
	return name
}

// Read stores the subsystems of the server at address under SubsystemsKey:
// the runtime status entry, the management operations entry in standalone
// mode, then the subsystems sorted by title. Logging is left out when the
// management version cannot list log files.
type Read struct {
	env        *model.Environment
	dispatcher dispatcher.Dispatcher
	address    model.Address
}

// NewRead creates the task. address is the root in standalone mode and
// /host=X/server=Y in a managed domain.
func NewRead(env *model.Environment, d dispatcher.Dispatcher, address model.Address) *Read {
	return &Read{env: env, dispatcher: d, address: address}
}

// Name returns the task name.
func (t *Read) Name() string { return "read-subsystems" }

// Apply reads the subsystem names and the server version in one call.
func (t *Read) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	composite := model.NewComposite(
		model.NewBuilder(t.address, model.OpReadChildrenNames).Param(model.AttrChildType, model.ResSubsystem).Build(),
		model.NewBuilder(t.address, model.OpReadResource).Param(model.AttrAttributesOnly, true).Build(),
	)
	result, err := t.dispatcher.ExecuteComposite(ctx, composite)
	if err != nil {
		return nil, err
	}
	for i, step := range result.Steps() {
		if !step.IsSuccess() {
			return nil, step.Failure(composite.Operations()[i])
		}
	}
	version := model.ParseVersion(result.Step(1).Result)

	var subsystems []*Subsystem
	for _, name := range result.Step(0).Result.AsStrings() {
		if name == model.ResLogging && !version.SupportsListLogFiles() {
			continue
		}
		subsystems = append(subsystems, &Subsystem{Name: name, Title: Title(name)})
	}
	sort.SliceStable(subsystems, func(i, j int) bool {
		return subsystems[i].Title < subsystems[j].Title
	})

	items := []*Subsystem{{Name: RuntimeStatus, Title: "Status"}}
	if t.env.IsStandalone() {
		items = append(items, &Subsystem{Name: ManagementOperations, Title: "Management Operations"})
	}
	items = append(items, subsystems...)
	return SubsystemsKey.Resolve(fctx, items), nil
}
