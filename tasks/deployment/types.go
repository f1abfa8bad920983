package deployment

import (
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/topology"
)

// Context keys populated by deployment tasks.
var (
	ServerGroupDeploymentsKey = flow.Key[[]*ServerGroupDeployment]("deployment.serverGroupDeployments")
	UploadStatisticsKey       = flow.Key[*UploadStatistics]("deployment.uploadStatistics")
)

// Content is an entry of the content repository (or a standalone deployment).
type Content struct {
	Name        string
	RuntimeName string
	Enabled     bool
	Managed     bool
	Exploded    bool
	Deployments []*ServerGroupDeployment
}

// ServerGroupDeployment is a content deployed to a server group.
type ServerGroupDeployment struct {
	ServerGroup string
	Name        string
	RuntimeName string
	Enabled     bool
	Deployment  *Deployment
}

// Deployment is a deployment of a running server.
type Deployment struct {
	Name           string
	RuntimeName    string
	Enabled        bool
	Status         string
	Server         model.Address
	Subdeployments []string
}

type attributes struct {
	RuntimeName string
	Enabled     bool
	Status      string
}

func decodeAttributes(node model.Node) attributes {
	ret := attributes{}
	if err := node.Decode(&ret); err != nil {
		ret.RuntimeName = node.Get(model.AttrRuntimeName).AsString()
		ret.Enabled = node.Get(model.AttrEnabled).AsBool()
		ret.Status = node.Get(model.AttrStatus).AsString()
	}
	return ret
}

func newContent(name string, node model.Node) *Content {
	attrs := decodeAttributes(node)
	ret := &Content{Name: name, RuntimeName: attrs.RuntimeName, Enabled: attrs.Enabled}
	for _, content := range node.Get(model.AttrContent).AsList() {
		if content.Has("hash") {
			ret.Managed = true
		}
		if archive := content.Get(model.AttrArchive); archive.IsDefined() && !archive.AsBool() {
			ret.Exploded = true
		}
	}
	if archive := node.Get(model.AttrArchive); archive.IsDefined() && !archive.AsBool() {
		ret.Exploded = true
	}
	return ret
}

func newServerGroupDeployment(serverGroup, name string, node model.Node) *ServerGroupDeployment {
	attrs := decodeAttributes(node)
	if name == "" {
		name = node.Get(model.AttrName).AsString()
	}
	return &ServerGroupDeployment{ServerGroup: serverGroup, Name: name, RuntimeName: attrs.RuntimeName, Enabled: attrs.Enabled}
}

func newDeployment(server *topology.Server, name string, node model.Node) *Deployment {
	attrs := decodeAttributes(node)
	return &Deployment{
		Name:           name,
		RuntimeName:    attrs.RuntimeName,
		Enabled:        attrs.Enabled,
		Status:         attrs.Status,
		Server:         server.Address,
		Subdeployments: node.Get(model.ResSubdeployment).Keys(),
	}
}
