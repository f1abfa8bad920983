package memory

import (
	"github.com/viant/mgmtflow/model"
)

// Option customises the in-memory server.
type Option func(s *Service)

// WithEnvironment sets root attributes describing env.
func WithEnvironment(env *model.Environment) Option {
	return func(s *Service) {
		root := s.tree[key(model.Root())]
		if root == nil || env == nil {
			return
		}
		launchType := "STANDALONE"
		processType := "Server"
		if !env.IsStandalone() {
			launchType = "DOMAIN"
			processType = "Host Controller"
		}
		root.attributes[model.AttrLaunchType] = launchType
		root.attributes[model.AttrProcessType] = processType
		if env.ProductName != "" {
			root.attributes[model.AttrProductName] = env.ProductName
		}
		root.attributes[model.AttrManagementMajor] = env.ManagementVersion.Major
		root.attributes[model.AttrManagementMinor] = env.ManagementVersion.Minor
		root.attributes[model.AttrManagementMicro] = env.ManagementVersion.Micro
	}
}

// WithResource seeds a resource. Missing parents are created.
func WithResource(address model.Address, attributes map[string]interface{}) Option {
	return func(s *Service) {
		s.put(address, attributes)
	}
}

// WithFault registers a fault consulted before every operation.
func WithFault(fault Fault) Option {
	return func(s *Service) {
		s.faults = append(s.faults, fault)
	}
}
