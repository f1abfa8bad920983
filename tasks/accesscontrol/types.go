// Package accesscontrol provides tasks managing role mappings, assignments
// and scoped roles of the role based access control model.
package accesscontrol

import (
	"strings"

	"github.com/viant/mgmtflow/model"
)

// RoleType classifies roles.
type RoleType string

const (
	RoleStandard    RoleType = "standard"
	RoleHost        RoleType = "host"
	RoleServerGroup RoleType = "server-group"
)

// Role is a standard or scoped role.
type Role struct {
	Name     string
	Type     RoleType
	BaseRole string
	Scope    []string
}

// IsScoped returns true for host and server group scoped roles.
func (r *Role) IsScoped() bool {
	return r.Type == RoleHost || r.Type == RoleServerGroup
}

// PrincipalType is user or group.
type PrincipalType string

const (
	PrincipalUser  PrincipalType = "USER"
	PrincipalGroup PrincipalType = "GROUP"
)

// Principal is a user or group, optionally bound to a realm.
type Principal struct {
	Type  PrincipalType
	Name  string
	Realm string
}

// ResourceName returns the name of the include or exclude resource, for
// example user-admin@ManagementRealm.
func (p *Principal) ResourceName() string {
	ret := strings.ToLower(string(p.Type)) + "-" + p.Name
	if p.Realm != "" {
		ret += "@" + p.Realm
	}
	return ret
}

// Assignment includes or excludes a principal from a role.
type Assignment struct {
	Principal *Principal
	Role      *Role
	Include   bool
}

// AuthorizationAddress is the root of the access control model.
func AuthorizationAddress() model.Address {
	return model.NewAddress(model.ResCoreService, model.ResManagement, model.ResAccess, model.ResAuthorization)
}

// RoleMappingAddress addresses the role mapping of a role.
func RoleMappingAddress(role *Role) model.Address {
	return AuthorizationAddress().Add(model.ResRoleMapping, role.Name)
}

// ScopedRoleAddress addresses the definition of a scoped role.
func ScopedRoleAddress(role *Role) model.Address {
	resource := model.ResHostScopedRole
	if role.Type == RoleServerGroup {
		resource = model.ResServerGroupScopedRole
	}
	return AuthorizationAddress().Add(resource, role.Name)
}

// AssignmentAddress addresses the include or exclude resource of an assignment.
func AssignmentAddress(assignment *Assignment) model.Address {
	resource := model.ResExclude
	if assignment.Include {
		resource = model.ResInclude
	}
	return RoleMappingAddress(assignment.Role).Add(resource, assignment.Principal.ResourceName())
}
