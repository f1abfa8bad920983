package model

// Operation names.
const (
	OpAdd                   = "add"
	OpRemove                = "remove"
	OpComposite             = "composite"
	OpReadResource          = "read-resource"
	OpReadChildrenNames     = "read-children-names"
	OpReadChildrenResources = "read-children-resources"
	OpReadAttribute         = "read-attribute"
	OpWriteAttribute        = "write-attribute"
	OpUndefineAttribute     = "undefine-attribute"
	OpFullReplaceDeployment = "full-replace-deployment"
	OpDeploy                = "deploy"
	OpUndeploy              = "undeploy"
	OpExplode               = "explode"
)

// Resource types.
const (
	ResDeployment            = "deployment"
	ResSubdeployment         = "subdeployment"
	ResServerGroup           = "server-group"
	ResHost                  = "host"
	ResServer                = "server"
	ResServerConfig          = "server-config"
	ResSubsystem             = "subsystem"
	ResCoreService           = "core-service"
	ResPatching              = "patching"
	ResManagement            = "management"
	ResAccess                = "access"
	ResAuthorization         = "authorization"
	ResRoleMapping           = "role-mapping"
	ResInclude               = "include"
	ResExclude               = "exclude"
	ResHostScopedRole        = "host-scoped-role"
	ResServerGroupScopedRole = "server-group-scoped-role"
	ResLogging               = "logging"
)

// Attribute and parameter names.
const (
	AttrAddress            = "address"
	AttrOperation          = "operation"
	AttrSteps              = "steps"
	AttrChildType          = "child-type"
	AttrIncludeRuntime     = "include-runtime"
	AttrRecursive          = "recursive"
	AttrRecursiveDepth     = "recursive-depth"
	AttrAttributesOnly     = "attributes-only"
	AttrName               = "name"
	AttrValue              = "value"
	AttrRuntimeName        = "runtime-name"
	AttrEnabled            = "enabled"
	AttrContent            = "content"
	AttrInputStreamIndex   = "input-stream-index"
	AttrPath               = "path"
	AttrArchive            = "archive"
	AttrIncludeAll         = "include-all"
	AttrType               = "type"
	AttrRealm              = "realm"
	AttrStatus             = "status"
	AttrHostState          = "host-state"
	AttrServerState        = "server-state"
	AttrProductName        = "product-name"
	AttrProcessType        = "process-type"
	AttrLaunchType         = "launch-type"
	AttrRunningMode        = "running-mode"
	AttrLocalHostName      = "local-host-name"
	AttrMaster             = "master"
	AttrManagementMajor    = "management-major-version"
	AttrManagementMinor    = "management-minor-version"
	AttrManagementMicro    = "management-micro-version"
	AttrOutcome            = "outcome"
	AttrResult             = "result"
	AttrFailureDescription = "failure-description"
	AttrRolledBack         = "rolled-back"
)

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)
