package model

import "fmt"

// Version is a management model version.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Micro int `json:"micro" yaml:"micro"`
}

// ListLogFilesVersion is the first management version supporting log file listing.
var ListLogFilesVersion = Version{Major: 1, Minor: 7}

// ParseVersion reads the management-*-version attributes of a root resource.
func ParseVersion(node Node) Version {
	return Version{
		Major: node.Get(AttrManagementMajor).AsInt(),
		Minor: node.Get(AttrManagementMinor).AsInt(),
		Micro: node.Get(AttrManagementMicro).AsInt(),
	}
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return sign(v.Major - other.Major)
	case v.Minor != other.Minor:
		return sign(v.Minor - other.Minor)
	}
	return sign(v.Micro - other.Micro)
}

// AtLeast returns true if v >= other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// SupportsListLogFiles returns true when the logging subsystem can list log files.
func (v Version) SupportsListLogFiles() bool {
	return v.AtLeast(ListLogFilesVersion)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Environment describes the server the dispatcher talks to.
type Environment struct {
	Standalone        bool    `json:"standalone" yaml:"standalone"`
	ProductName       string  `json:"productName,omitempty" yaml:"productName,omitempty"`
	ManagementVersion Version `json:"managementVersion" yaml:"managementVersion"`
}

// IsStandalone returns true for a standalone server, false for a domain.
func (e *Environment) IsStandalone() bool {
	return e == nil || e.Standalone
}

// EnvironmentOf builds the environment from an attributes-only read of the root resource.
func EnvironmentOf(root Node) *Environment {
	return &Environment{
		Standalone:        root.Get(AttrLaunchType).AsString() != "DOMAIN" && root.Get(AttrProcessType).AsString() != "Host Controller",
		ProductName:       root.Get(AttrProductName).AsString(),
		ManagementVersion: ParseVersion(root),
	}
}
