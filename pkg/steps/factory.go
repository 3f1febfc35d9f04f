package steps

import "fmt"

// Stable step keywords, usable both for menu selection and CLI dispatch.
const (
	NamePreflight  = "preflight"
	NameBackup     = "backup"
	NameVendor     = "vendor"
	NameSync       = "sync"
	NameConfigs    = "configs"
	NameOverlay    = "overlay"
	NameMenuconfig = "menuconfig"
	NameBuild      = "build"
	NameVerify     = "verify"
)

// Names returns the step keywords in workflow execution order.
func Names() []string {
	return []string{
		NamePreflight,
		NameBackup,
		NameVendor,
		NameSync,
		NameConfigs,
		NameOverlay,
		NameMenuconfig,
		NameBuild,
		NameVerify,
	}
}

// New creates the Step implementation for a keyword.
func New(name string) (Step, error) {
	switch name {
	case NamePreflight:
		return preflightStep{}, nil
	case NameBackup:
		return backupStep{}, nil
	case NameVendor:
		return vendorStep{}, nil
	case NameSync:
		return syncStep{}, nil
	case NameConfigs:
		return configsStep{}, nil
	case NameOverlay:
		return overlayStep{}, nil
	case NameMenuconfig:
		return menuconfigStep{}, nil
	case NameBuild:
		return buildStep{}, nil
	case NameVerify:
		return verifyStep{}, nil
	default:
		return nil, fmt.Errorf("unknown step: %s", name)
	}
}
