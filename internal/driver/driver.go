package driver

import (
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

// Driver writes per-site config files for one service and restarts it.
type Driver interface {
	// Name returns the driver name (nginx, php-fpm)
	Name() string

	// Service returns the service name passed to the service command
	Service() string

	// Add writes the config file of domain, replacing an existing one
	Add(domain, content string) error

	// ConfigPath returns the file Add writes for domain
	ConfigPath(domain string) string

	// List returns the domains that have a config file
	List() ([]string, error)

	// Restart restarts the service
	Restart() error

	// Paths returns the driver's config paths
	Paths() Paths
}

// SiteDriver is a Driver whose config files are activated by linking them
// into a second directory.
type SiteDriver interface {
	Driver

	// Enable links the config file of domain into the enabled directory
	Enable(domain string) error

	// IsEnabled checks if domain is linked
	IsEnabled(domain string) (bool, error)

	// Test validates the service's config syntax
	Test() error
}

// Paths contains the config directories of a driver.
type Paths struct {
	Available string // where config files are written
	Enabled   string // where they are linked; empty when not used
}

// restart runs "service <name> restart".
func restart(exec executor.CommandExecutor, service string) error {
	if _, err := exec.Execute("service", service, "restart"); err != nil {
		return errors.Wrap(errors.ErrCodeCommand, "failed to restart "+service, err)
	}
	return nil
}
