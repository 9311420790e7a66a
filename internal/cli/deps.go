package cli

import (
	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/platform"
	"github.com/ksyq12/sitectl/internal/provision"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader       ConfigLoader
	PlatformDetector   PlatformDetector
	ProvisionerFactory ProvisionerFactory
	RootChecker        provision.RootChecker
	Executor           executor.CommandExecutor
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
}

// PlatformDetector finds the installed nginx and PHP-FPM
type PlatformDetector interface {
	Detect() (*platform.Paths, error)
}

// ProvisionerFactory creates provisioners for a loaded config
type ProvisionerFactory interface {
	Create(cfg *config.Config, exec executor.CommandExecutor, root provision.RootChecker) *provision.Provisioner
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:       &realConfigLoader{},
	PlatformDetector:   &realPlatformDetector{etcDir: platform.DefaultEtcDir},
	ProvisionerFactory: &realProvisionerFactory{},
	RootChecker:        provision.EffectiveRoot,
	Executor:           executor.NewSystemExecutor(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

func (r *realConfigLoader) Save(cfg *config.Config, path string) error {
	return cfg.Save(path)
}

type realPlatformDetector struct {
	etcDir string
}

func (r *realPlatformDetector) Detect() (*platform.Paths, error) {
	return platform.Detect(r.etcDir)
}

type realProvisionerFactory struct{}

func (r *realProvisionerFactory) Create(cfg *config.Config, exec executor.CommandExecutor, root provision.RootChecker) *provision.Provisioner {
	d := provision.SystemDependencies(cfg, exec)
	d.Root = root
	return provision.New(cfg, d)
}
