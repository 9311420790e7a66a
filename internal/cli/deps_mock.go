package cli

import (
	"errors"
	"io"

	"github.com/ksyq12/sitectl/internal/account"
	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
	"github.com/ksyq12/sitectl/internal/platform"
	"github.com/ksyq12/sitectl/internal/provision"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	LoadPaths []string
	SavePaths []string
	Saved     *config.Config
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config, path string) error {
	m.SavePaths = append(m.SavePaths, path)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = cfg
	return nil
}

// MockPlatformDetector is a test double for PlatformDetector
type MockPlatformDetector struct {
	Paths *platform.Paths
	Err   error
	Calls int
}

func (m *MockPlatformDetector) Detect() (*platform.Paths, error) {
	m.Calls++
	if m.Paths == nil {
		m.Paths = &platform.Paths{}
	}
	return m.Paths, m.Err
}

// MockRootChecker is a test double for provision.RootChecker
type MockRootChecker struct {
	Root  bool
	Calls int
}

func (m *MockRootChecker) IsRoot() bool {
	m.Calls++
	return m.Root
}

// MockProvisionerFactory builds provisioners over the real drivers and the
// given executor, with account names resolved from Lookup and chown calls
// recorded instead of performed.
type MockProvisionerFactory struct {
	Lookup account.Lookup
	Logger *logger.Logger

	Configs []*config.Config
	Chowns  []string
}

func (m *MockProvisionerFactory) Create(cfg *config.Config, exec executor.CommandExecutor, root provision.RootChecker) *provision.Provisioner {
	m.Configs = append(m.Configs, cfg)

	lookup := m.Lookup
	if lookup == nil {
		lookup = account.StaticLookup{}
	}
	log := m.Logger
	if log == nil {
		log = logger.New(io.Discard, logger.LevelDebug)
	}

	accounts := account.NewManagerWithLookup(exec, lookup, func(path string, uid, gid int) error {
		m.Chowns = append(m.Chowns, path)
		return nil
	})

	return provision.New(cfg, provision.Dependencies{
		Root:     root,
		Accounts: accounts,
		Web:      driver.NewNginx(cfg.Nginx, exec),
		Pool:     driver.NewPHPFPM(cfg.PHPFPM, exec),
		Logger:   log,
	})
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:       &MockConfigLoader{Cfg: config.New()},
			PlatformDetector:   &MockPlatformDetector{},
			ProvisionerFactory: &MockProvisionerFactory{},
			RootChecker:        &MockRootChecker{Root: true},
			Executor:           &executor.MockExecutor{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithConfigError makes loading the config fail
func (b *MockDependenciesBuilder) WithConfigError(err error) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{LoadErr: err}
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithProvisionerFactory sets a custom provisioner factory
func (b *MockDependenciesBuilder) WithProvisionerFactory(factory ProvisionerFactory) *MockDependenciesBuilder {
	b.deps.ProvisionerFactory = factory
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{Root: isRoot}
	return b
}

// WithPlatform sets the detected installations and the detection error;
// detection may return both
func (b *MockDependenciesBuilder) WithPlatform(paths *platform.Paths, err error) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Paths: paths, Err: err}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// errNotFound is what a MockExecutor LookPathFunc returns for missing tools
var errNotFound = errors.New("executable file not found in $PATH")

// LookPathOnly returns a LookPathFunc that finds only the given tools.
func LookPathOnly(tools ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, t := range tools {
			if t == file {
				return "/usr/sbin/" + file, nil
			}
		}
		return "", errNotFound
	}
}
