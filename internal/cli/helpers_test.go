package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ksyq12/sitectl/internal/account"
	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/output"
)

func init() {
	// Disable color for tests
	color.NoColor = true
}

// testEnv is a CLI whose config roots live in a temp dir and whose commands
// go to a MockExecutor.
type testEnv struct {
	root    string
	cfg     *config.Config
	exec    *executor.MockExecutor
	factory *MockProvisionerFactory
	deps    *Dependencies
	mock    *MockDependenciesBuilder
	out     *bytes.Buffer

	// commands whose command line starts with a key write the value to stderr
	stderr map[string]string
}

func newTestEnv(t *testing.T, isRoot bool) *testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.New()
	cfg.SitesRoot = filepath.Join(root, "www")
	cfg.Nginx.ConfigRoot = filepath.Join(root, "nginx")
	cfg.PHPFPM.ConfigRoot = filepath.Join(root, "php5", "fpm")

	env := &testEnv{
		root:   root,
		cfg:    cfg,
		out:    &bytes.Buffer{},
		stderr: map[string]string{},
		factory: &MockProvisionerFactory{
			Lookup: account.StaticLookup{
				Users:  map[string]int{"www-example-com": 1001},
				Groups: map[string]int{"www-data": 33},
			},
		},
	}
	env.exec = &executor.MockExecutor{ExecuteFunc: env.execute}
	env.mock = NewMockDeps().
		WithConfig(cfg).
		WithExecutor(env.exec).
		WithProvisionerFactory(env.factory).
		WithRootAccess(isRoot)
	// the builder keeps mutating the Dependencies it built, so With* calls
	// made by a test after this point take effect
	env.deps = env.mock.Build()

	oldDeps := deps
	deps = env.deps
	output.SetOutput(env.out)

	jsonOutput, strict, dryRun, detect, forceInit = false, false, false, false, false
	configPath = filepath.Join(root, "sitectl.yaml")

	t.Cleanup(func() {
		deps = oldDeps
		output.SetOutput(nil)
		jsonOutput, strict, dryRun, detect, forceInit = false, false, false, false, false
		configPath = ""
	})
	return env
}

// execute plays the system: adduser creates the home directory and scripted
// stderr fails the command.
func (e *testEnv) execute(name string, args ...string) ([]byte, error) {
	line := executor.CommandLine(name, args...)
	for prefix, text := range e.stderr {
		if strings.HasPrefix(line, prefix) {
			return executor.StderrFor(prefix, text)(name, args...)
		}
	}
	if name == "adduser" {
		for i, a := range args {
			if a == "--home" && i+1 < len(args) {
				return nil, os.MkdirAll(args[i+1], 0755)
			}
		}
	}
	return nil, nil
}

func (e *testEnv) mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func (e *testEnv) writeFile(t *testing.T, path, content string) {
	t.Helper()
	e.mkdirs(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
