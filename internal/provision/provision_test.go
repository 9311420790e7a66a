package provision

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/sitectl/internal/account"
	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

type chownCall struct {
	Path     string
	UID, GID int
}

// fixture is a provisioner whose whole filesystem lives under a temp dir and
// whose commands go to a MockExecutor.
type fixture struct {
	root   string
	cfg    *config.Config
	exec   *executor.MockExecutor
	chowns []chownCall
	log    bytes.Buffer
	isRoot bool

	// commands whose command line starts with a key write the value to stderr
	stderr map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	cfg := config.New()
	cfg.SitesRoot = filepath.Join(root, "www")
	cfg.Nginx.ConfigRoot = filepath.Join(root, "nginx")
	cfg.PHPFPM.ConfigRoot = filepath.Join(root, "php5", "fpm")

	f := &fixture{root: root, cfg: cfg, isRoot: true, stderr: map[string]string{}}
	f.exec = &executor.MockExecutor{ExecuteFunc: f.execute}
	return f
}

// execute plays the system: adduser creates the home directory, and any
// scripted stderr turns into the error the system executor would return.
func (f *fixture) execute(name string, args ...string) ([]byte, error) {
	line := executor.CommandLine(name, args...)
	for prefix, text := range f.stderr {
		if strings.HasPrefix(line, prefix) {
			return executor.StderrFor(prefix, text)(name, args...)
		}
	}
	if name == "adduser" {
		for i, a := range args {
			if a == "--home" && i+1 < len(args) {
				if err := os.MkdirAll(args[i+1], 0755); err != nil {
					return nil, err
				}
			}
		}
	}
	return nil, nil
}

func (f *fixture) provisioner() *Provisioner {
	lookup := account.StaticLookup{
		Users:  map[string]int{"www-example-com": 998, "www-shop-example-com": 997},
		Groups: map[string]int{"www-data": 33},
	}
	accounts := account.NewManagerWithLookup(f.exec, lookup, func(path string, uid, gid int) error {
		f.chowns = append(f.chowns, chownCall{path, uid, gid})
		return nil
	})

	return New(f.cfg, Dependencies{
		Root:     RootFunc(func() bool { return f.isRoot }),
		Accounts: accounts,
		Web:      driver.NewNginx(f.cfg.Nginx, f.exec),
		Pool:     driver.NewPHPFPM(f.cfg.PHPFPM, f.exec),
		Logger:   logger.New(&f.log, logger.LevelDebug),
	})
}

func (f *fixture) entries(t *testing.T) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(f.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != f.root {
			paths = append(paths, path)
		}
		return nil
	})
	require.NoError(t, err)
	return paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAdd_Success(t *testing.T) {
	f := newFixture(t)

	report, err := f.provisioner().Add("example.com")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	require.NotNil(t, report.Site)
	assert.Equal(t, "www-example-com", report.Site.Username)
	assert.Equal(t, filepath.Join(f.cfg.SitesRoot, "example.com"), report.Site.HomeDir)

	t.Run("commands in order", func(t *testing.T) {
		home := filepath.Join(f.cfg.SitesRoot, "example.com")
		assert.Equal(t, []string{
			"adduser --system --home " + home + " --disabled-password www-example-com",
			"service nginx restart",
			"service php5-fpm restart",
		}, f.exec.CommandLines())
	})

	t.Run("directories", func(t *testing.T) {
		for _, dir := range report.Site.Dirs() {
			info, err := os.Stat(dir)
			require.NoError(t, err, dir)
			assert.True(t, info.IsDir())
			assert.Equal(t, os.FileMode(0o760), info.Mode().Perm(), dir)
		}
		require.Len(t, f.chowns, 3)
		for i, dir := range report.Site.Dirs() {
			assert.Equal(t, chownCall{dir, 998, 33}, f.chowns[i])
		}
	})

	t.Run("nginx config and link", func(t *testing.T) {
		available := filepath.Join(f.cfg.Nginx.ConfigRoot, "sites-available", "example.com")
		content := readFile(t, available)
		assert.Contains(t, content, "server_name example.com www.example.com;")
		assert.Contains(t, content, "php5-fpm-example-com.sock")
		assert.Contains(t, content, "root "+report.Site.WWWDir()+";")
		assert.NotContains(t, content, "[domain]")
		assert.NotContains(t, content, "[name]")

		target, err := os.Readlink(filepath.Join(f.cfg.Nginx.ConfigRoot, "sites-enabled", "example.com"))
		require.NoError(t, err)
		assert.Equal(t, available, target)
	})

	t.Run("pool config", func(t *testing.T) {
		content := readFile(t, filepath.Join(f.cfg.PHPFPM.ConfigRoot, "pool.d", "example.com.conf"))
		assert.True(t, strings.HasPrefix(content, "[example-com]"))
		assert.Contains(t, content, "user = www-example-com")
		assert.Contains(t, content, "php_admin_value[open_basedir] = "+report.Site.WWWDir()+":"+report.Site.TmpDir())
		assert.NotContains(t, content, "[username]")
		assert.NotContains(t, content, "[domain]")
	})

	t.Run("report", func(t *testing.T) {
		require.Len(t, report.Steps, len(Steps()))
		for i, step := range Steps() {
			assert.Equal(t, step, report.Steps[i].Step)
			assert.True(t, report.Steps[i].OK())
		}
		res, ok := report.Result(StepRestartNginx)
		assert.True(t, ok)
		assert.Equal(t, "nginx", res.Target)
	})
}

func TestAdd_InvalidDomain(t *testing.T) {
	for _, root := range []bool{true, false} {
		f := newFixture(t)
		f.isRoot = root

		report, err := f.provisioner().Add("-bad_domain.com")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidDomain), "root=%v: %v", root, err)
		assert.Contains(t, err.Error(), "Invalid domain name")
		assert.Empty(t, report.Steps)
		assert.Nil(t, report.Site)
		assert.Empty(t, f.exec.Calls)
		assert.Empty(t, f.entries(t), "no filesystem changes expected")
		assert.Contains(t, f.log.String(), "Invalid domain name")
	}
}

func TestAdd_NotRoot(t *testing.T) {
	f := newFixture(t)
	f.isRoot = false

	report, err := f.provisioner().Add("example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRootRequired))
	assert.Equal(t, "User is not root", err.Error())
	assert.Empty(t, report.Steps)
	assert.Empty(t, f.exec.Calls)
	assert.Empty(t, f.entries(t), "no filesystem changes expected")
}

func TestAdd_NginxRestartFails(t *testing.T) {
	f := newFixture(t)
	f.stderr["service nginx"] = "Job for nginx.service failed."

	report, err := f.provisioner().Add("example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandFailed))

	var perr *errors.ProvisionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, string(StepRestartNginx), perr.Step)
	assert.Equal(t, "example.com", perr.Domain)

	assert.NotContains(t, f.exec.CommandLines(), "service php5-fpm restart")
	_, attempted := report.Result(StepRestartPHPFPM)
	assert.False(t, attempted)
	assert.False(t, report.Completed())

	// configs written before the failure stay in place
	_, statErr := os.Stat(filepath.Join(f.cfg.Nginx.ConfigRoot, "sites-available", "example.com"))
	assert.NoError(t, statErr)
}

func TestAdd_PHPFPMRestartFails(t *testing.T) {
	f := newFixture(t)
	f.stderr["service php5-fpm"] = "php5-fpm: unrecognized service"

	report, err := f.provisioner().Add("example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandFailed))
	assert.Contains(t, f.exec.CommandLines(), "service nginx restart")
	assert.True(t, report.Completed())
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, StepRestartPHPFPM, report.Failed()[0].Step)
}

func TestAdd_UserCreationFailureContinues(t *testing.T) {
	f := newFixture(t)
	f.stderr["adduser"] = "adduser: Only root may add a user or group to the system."

	report, err := f.provisioner().Add("example.com")
	require.NoError(t, err, "non-halting failures do not fail the run")
	assert.True(t, report.Completed())
	assert.False(t, report.OK())

	failed := report.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, StepCreateUser, failed[0].Step)
	assert.Contains(t, failed[0].Error, "Only root may add a user")
	// home directory was never created, so www and tmp cannot be either
	assert.Equal(t, StepSetupDirectories, failed[1].Step)

	assert.Contains(t, f.exec.CommandLines(), "service nginx restart")
	assert.Contains(t, f.exec.CommandLines(), "service php5-fpm restart")
	assert.Contains(t, f.log.String(), "[WARN]")
	assert.Contains(t, f.log.String(), "step=create-user")
}

func TestAdd_HaltOnError(t *testing.T) {
	f := newFixture(t)
	f.cfg.HaltOnError = true
	f.stderr["adduser"] = "adduser: Only root may add a user or group to the system."

	report, err := f.provisioner().Add("example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandFailed))
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StepCreateUser, report.Steps[0].Step)

	assert.Equal(t, 1, len(f.exec.Calls), "only adduser should run")
	_, statErr := os.Stat(filepath.Join(f.cfg.Nginx.ConfigRoot, "sites-available", "example.com"))
	assert.True(t, os.IsNotExist(statErr), "no config should be written after halting")
}

func TestAdd_TemplateMissing(t *testing.T) {
	f := newFixture(t)
	f.cfg.TemplatesDir = filepath.Join(f.root, "templates")
	require.NoError(t, os.MkdirAll(f.cfg.TemplatesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.TemplatesDir, "php-fpm.conf"), []byte("[[name]]\nuser = [username]\n"), 0644))

	report, err := f.provisioner().Add("example.com")
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StepNginxConfig, failed[0].Step)
	assert.True(t, errors.Is(failed[0].Err, errors.ErrTemplateNotFound))

	content := readFile(t, filepath.Join(f.cfg.PHPFPM.ConfigRoot, "pool.d", "example.com.conf"))
	assert.Equal(t, "[example-com]\nuser = www-example-com\n", content)
}

func TestAdd_Rerun(t *testing.T) {
	f := newFixture(t)
	p := f.provisioner()

	_, err := p.Add("example.com")
	require.NoError(t, err)

	report, err := p.Add("example.com")
	require.NoError(t, err)

	var failedSteps []Step
	for _, res := range report.Failed() {
		failedSteps = append(failedSteps, res.Step)
	}
	// www/tmp already exist and the sites-enabled link is refused
	assert.Equal(t, []Step{StepSetupDirectories, StepNginxConfig}, failedSteps)

	_, err = os.Stat(filepath.Join(f.cfg.PHPFPM.ConfigRoot, "pool.d", "example.com.conf"))
	assert.NoError(t, err)
}

func TestAdd_CustomConfig(t *testing.T) {
	f := newFixture(t)
	f.cfg.UserPrefix = "www-shop-"
	f.cfg.DirsMode = 0o750
	f.cfg.PHPFPM.Service = "php8.2-fpm"

	report, err := f.provisioner().Add("example.com")
	require.NoError(t, err)
	assert.Equal(t, "www-shop-example-com", report.Site.Username)

	info, err := os.Stat(report.Site.WWWDir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.Contains(t, f.exec.CommandLines(), "service php8.2-fpm restart")
}

func TestAdd_ConfigsFollowSitesRootAndGroup(t *testing.T) {
	f := newFixture(t)
	f.cfg.SitesRoot = filepath.Join(f.root, "srv")
	f.cfg.OwnerGroup = "web"

	p := f.provisioner()
	accounts := account.NewManagerWithLookup(f.exec, account.StaticLookup{
		Users:  map[string]int{"www-example-com": 998},
		Groups: map[string]int{"web": 48},
	}, func(path string, uid, gid int) error {
		f.chowns = append(f.chowns, chownCall{path, uid, gid})
		return nil
	})
	p.deps.Accounts = accounts

	report, err := p.Add("example.com")
	require.NoError(t, err)
	assert.True(t, report.OK())

	home := filepath.Join(f.root, "srv", "example.com")
	nginx := readFile(t, filepath.Join(f.cfg.Nginx.ConfigRoot, "sites-available", "example.com"))
	assert.Contains(t, nginx, "root "+filepath.Join(home, "www")+";")

	pool := readFile(t, filepath.Join(f.cfg.PHPFPM.ConfigRoot, "pool.d", "example.com.conf"))
	assert.Contains(t, pool, "group = web")
	assert.Contains(t, pool, "php_admin_value[session.save_path] = "+filepath.Join(home, "tmp"))
	assert.NotContains(t, pool, "/var/www")

	require.Len(t, f.chowns, 3)
	for _, c := range f.chowns {
		assert.Equal(t, 48, c.GID, c.Path)
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	p := New(config.New(), Dependencies{})
	assert.NotNil(t, p.deps.Root)
	assert.NotNil(t, p.deps.Accounts)
	assert.Equal(t, "nginx", p.deps.Web.Name())
	assert.Equal(t, "/etc/php5/fpm/pool.d/example.com.conf", p.deps.Pool.ConfigPath("example.com"))
	assert.Same(t, logger.Default(), p.deps.Logger)
}
