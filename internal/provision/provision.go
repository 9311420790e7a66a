package provision

import (
	"os"
	"time"

	"github.com/ksyq12/sitectl/internal/account"
	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
	"github.com/ksyq12/sitectl/internal/site"
	"github.com/ksyq12/sitectl/internal/template"
)

// RootChecker reports whether the process runs as the superuser.
type RootChecker interface {
	IsRoot() bool
}

// RootFunc adapts a function to RootChecker.
type RootFunc func() bool

func (f RootFunc) IsRoot() bool {
	return f()
}

// EffectiveRoot checks the effective uid of the process.
var EffectiveRoot RootChecker = RootFunc(func() bool {
	return os.Geteuid() == 0
})

// Accounts creates the site user and hands files over to it.
type Accounts interface {
	CreateUser(username, home string) error
	Chown(path, username, group string) error
}

// Dependencies are the side-effecting collaborators of a Provisioner.
type Dependencies struct {
	Root     RootChecker
	Accounts Accounts
	Web      driver.SiteDriver
	Pool     driver.Driver
	Logger   *logger.Logger
}

// SystemDependencies wires the real implementations for cfg, running
// external commands through exec.
func SystemDependencies(cfg *config.Config, exec executor.CommandExecutor) Dependencies {
	return Dependencies{
		Root:     EffectiveRoot,
		Accounts: account.NewManager(exec),
		Web:      driver.NewNginx(cfg.Nginx, exec),
		Pool:     driver.NewPHPFPM(cfg.PHPFPM, exec),
		Logger:   logger.Default(),
	}
}

// Provisioner sets up hosting accounts. It holds no state between calls.
type Provisioner struct {
	cfg  *config.Config
	deps Dependencies

	mkdir func(path string, perm os.FileMode) error
	chmod func(path string, mode os.FileMode) error
	now   func() time.Time
}

// New returns a Provisioner for cfg. Nil dependencies are filled with the
// system implementations.
func New(cfg *config.Config, deps Dependencies) *Provisioner {
	sys := SystemDependencies(cfg, executor.NewSystemExecutor())
	if deps.Root == nil {
		deps.Root = sys.Root
	}
	if deps.Accounts == nil {
		deps.Accounts = sys.Accounts
	}
	if deps.Web == nil {
		deps.Web = sys.Web
	}
	if deps.Pool == nil {
		deps.Pool = sys.Pool
	}
	if deps.Logger == nil {
		deps.Logger = sys.Logger
	}

	return &Provisioner{
		cfg:   cfg,
		deps:  deps,
		mkdir: os.Mkdir,
		chmod: os.Chmod,
		now:   time.Now,
	}
}

// Config returns the configuration the Provisioner was built with.
func (p *Provisioner) Config() *config.Config {
	return p.cfg
}

type stepFunc func(s *site.Site) error

type plannedStep struct {
	step   Step
	target string
	run    stepFunc
	halts  bool // a failure stops the run even when halt_on_error is off
}

func (p *Provisioner) steps(s *site.Site) []plannedStep {
	return []plannedStep{
		{StepCreateUser, s.Username, p.createUser, false},
		{StepSetupDirectories, s.HomeDir, p.setupDirectories, false},
		{StepNginxConfig, p.deps.Web.ConfigPath(s.Domain), p.writeNginxConfig, false},
		{StepPHPFPMConfig, p.deps.Pool.ConfigPath(s.Domain), p.writePHPFPMConfig, false},
		{StepRestartNginx, p.deps.Web.Service(), func(*site.Site) error { return p.deps.Web.Restart() }, true},
		{StepRestartPHPFPM, p.deps.Pool.Service(), func(*site.Site) error { return p.deps.Pool.Restart() }, true},
	}
}

// Add provisions domain. It returns an error when the domain is invalid,
// when the caller is not root, when a service restart fails, or, with
// halt_on_error set, when any step fails. The report lists every step that
// was attempted. Nothing is undone on failure.
func (p *Provisioner) Add(domain string) (*Report, error) {
	log := p.deps.Logger
	report := newReport(domain, p.now())
	finish := func(err error) (*Report, error) {
		report.FinishedAt = p.now()
		return report, err
	}

	if !site.IsValidDomain(domain) {
		log.Errorf("%s: %q", errors.ErrInvalidDomain.Message, domain)
		return finish(errors.InvalidDomain(domain))
	}

	if !p.deps.Root.IsRoot() {
		log.Errorf("%s", errors.ErrRootRequired.Message)
		return finish(errors.ErrRootRequired)
	}

	s, err := site.New(domain, p.cfg.UserPrefix, p.cfg.SitesRoot)
	if err != nil {
		return finish(err)
	}
	report.Site = s

	log.Log(logger.LevelInfo, "provisioning site", logger.Fields{
		"domain":   s.Domain,
		"username": s.Username,
		"home":     s.HomeDir,
		"run":      report.ID,
	})

	for _, st := range p.steps(s) {
		log.Log(logger.LevelDebug, "step started", logger.Fields{"step": st.step, "target": st.target})

		res := report.record(st.step, st.target, st.run(s))
		if res.OK() {
			continue
		}

		stepErr := errors.WrapStep(errors.ErrCodeInternal, domain, string(st.step), res.Err)
		fields := logger.Fields{"step": st.step, "target": st.target, "error": res.Err, "run": report.ID}
		if st.halts || p.cfg.HaltOnError {
			log.Log(logger.LevelError, "step failed, stopping", fields)
			return finish(stepErr)
		}
		log.Log(logger.LevelWarn, "step failed, continuing", fields)
	}

	log.Log(logger.LevelInfo, "site provisioned", logger.Fields{"domain": domain, "failed_steps": len(report.Failed())})
	return finish(nil)
}

func (p *Provisioner) createUser(s *site.Site) error {
	if err := s.Check(); err != nil {
		return err
	}
	return p.deps.Accounts.CreateUser(s.Username, s.HomeDir)
}

// setupDirectories creates www and tmp under the home directory, then sets
// mode, owner and group on all three. Every directory is attempted; the
// failures are joined.
func (p *Provisioner) setupDirectories(s *site.Site) error {
	if err := s.Check(); err != nil {
		return err
	}

	mode := p.cfg.DirsMode.Perm()
	var errs []error

	for _, dir := range []string{s.WWWDir(), s.TmpDir()} {
		if err := p.mkdir(dir, mode); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeFilesystem, "failed to create "+dir, err))
		}
	}

	for _, dir := range s.Dirs() {
		if err := p.chmod(dir, mode); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeFilesystem, "failed to chmod "+dir, err))
		}
		if err := p.deps.Accounts.Chown(dir, s.Username, p.cfg.OwnerGroup); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (p *Provisioner) render(name string, values map[string]string) (string, error) {
	text, err := template.Load(p.cfg.TemplatesDir, name)
	if err != nil {
		return "", err
	}
	return template.Render(text, values), nil
}

func (p *Provisioner) writeNginxConfig(s *site.Site) error {
	content, err := p.render(template.NginxTemplate, template.NginxValues(s))
	if err != nil {
		return err
	}
	if err := p.deps.Web.Add(s.Domain, content); err != nil {
		return err
	}
	return p.deps.Web.Enable(s.Domain)
}

func (p *Provisioner) writePHPFPMConfig(s *site.Site) error {
	content, err := p.render(template.PHPFPMTemplate, template.PHPFPMValues(s, p.cfg.OwnerGroup))
	if err != nil {
		return err
	}
	return p.deps.Pool.Add(s.Domain, content)
}
