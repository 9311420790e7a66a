package provision

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sitectl/internal/account"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/site"
	"github.com/ksyq12/sitectl/internal/template"
)

// Operation is one side effect Add would perform.
type Operation struct {
	Step    Step   `json:"step"`
	Action  string `json:"action"`
	Target  string `json:"target"`
	Details string `json:"details,omitempty"`
}

// Plan describes what Add would do for a domain, with the rendered configs.
type Plan struct {
	Site             *site.Site  `json:"site"`
	Operations       []Operation `json:"operations"`
	NginxConfigPath  string      `json:"nginx_config_path"`
	NginxConfig      string      `json:"nginx_config"`
	PHPFPMConfigPath string      `json:"php_fpm_config_path"`
	PHPFPMConfig     string      `json:"php_fpm_config"`
}

// Plan returns the operations Add would perform for domain without
// performing any of them. The domain must be valid; privileges are not
// checked.
func (p *Provisioner) Plan(domain string) (*Plan, error) {
	s, err := site.New(domain, p.cfg.UserPrefix, p.cfg.SitesRoot)
	if err != nil {
		return nil, err
	}

	nginxConfig, err := p.render(template.NginxTemplate, template.NginxValues(s))
	if err != nil {
		return nil, errors.WrapStep(errors.ErrCodeTemplate, domain, string(StepNginxConfig), err)
	}
	poolConfig, err := p.render(template.PHPFPMTemplate, template.PHPFPMValues(s, p.cfg.OwnerGroup))
	if err != nil {
		return nil, errors.WrapStep(errors.ErrCodeTemplate, domain, string(StepPHPFPMConfig), err)
	}

	web, pool := p.deps.Web, p.deps.Pool
	owner := fmt.Sprintf("%s:%s", s.Username, p.cfg.OwnerGroup)

	ops := []Operation{
		{
			Step:   StepCreateUser,
			Action: "run_command",
			Target: executor.CommandLine("adduser", account.AddUserArgs(s.Username, s.HomeDir)...),
		},
		{Step: StepSetupDirectories, Action: "create_directory", Target: s.WWWDir()},
		{Step: StepSetupDirectories, Action: "create_directory", Target: s.TmpDir()},
	}
	for _, dir := range s.Dirs() {
		ops = append(ops, Operation{
			Step:    StepSetupDirectories,
			Action:  "set_permissions",
			Target:  dir,
			Details: fmt.Sprintf("mode %s, owner %s", p.cfg.DirsMode, owner),
		})
	}
	ops = append(ops,
		Operation{
			Step:    StepNginxConfig,
			Action:  "write_file",
			Target:  web.ConfigPath(s.Domain),
			Details: "nginx site configuration",
		},
		Operation{
			Step:    StepNginxConfig,
			Action:  "create_symlink",
			Target:  filepath.Join(web.Paths().Enabled, s.Domain),
			Details: "link to " + web.ConfigPath(s.Domain),
		},
		Operation{
			Step:    StepPHPFPMConfig,
			Action:  "write_file",
			Target:  pool.ConfigPath(s.Domain),
			Details: "PHP-FPM pool configuration",
		},
		Operation{
			Step:   StepRestartNginx,
			Action: "run_command",
			Target: strings.Join([]string{"service", web.Service(), "restart"}, " "),
		},
		Operation{
			Step:   StepRestartPHPFPM,
			Action: "run_command",
			Target: strings.Join([]string{"service", pool.Service(), "restart"}, " "),
		},
	)

	return &Plan{
		Site:             s,
		Operations:       ops,
		NginxConfigPath:  web.ConfigPath(s.Domain),
		NginxConfig:      nginxConfig,
		PHPFPMConfigPath: pool.ConfigPath(s.Domain),
		PHPFPMConfig:     poolConfig,
	}, nil
}
