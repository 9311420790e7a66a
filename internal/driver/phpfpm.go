package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

const poolSuffix = ".conf"

// PHPFPMDriver manages pool.d/<domain>.conf under the PHP-FPM config root.
// Pools are active as soon as they exist, so there is no enabled directory.
type PHPFPMDriver struct {
	paths   Paths
	service string
	exec    executor.CommandExecutor
}

// NewPHPFPM creates a PHP-FPM driver for cfg that runs commands through exec.
func NewPHPFPM(cfg config.ServerConfig, exec executor.CommandExecutor) *PHPFPMDriver {
	return &PHPFPMDriver{
		paths:   Paths{Available: filepath.Join(cfg.ConfigRoot, "pool.d")},
		service: cfg.Service,
		exec:    exec,
	}
}

func (p *PHPFPMDriver) Name() string {
	return "php-fpm"
}

func (p *PHPFPMDriver) Service() string {
	return p.service
}

func (p *PHPFPMDriver) Paths() Paths {
	return p.paths
}

// ConfigPath returns pool.d/<domain>.conf.
func (p *PHPFPMDriver) ConfigPath(domain string) string {
	return filepath.Join(p.paths.Available, domain+poolSuffix)
}

// Add writes pool.d/<domain>.conf.
func (p *PHPFPMDriver) Add(domain, content string) error {
	if err := os.MkdirAll(p.paths.Available, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to create pool directory", err)
	}

	if err := os.WriteFile(p.ConfigPath(domain), []byte(content), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to write pool file", err)
	}
	return nil
}

// List returns the domains of all pool files, without the .conf suffix.
// The stock www.conf pool is included as "www".
func (p *PHPFPMDriver) List() ([]string, error) {
	entries, err := os.ReadDir(p.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFilesystem, "failed to read pool directory", err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, poolSuffix) {
			continue
		}
		domains = append(domains, strings.TrimSuffix(name, poolSuffix))
	}
	return domains, nil
}

// Restart runs "service <php-fpm service> restart".
func (p *PHPFPMDriver) Restart() error {
	return restart(p.exec, p.service)
}
