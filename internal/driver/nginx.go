package driver

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

// NginxDriver manages sites-available / sites-enabled under the nginx config
// root.
type NginxDriver struct {
	paths   Paths
	service string
	exec    executor.CommandExecutor
}

// NewNginx creates an nginx driver for cfg that runs commands through exec.
func NewNginx(cfg config.ServerConfig, exec executor.CommandExecutor) *NginxDriver {
	return &NginxDriver{
		paths: Paths{
			Available: filepath.Join(cfg.ConfigRoot, "sites-available"),
			Enabled:   filepath.Join(cfg.ConfigRoot, "sites-enabled"),
		},
		service: cfg.Service,
		exec:    exec,
	}
}

func (n *NginxDriver) Name() string {
	return "nginx"
}

func (n *NginxDriver) Service() string {
	return n.service
}

func (n *NginxDriver) Paths() Paths {
	return n.paths
}

// ConfigPath returns sites-available/<domain>.
func (n *NginxDriver) ConfigPath(domain string) string {
	return filepath.Join(n.paths.Available, domain)
}

// Add writes sites-available/<domain>.
func (n *NginxDriver) Add(domain, content string) error {
	if err := os.MkdirAll(n.paths.Available, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to create sites-available directory", err)
	}

	if err := os.WriteFile(n.ConfigPath(domain), []byte(content), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to write config file", err)
	}
	return nil
}

// Enable symlinks sites-enabled/<domain> to the file written by Add.
func (n *NginxDriver) Enable(domain string) error {
	source := n.ConfigPath(domain)
	target := filepath.Join(n.paths.Enabled, domain)

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFilesystem, fmt.Sprintf("site %s not found in sites-available", domain), nil)
	}

	if _, err := os.Lstat(target); err == nil {
		return errors.Wrap(errors.ErrCodeFilesystem, fmt.Sprintf("site %s is already enabled", domain), nil)
	}

	if err := os.MkdirAll(n.paths.Enabled, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to create sites-enabled directory", err)
	}

	if err := os.Symlink(source, target); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, "failed to enable site", err)
	}
	return nil
}

// List returns all domains in sites-available.
func (n *NginxDriver) List() ([]string, error) {
	entries, err := os.ReadDir(n.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFilesystem, "failed to read sites-available", err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			domains = append(domains, entry.Name())
		}
	}
	return domains, nil
}

// IsEnabled checks whether sites-enabled/<domain> exists.
func (n *NginxDriver) IsEnabled(domain string) (bool, error) {
	_, err := os.Lstat(filepath.Join(n.paths.Enabled, domain))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeFilesystem, "failed to check site status", err)
	}
	return true, nil
}

// Test runs nginx -t. nginx reports a passing test on stderr, so the
// success line is looked for there.
func (n *NginxDriver) Test() error {
	_, err := n.exec.Execute("nginx", "-t")
	if err == nil {
		return nil
	}

	var cmdErr *executor.CommandError
	if stderrors.As(err, &cmdErr) && cmdErr.Launched() && cmdErr.WaitErr == nil && strings.Contains(cmdErr.Stderr, "test is successful") {
		return nil
	}
	return errors.Wrap(errors.ErrCodeCommand, "nginx config test failed", err)
}

// Restart runs "service <nginx service> restart".
func (n *NginxDriver) Restart() error {
	return restart(n.exec, n.service)
}
