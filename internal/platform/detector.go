// Package platform finds the nginx and PHP-FPM installations of the host so
// that config init --detect and doctor can suggest config roots and service
// names.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/errors"
)

// DefaultEtcDir is where service configuration lives on Debian-like systems.
const DefaultEtcDir = "/etc"

var phpVersionRe = regexp.MustCompile(`^\d+\.\d+$`)

// Installation is a detected service.
type Installation struct {
	config.ServerConfig `yaml:",inline"`
	Version             string `json:"version,omitempty"`
}

// Paths contains the detected installations.
type Paths struct {
	Nginx  *Installation `json:"nginx,omitempty"`
	PHPFPM *Installation `json:"php_fpm,omitempty"`
}

// DetectNginx looks for <etcDir>/nginx with an nginx.conf or a
// sites-available directory.
func DetectNginx(etcDir string) (*Installation, error) {
	root := filepath.Join(etcDir, "nginx")
	if pathExists(filepath.Join(root, "nginx.conf")) || pathExists(filepath.Join(root, "sites-available")) {
		return &Installation{ServerConfig: config.ServerConfig{ConfigRoot: root, Service: "nginx"}}, nil
	}
	return nil, errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("nginx configuration not found in %s", root), nil)
}

// DetectPHPFPM looks for versioned installations under <etcDir>/php/<ver>/fpm
// and returns the highest version. Without one it falls back to the legacy
// <etcDir>/php5/fpm layout.
func DetectPHPFPM(etcDir string) (*Installation, error) {
	versions := PHPVersions(etcDir)
	if len(versions) > 0 {
		v := versions[len(versions)-1]
		return &Installation{
			ServerConfig: config.ServerConfig{
				ConfigRoot: filepath.Join(etcDir, "php", v, "fpm"),
				Service:    "php" + v + "-fpm",
			},
			Version: v,
		}, nil
	}

	legacy := filepath.Join(etcDir, "php5", "fpm")
	if pathExists(legacy) {
		return &Installation{
			ServerConfig: config.ServerConfig{ConfigRoot: legacy, Service: "php5-fpm"},
			Version:      "5",
		}, nil
	}

	return nil, errors.Wrap(errors.ErrCodeConfig,
		fmt.Sprintf("PHP-FPM configuration not found (checked %s and %s)", filepath.Join(etcDir, "php", "*", "fpm"), legacy), nil)
}

// PHPVersions lists the versions that have an fpm directory under
// <etcDir>/php, lowest first.
func PHPVersions(etcDir string) []string {
	matches, _ := filepath.Glob(filepath.Join(etcDir, "php", "*", "fpm"))

	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		v := filepath.Base(filepath.Dir(m))
		if phpVersionRe.MatchString(v) && isDir(m) {
			versions = append(versions, v)
		}
	}

	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare("v"+versions[i], "v"+versions[j]) < 0
	})
	return versions
}

// Detect runs every detector. Services that were not found are nil; their
// errors are joined.
func Detect(etcDir string) (*Paths, error) {
	paths := &Paths{}
	var errs []error

	nginx, err := DetectNginx(etcDir)
	if err != nil {
		errs = append(errs, err)
	}
	paths.Nginx = nginx

	fpm, err := DetectPHPFPM(etcDir)
	if err != nil {
		errs = append(errs, err)
	}
	paths.PHPFPM = fpm

	return paths, errors.Join(errs...)
}

// Apply copies the detected installations into cfg.
func (p *Paths) Apply(cfg *config.Config) {
	if p.Nginx != nil {
		cfg.Nginx = p.Nginx.ServerConfig
	}
	if p.PHPFPM != nil {
		cfg.PHPFPM = p.PHPFPM.ServerConfig
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
