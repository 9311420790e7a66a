package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ksyq12/sitectl/internal/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when neither --config
// nor SITECTL_CONFIG is given.
const DefaultPath = "/etc/sitectl/config.yaml"

// EnvPath overrides DefaultPath.
const EnvPath = "SITECTL_CONFIG"

// Config holds every tunable of a provisioning run.
type Config struct {
	SitesRoot    string       `yaml:"sites_root" json:"sites_root"`
	UserPrefix   string       `yaml:"user_prefix" json:"user_prefix"`
	OwnerGroup   string       `yaml:"owner_group" json:"owner_group"`
	DirsMode     Mode         `yaml:"dirs_mode" json:"dirs_mode"`
	TemplatesDir string       `yaml:"templates_dir,omitempty" json:"templates_dir,omitempty"`
	HaltOnError  bool         `yaml:"halt_on_error" json:"halt_on_error"`
	Nginx        ServerConfig `yaml:"nginx" json:"nginx"`
	PHPFPM       ServerConfig `yaml:"php_fpm" json:"php_fpm"`
}

// ServerConfig locates a server's configuration tree and names its service.
type ServerConfig struct {
	ConfigRoot string `yaml:"config_root" json:"config_root"`
	Service    string `yaml:"service" json:"service"`
}

// New returns a Config with the default values.
func New() *Config {
	return &Config{
		SitesRoot:  "/var/www",
		UserPrefix: "www-",
		OwnerGroup: "www-data",
		DirsMode:   0o760,
		Nginx: ServerConfig{
			ConfigRoot: "/etc/nginx",
			Service:    "nginx",
		},
		PHPFPM: ServerConfig{
			ConfigRoot: "/etc/php5/fpm",
			Service:    "php5-fpm",
		},
	}
}

// Path resolves the config file location: explicit path, then
// SITECTL_CONFIG, then DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the config at path. A missing file yields the defaults; keys
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	path = Path(path)

	cfg := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to read config", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating the parent directory.
func (c *Config) Save(path string) error {
	path = Path(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to write config", err)
	}
	return nil
}

// Validate checks that every path is absolute and every name is set.
func (c *Config) Validate() error {
	dirs := map[string]string{
		"sites_root":          c.SitesRoot,
		"nginx.config_root":   c.Nginx.ConfigRoot,
		"php_fpm.config_root": c.PHPFPM.ConfigRoot,
	}
	for key, dir := range dirs {
		if dir == "" {
			return errors.Wrap(errors.ErrCodeConfig, key+" cannot be empty", nil)
		}
		if !filepath.IsAbs(dir) {
			return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("%s must be absolute: %s", key, dir), nil)
		}
	}

	if c.TemplatesDir != "" && !filepath.IsAbs(c.TemplatesDir) {
		return errors.Wrap(errors.ErrCodeConfig, "templates_dir must be absolute: "+c.TemplatesDir, nil)
	}

	names := map[string]string{
		"owner_group":     c.OwnerGroup,
		"nginx.service":   c.Nginx.Service,
		"php_fpm.service": c.PHPFPM.Service,
	}
	for key, name := range names {
		if strings.TrimSpace(name) == "" {
			return errors.Wrap(errors.ErrCodeConfig, key+" cannot be empty", nil)
		}
	}

	if c.DirsMode > 0o777 {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("dirs_mode out of range: %s", c.DirsMode), nil)
	}
	return nil
}

// SitesAvailableDir is where nginx site files are written.
func (c *Config) SitesAvailableDir() string {
	return filepath.Join(c.Nginx.ConfigRoot, "sites-available")
}

// SitesEnabledDir is where nginx site symlinks are created.
func (c *Config) SitesEnabledDir() string {
	return filepath.Join(c.Nginx.ConfigRoot, "sites-enabled")
}

// PoolDir is where PHP-FPM pool files are written.
func (c *Config) PoolDir() string {
	return filepath.Join(c.PHPFPM.ConfigRoot, "pool.d")
}

// Mode is a permission mode written in octal in YAML ("0760").
type Mode os.FileMode

func (m Mode) Perm() os.FileMode {
	return os.FileMode(m).Perm()
}

func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// MarshalText makes --json print the octal string as well.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimPrefix(strings.ToLower(value.Value), "0o")
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid octal mode %q", value.Value)
	}
	*m = Mode(n)
	return nil
}
