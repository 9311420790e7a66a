package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/output"
)

var (
	detect    bool
	forceInit bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration add would use: the config file merged over the
defaults.

Examples:
  sitectl config show
  sitectl config show --config ./sitectl.yaml --json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write the default configuration to the config file path.

With --detect the nginx and PHP-FPM config roots and service names are taken
from the installations found under /etc (the highest PHP version wins).

Examples:
  sitectl config init
  sitectl config init --detect
  sitectl config init --detect --force --config /etc/sitectl/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&detect, "detect", false, "Detect nginx and PHP-FPM installations")
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to marshal config", err)
	}
	output.Print("# %s", config.Path(configPath))
	output.Print("%s", string(data))
	return nil
}

// ConfigInitResult is the --json output of config init
type ConfigInitResult struct {
	Success  bool           `json:"success"`
	Path     string         `json:"path"`
	Detected bool           `json:"detected"`
	Config   *config.Config `json:"config"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.Path(configPath)
	if fileExists(path) && !forceInit {
		return errors.Wrap(errors.ErrCodeConfig, "config file already exists: "+path+" (use --force to overwrite)", nil)
	}

	cfg := config.New()
	if detect {
		paths, err := deps.PlatformDetector.Detect()
		if err != nil && !jsonOutput {
			output.Warn("Detection incomplete: %v", err)
		}
		if paths != nil {
			paths.Apply(cfg)
			if !jsonOutput {
				if paths.Nginx != nil {
					output.Info("nginx: %s (service %s)", paths.Nginx.ConfigRoot, paths.Nginx.Service)
				}
				if paths.PHPFPM != nil {
					output.Info("PHP-FPM %s: %s (service %s)", paths.PHPFPM.Version, paths.PHPFPM.ConfigRoot, paths.PHPFPM.Service)
				}
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := deps.ConfigLoader.Save(cfg, path); err != nil {
		return err
	}

	return outputResult(
		ConfigInitResult{Success: true, Path: path, Detected: detect, Config: cfg},
		"Config written to %s", path,
	)
}
