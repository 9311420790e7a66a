package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/logger"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Single-domain PHP hosting provisioner",
	Long: `sitectl sets up hosting for one domain on an nginx + PHP-FPM server.

For a domain it creates a system user and a home directory under the sites
root, writes the nginx site and the PHP-FPM pool, and restarts both services.
It must run as root.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $SITECTL_CONFIG or /etc/sitectl/config.yaml)")
}
