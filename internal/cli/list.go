package cli

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/site"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List provisioned sites",
	Long: `List the sites found in nginx sites-available and the PHP-FPM pool
directory, with their enabled link, pool file and home directory.

Examples:
  sitectl list
  sitectl ls
  sitectl list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type siteListItem struct {
	Domain   string `json:"domain"`
	Username string `json:"username,omitempty"`
	Enabled  bool   `json:"enabled"`
	Pool     bool   `json:"pool"`
	Home     bool   `json:"home"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items, err := listSites(cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No sites found in %s", cfg.SitesAvailableDir())
		return nil
	}

	headers := []string{"DOMAIN", "USER", "ENABLED", "POOL", "HOME"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Domain,
			item.Username,
			yesNo(item.Enabled),
			yesNo(item.Pool),
			yesNo(item.Home),
		})
	}
	output.Table(headers, rows)
	return nil
}

// listSites merges the nginx sites and the PHP-FPM pools into one sorted list
func listSites(cfg *config.Config) ([]siteListItem, error) {
	web := driver.NewNginx(cfg.Nginx, deps.Executor)
	pool := driver.NewPHPFPM(cfg.PHPFPM, deps.Executor)

	webDomains, err := web.List()
	if err != nil {
		return nil, err
	}
	poolDomains, err := pool.List()
	if err != nil {
		output.Warn("Could not read %s: %v", pool.Paths().Available, err)
	}

	seen := make(map[string]bool)
	items := make([]siteListItem, 0, len(webDomains))
	for _, domain := range append(webDomains, poolDomains...) {
		if seen[domain] {
			continue
		}
		seen[domain] = true

		item := siteListItem{Domain: domain}
		item.Enabled, _ = web.IsEnabled(domain)
		item.Pool = fileExists(pool.ConfigPath(domain))

		// file names that fail domain validation have no account
		if s, err := site.New(domain, cfg.UserPrefix, cfg.SitesRoot); err == nil {
			item.Username = s.Username
			item.Home = fileExists(s.HomeDir)
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Domain < items[j].Domain
	})
	return items, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
