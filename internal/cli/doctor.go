package cli

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/platform"
	"github.com/ksyq12/sitectl/internal/template"
)

// minFreeBytes is the free space below which the sites root gets a warning.
const minFreeBytes = 512 << 20

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks before provisioning.

Checks:
  - root privileges
  - adduser, service and nginx commands
  - config file, sites root and server config roots
  - free disk space under the sites root
  - templates
  - nginx -t
  - installed PHP-FPM versus the configured one

Examples:
  sitectl doctor
  sitectl doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	Platform           string        `json:"platform"`
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Services           []CheckResult `json:"services"`
}

// HasErrors reports whether any check failed
func (r *DoctorReport) HasErrors() bool {
	for _, group := range [][]CheckResult{r.SystemRequirements, r.Configuration, r.Services} {
		for _, c := range group {
			if c.Status == statusError {
				return true
			}
		}
	}
	return false
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report := &DoctorReport{Platform: platform.Platform()}
	report.SystemRequirements = checkSystemRequirements()
	report.Configuration = checkConfiguration(cfg)
	report.Services = checkServices(cfg)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements() []CheckResult {
	results := []CheckResult{}

	if deps.RootChecker.IsRoot() {
		results = append(results, success("Running as root"))
	} else {
		results = append(results, warning("Not running as root (add requires root)"))
	}

	for _, tool := range []string{"adduser", "service", "nginx"} {
		if path, err := deps.Executor.LookPath(tool); err == nil {
			results = append(results, success("%s found (%s)", tool, path))
		} else {
			results = append(results, failure("%s not found in PATH", tool))
		}
	}

	return results
}

func checkConfiguration(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	path := config.Path(configPath)
	if fileExists(path) {
		results = append(results, success("Config file exists (%s)", path))
	} else {
		results = append(results, warning("Config file not found (%s), using defaults", path))
	}

	dirs := []struct {
		label string
		path  string
	}{
		{"Sites root", cfg.SitesRoot},
		{"nginx sites-available", cfg.SitesAvailableDir()},
		{"PHP-FPM pool directory", cfg.PoolDir()},
	}
	for _, d := range dirs {
		if info, err := os.Stat(d.path); err == nil && info.IsDir() {
			results = append(results, success("%s exists (%s)", d.label, d.path))
			if d.path == cfg.SitesRoot {
				results = append(results, checkDiskSpace(d.path, minFreeBytes))
			}
		} else {
			results = append(results, failure("%s missing (%s)", d.label, d.path))
		}
	}

	source := "embedded"
	if cfg.TemplatesDir != "" {
		source = cfg.TemplatesDir
	}
	for _, name := range template.Available() {
		if _, err := template.Load(cfg.TemplatesDir, name); err == nil {
			results = append(results, success("Template %s loaded (%s)", name, source))
		} else {
			results = append(results, failure("Template %s: %v", name, err))
		}
	}

	return results
}

// checkDiskSpace reports the free space on the filesystem holding path
func checkDiskSpace(path string, minFree uint64) CheckResult {
	usage, err := disk.Usage(path)
	if err != nil {
		return warning("Disk usage of %s unavailable: %v", path, err)
	}
	free := usage.Free >> 20
	if usage.Free < minFree {
		return warning("Low disk space: %d MiB free on %s (%.0f%% used)", free, path, usage.UsedPercent)
	}
	return success("Disk space: %d MiB free on %s (%.0f%% used)", free, path, usage.UsedPercent)
}

func checkServices(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	web := driver.NewNginx(cfg.Nginx, deps.Executor)
	if err := web.Test(); err == nil {
		results = append(results, success("Nginx config syntax OK"))
	} else {
		results = append(results, failure("Nginx config syntax error: %v", err))
	}

	results = append(results, checkPHPFPM(cfg))
	return results
}

// checkPHPFPM compares the configured PHP-FPM with the installed one
func checkPHPFPM(cfg *config.Config) CheckResult {
	paths, err := deps.PlatformDetector.Detect()
	if paths == nil || paths.PHPFPM == nil {
		if err == nil {
			err = fmt.Errorf("no installation found")
		}
		return warning("PHP-FPM not detected: %v", err)
	}

	found := paths.PHPFPM
	if found.ConfigRoot == cfg.PHPFPM.ConfigRoot && found.Service == cfg.PHPFPM.Service {
		return success("PHP-FPM %s configured (%s)", found.Version, found.ConfigRoot)
	}
	return warning("PHP-FPM configured as %s (%s) but %s (%s) is installed; run 'sitectl config init --detect'",
		cfg.PHPFPM.Service, cfg.PHPFPM.ConfigRoot, found.Service, found.ConfigRoot)
}

func displayDoctorResults(report *DoctorReport) {
	sections := []struct {
		title  string
		checks []CheckResult
	}{
		{"Checking system requirements...", report.SystemRequirements},
		{"Checking configuration...", report.Configuration},
		{"Checking services...", report.Services},
	}

	for _, s := range sections {
		output.Print("%s", s.title)
		for _, check := range s.checks {
			displayCheck(check)
		}
		output.Print("")
	}

	if report.HasErrors() {
		output.Warn("Some checks failed; add may not complete")
	}
}
