package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/provision"
)

var (
	strict bool
	dryRun bool
)

var addCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Provision hosting for a domain",
	Long: `Provision hosting for a domain.

Creates the system user www-<name> (dots in the domain become hyphens) with its
home directory under the sites root, the www and tmp directories, the nginx
site (sites-available + sites-enabled link) and the PHP-FPM pool, then
restarts nginx and PHP-FPM.

Failures of the user, directory and config steps are reported and the run
goes on; a failed restart stops it. With --strict (or halt_on_error in the
config file) the first failure stops the run. Nothing is rolled back.

Examples:
  sitectl add example.com
  sitectl add shop.example.com --strict
  sitectl add example.com --dry-run --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&strict, "strict", false, "Stop at the first failed step")
	addCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")

	rootCmd.AddCommand(addCmd)
}

// AddResult is the --json output of add
type AddResult struct {
	Success bool              `json:"success"`
	Domain  string            `json:"domain"`
	Error   string            `json:"error,omitempty"`
	Report  *provision.Report `json:"report"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	domain := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strict {
		cfg.HaltOnError = true
	}

	p := deps.ProvisionerFactory.Create(cfg, deps.Executor, deps.RootChecker)

	if dryRun {
		plan, err := p.Plan(domain)
		if err != nil {
			return err
		}
		return outputPlan(plan)
	}

	report, err := p.Add(domain)

	if jsonOutput {
		result := AddResult{Success: err == nil, Domain: domain, Report: report}
		if err != nil {
			result.Error = err.Error()
		}
		if jsonErr := output.JSON(result); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	for _, res := range report.Steps {
		output.Step(string(res.Step), res.Target, res.Err)
	}
	if err != nil {
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		output.Warn("Site %s provisioned with %d failed step(s)", domain, len(failed))
		return nil
	}
	output.Success("Site %s provisioned (user %s, home %s)", domain, report.Site.Username, report.Site.HomeDir)
	return nil
}

// outputPlan prints what add would do
func outputPlan(plan *provision.Plan) error {
	if jsonOutput {
		return output.JSON(plan)
	}

	output.Info("Dry run: no changes will be made")
	output.Print("")

	rows := make([][]string, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		rows = append(rows, []string{string(op.Step), op.Action, op.Target, op.Details})
	}
	output.Table([]string{"STEP", "ACTION", "TARGET", "DETAILS"}, rows)

	output.Print("")
	output.Print("# %s", plan.NginxConfigPath)
	output.Print("%s", plan.NginxConfig)
	output.Print("# %s", plan.PHPFPMConfigPath)
	output.Print("%s", plan.PHPFPMConfig)
	return nil
}
