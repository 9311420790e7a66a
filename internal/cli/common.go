package cli

import (
	"fmt"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/output"
)

// loadConfig loads the config named by --config (or the environment)
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		var perr *errors.ProvisionError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to load config", err)
	}
	return cfg, nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// Check statuses shared by doctor and list
const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

func success(format string, args ...interface{}) CheckResult {
	return CheckResult{Status: statusSuccess, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...interface{}) CheckResult {
	return CheckResult{Status: statusWarning, Message: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...interface{}) CheckResult {
	return CheckResult{Status: statusError, Message: fmt.Sprintf(format, args...)}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case statusSuccess:
		output.Success("%s", check.Message)
	case statusWarning:
		output.Warn("%s", check.Message)
	case statusError:
		output.Error("%s", check.Message)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
