package provision

import (
	"time"

	"github.com/google/uuid"

	"github.com/ksyq12/sitectl/internal/site"
)

// Step names one provisioning step.
type Step string

const (
	StepCreateUser       Step = "create-user"
	StepSetupDirectories Step = "setup-directories"
	StepNginxConfig      Step = "nginx-config"
	StepPHPFPMConfig     Step = "php-fpm-config"
	StepRestartNginx     Step = "restart-nginx"
	StepRestartPHPFPM    Step = "restart-php-fpm"
)

// Steps lists every step in execution order.
func Steps() []Step {
	return []Step{
		StepCreateUser,
		StepSetupDirectories,
		StepNginxConfig,
		StepPHPFPMConfig,
		StepRestartNginx,
		StepRestartPHPFPM,
	}
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step   Step   `json:"step"`
	Target string `json:"target"`
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Report collects the step results of one Add call. Steps that were never
// attempted are absent.
type Report struct {
	ID         string       `json:"id"`
	Domain     string       `json:"domain"`
	Site       *site.Site   `json:"site,omitempty"`
	Steps      []StepResult `json:"steps"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

func newReport(domain string, now time.Time) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Domain:    domain,
		Steps:     []StepResult{},
		StartedAt: now,
	}
}

func (r *Report) record(step Step, target string, err error) StepResult {
	res := StepResult{Step: step, Target: target, Err: err}
	if err != nil {
		res.Error = err.Error()
	}
	r.Steps = append(r.Steps, res)
	return res
}

// Result returns the result of step and whether it was attempted.
func (r *Report) Result(step Step) (StepResult, bool) {
	for _, res := range r.Steps {
		if res.Step == step {
			return res, true
		}
	}
	return StepResult{}, false
}

// Failed returns the failed steps in execution order.
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, res := range r.Steps {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Completed reports whether every step was attempted.
func (r *Report) Completed() bool {
	return len(r.Steps) == len(Steps())
}

// OK reports whether every step was attempted and none failed.
func (r *Report) OK() bool {
	return r.Completed() && len(r.Failed()) == 0
}
