package executor

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ksyq12/sitectl/internal/errors"
)

// CommandExecutor runs external commands.
//
// A command succeeds when it could be started and wrote nothing to stderr.
// The exit status is not consulted: adduser and service report their problems
// on stderr, and some of them exit 0 while doing so.
type CommandExecutor interface {
	// Execute runs name with args, blocks until it exits and returns stdout.
	Execute(name string, args ...string) ([]byte, error)

	// LookPath searches for an executable in the directories named by PATH.
	LookPath(file string) (string, error)
}

// CommandError describes a command that could not start or that wrote to
// stderr.
type CommandError struct {
	Command string
	Stderr  string
	Err     error // set when the process could not be started
	WaitErr error // set when the process started but waiting on it failed
}

func (e *CommandError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("can't execute '%s' command: %v", e.Command, e.Err)
	case e.WaitErr != nil:
		return fmt.Sprintf("%s: %v", e.Command, e.WaitErr)
	}
	return fmt.Sprintf("%s: %s", e.Command, strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.WaitErr
}

// Launched reports whether the process was started.
func (e *CommandError) Launched() bool {
	return e.Err == nil
}

// CommandLine joins name and args the way they would be typed in a shell.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// SystemExecutor implements CommandExecutor using os/exec.
type SystemExecutor struct{}

func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute starts the command with separate stdout and stderr buffers and
// waits for it. Stdin is empty.
func (e *SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommand, "", &CommandError{
			Command: CommandLine(name, args...),
			Err:     err,
		})
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			return stdout.Bytes(), errors.Wrap(errors.ErrCodeCommand, "", &CommandError{
				Command: CommandLine(name, args...),
				Stderr:  stderr.String(),
				WaitErr: err,
			})
		}
	}

	if stderr.Len() > 0 {
		return stdout.Bytes(), errors.Wrap(errors.ErrCodeCommand, "", &CommandError{
			Command: CommandLine(name, args...),
			Stderr:  stderr.String(),
		})
	}

	return stdout.Bytes(), nil
}

func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// MockExecutor is a CommandExecutor for tests. Calls are recorded in order.
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification.
type CommandCall struct {
	Name string
	Args []string
}

// String returns the call as a command line.
func (c CommandCall) String() string {
	return CommandLine(c.Name, c.Args...)
}

func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// CommandLines returns every recorded call as a command line.
func (m *MockExecutor) CommandLines() []string {
	lines := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		lines[i] = c.String()
	}
	return lines
}

// StderrFor returns an ExecuteFunc that fails, as the system executor would,
// when the command line starts with prefix.
func StderrFor(prefix, stderr string) func(name string, args ...string) ([]byte, error) {
	return func(name string, args ...string) ([]byte, error) {
		line := CommandLine(name, args...)
		if strings.HasPrefix(line, prefix) {
			return nil, errors.Wrap(errors.ErrCodeCommand, "", &CommandError{
				Command: line,
				Stderr:  stderr,
			})
		}
		return []byte(""), nil
	}
}
