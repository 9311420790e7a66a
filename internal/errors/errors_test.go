package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestProvisionError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProvisionError
		expected string
	}{
		{
			name:     "message only",
			err:      &ProvisionError{Code: ErrCodeValidation, Message: "Invalid domain name"},
			expected: "Invalid domain name",
		},
		{
			name: "with domain",
			err: &ProvisionError{
				Code:    ErrCodeValidation,
				Message: "Invalid domain name",
				Domain:  "-bad.com",
			},
			expected: "site -bad.com: Invalid domain name",
		},
		{
			name: "with step and cause",
			err: &ProvisionError{
				Code:   ErrCodeCommand,
				Domain: "example.com",
				Step:   "restart-nginx",
				Err:    fmt.Errorf("job failed"),
			},
			expected: "site example.com: restart-nginx: job failed",
		},
		{
			name: "message and cause",
			err: &ProvisionError{
				Code:    ErrCodeConfig,
				Message: "failed to parse config",
				Err:     fmt.Errorf("yaml: line 3"),
			},
			expected: "failed to parse config: yaml: line 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProvisionError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"invalid domain matches sentinel", InvalidDomain("x..y"), ErrInvalidDomain, true},
		{"validation matches invalid domain", &ProvisionError{Code: ErrCodeValidation, Message: "empty"}, ErrInvalidDomain, true},
		{"permission does not match validation", ErrRootRequired, ErrInvalidDomain, false},
		{"wrapped command error", fmt.Errorf("outer: %w", Wrap(ErrCodeCommand, "adduser", nil)), ErrCommandFailed, true},
		{"plain error", errors.New("boom"), ErrFilesystem, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapStep(t *testing.T) {
	t.Run("keeps inner code", func(t *testing.T) {
		inner := Wrap(ErrCodeFilesystem, "failed to write", errors.New("read-only"))
		err := WrapStep(ErrCodeInternal, "example.com", "nginx-config", inner)

		var perr *ProvisionError
		if !As(err, &perr) {
			t.Fatal("expected *ProvisionError")
		}
		if perr.Code != ErrCodeFilesystem {
			t.Errorf("Code = %s, want %s", perr.Code, ErrCodeFilesystem)
		}
		if perr.Step != "nginx-config" {
			t.Errorf("Step = %q, want nginx-config", perr.Step)
		}
		if !Is(err, ErrFilesystem) {
			t.Error("expected errors.Is to match ErrFilesystem")
		}
	})

	t.Run("uses given code for foreign errors", func(t *testing.T) {
		err := WrapStep(ErrCodeCommand, "example.com", "create-user", errors.New("exit 1"))
		if CodeOf(err) != ErrCodeCommand {
			t.Errorf("CodeOf() = %s, want %s", CodeOf(err), ErrCodeCommand)
		}
	})
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %s, want INTERNAL", got)
	}

	joined := Join(errors.New("first"), Wrap(ErrCodeFilesystem, "chmod", nil))
	if got := CodeOf(joined); got != ErrCodeFilesystem {
		t.Errorf("CodeOf(joined) = %s, want FILESYSTEM", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &ProvisionError{Code: ErrCodeConfig, Err: cause}
	if err.Unwrap() != cause {
		t.Error("Unwrap() did not return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}
