// Package errors provides the structured error type used across sitectl.
//
// Every failure that leaves a package boundary is a *ProvisionError carrying
// a Code that groups it for programmatic handling:
//
//	VALIDATION  the domain (or another input) was rejected
//	PERMISSION  the caller is not root
//	COMMAND     an external command could not start or wrote to stderr
//	FILESYSTEM  a directory, file, symlink, or ownership change failed
//	TEMPLATE    a config template could not be loaded
//	CONFIG      the configuration file is unreadable or invalid
//	INTERNAL    a precondition was violated
//
// The two guard failures of a provisioning run have sentinels whose messages
// are the operator-facing text:
//
//	errors.ErrInvalidDomain // "Invalid domain name"
//	errors.ErrRootRequired  // "User is not root"
//
// Matching is by code, so a wrapped or domain-specific error still satisfies
// errors.Is against the sentinel of the same code:
//
//	if errors.Is(err, errors.ErrRootRequired) {
//	    // re-run with sudo
//	}
//
// Use errors.As to reach the step and domain:
//
//	var perr *errors.ProvisionError
//	if errors.As(err, &perr) {
//	    fmt.Println(perr.Step, perr.Domain)
//	}
package errors

import (
	"errors"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

const (
	ErrCodeValidation ErrorCode = "VALIDATION"
	ErrCodePermission ErrorCode = "PERMISSION"
	ErrCodeCommand    ErrorCode = "COMMAND"
	ErrCodeFilesystem ErrorCode = "FILESYSTEM"
	ErrCodeTemplate   ErrorCode = "TEMPLATE"
	ErrCodeConfig     ErrorCode = "CONFIG"
	ErrCodeInternal   ErrorCode = "INTERNAL"
)

// ProvisionError is a failure with enough context to tell which site and which
// provisioning step it belongs to.
type ProvisionError struct {
	Code    ErrorCode
	Message string
	Domain  string // empty when not tied to a site
	Step    string // empty outside a provisioning run
	Err     error
}

// Error renders "site <domain>: <step>: <message>: <cause>", leaving out the
// parts that are empty.
func (e *ProvisionError) Error() string {
	parts := make([]string, 0, 4)
	if e.Domain != "" {
		parts = append(parts, "site "+e.Domain)
	}
	if e.Step != "" {
		parts = append(parts, e.Step)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *ProvisionError with the same code.
func (e *ProvisionError) Is(target error) bool {
	t, ok := target.(*ProvisionError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	// ErrInvalidDomain is returned before any side effect when the domain
	// fails validation.
	ErrInvalidDomain = &ProvisionError{Code: ErrCodeValidation, Message: "Invalid domain name"}

	// ErrRootRequired is returned before any side effect when the caller's
	// effective uid is not 0.
	ErrRootRequired = &ProvisionError{Code: ErrCodePermission, Message: "User is not root"}

	ErrCommandFailed    = &ProvisionError{Code: ErrCodeCommand, Message: "command failed"}
	ErrFilesystem       = &ProvisionError{Code: ErrCodeFilesystem, Message: "filesystem operation failed"}
	ErrTemplateNotFound = &ProvisionError{Code: ErrCodeTemplate, Message: "template not found"}
	ErrConfigInvalid    = &ProvisionError{Code: ErrCodeConfig, Message: "invalid configuration"}
	ErrPrecondition     = &ProvisionError{Code: ErrCodeInternal, Message: "precondition violated"}
)

// InvalidDomain creates a validation error for domain.
func InvalidDomain(domain string) error {
	return &ProvisionError{
		Code:    ErrCodeValidation,
		Message: ErrInvalidDomain.Message,
		Domain:  domain,
	}
}

// Wrap creates an error with the specified code, message and cause.
func Wrap(code ErrorCode, msg string, err error) error {
	return &ProvisionError{Code: code, Message: msg, Err: err}
}

// WrapStep attaches a site and step to err. The code of err is kept when it is
// already a *ProvisionError; otherwise code is used.
func WrapStep(code ErrorCode, domain, step string, err error) error {
	var perr *ProvisionError
	if errors.As(err, &perr) {
		code = perr.Code
	}
	return &ProvisionError{
		Code:   code,
		Domain: domain,
		Step:   step,
		Err:    err,
	}
}

// CodeOf returns the code of the first *ProvisionError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var perr *ProvisionError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrCodeInternal
}

// Re-exports of the standard library helpers so callers need one import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
	New  = errors.New
)
