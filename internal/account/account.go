// Package account manages the system user of a site and the ownership of its
// files.
package account

import (
	"os"
	"os/user"
	"strconv"

	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

// Lookup resolves account names to numeric ids.
type Lookup interface {
	UserID(username string) (int, error)
	GroupID(group string) (int, error)
}

// Manager creates system users and changes file ownership.
type Manager struct {
	exec   executor.CommandExecutor
	lookup Lookup
	chown  func(path string, uid, gid int) error
}

// NewManager returns a Manager that runs commands through exec and resolves
// names from the system account database.
func NewManager(exec executor.CommandExecutor) *Manager {
	return &Manager{
		exec:   exec,
		lookup: SystemLookup{},
		chown:  os.Chown,
	}
}

// NewManagerWithLookup is NewManager with a custom name resolver and chown
// function (for testing).
func NewManagerWithLookup(exec executor.CommandExecutor, lookup Lookup, chown func(path string, uid, gid int) error) *Manager {
	if chown == nil {
		chown = os.Chown
	}
	return &Manager{exec: exec, lookup: lookup, chown: chown}
}

// AddUserArgs returns the adduser arguments that create username as a system
// account with home as its home directory and no password.
func AddUserArgs(username, home string) []string {
	return []string{"--system", "--home", home, "--disabled-password", username}
}

// CreateUser runs adduser for username. Both arguments must be non-empty.
func (m *Manager) CreateUser(username, home string) error {
	if username == "" || home == "" {
		return errors.Wrap(errors.ErrCodeInternal, "username and home directory are required", nil)
	}

	if _, err := m.exec.Execute("adduser", AddUserArgs(username, home)...); err != nil {
		return errors.Wrap(errors.ErrCodeCommand, "failed to create user "+username, err)
	}
	return nil
}

// Chown gives path to username and group. Owner and group are applied
// independently: an unknown group still leaves the owner changed, and the
// other way round. The lookup failures are returned joined.
func (m *Manager) Chown(path, username, group string) error {
	var errs []error

	uid, err := m.lookup.UserID(username)
	if err != nil {
		uid = -1
		errs = append(errs, errors.Wrap(errors.ErrCodeFilesystem, "unknown user "+username, err))
	}
	gid, err := m.lookup.GroupID(group)
	if err != nil {
		gid = -1
		errs = append(errs, errors.Wrap(errors.ErrCodeFilesystem, "unknown group "+group, err))
	}

	// -1 leaves that id unchanged
	if uid != -1 || gid != -1 {
		if err := m.chown(path, uid, gid); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeFilesystem, "failed to change owner of "+path, err))
		}
	}
	return errors.Join(errs...)
}

// SystemLookup resolves names through os/user.
type SystemLookup struct{}

func (SystemLookup) UserID(username string) (int, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Uid)
}

func (SystemLookup) GroupID(group string) (int, error) {
	g, err := user.LookupGroup(group)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(g.Gid)
}

// StaticLookup resolves names from fixed maps (for testing).
type StaticLookup struct {
	Users  map[string]int
	Groups map[string]int
}

func (s StaticLookup) UserID(username string) (int, error) {
	if id, ok := s.Users[username]; ok {
		return id, nil
	}
	return 0, user.UnknownUserError(username)
}

func (s StaticLookup) GroupID(group string) (int, error) {
	if id, ok := s.Groups[group]; ok {
		return id, nil
	}
	return 0, user.UnknownGroupError(group)
}
