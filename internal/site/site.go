// Package site validates domain names and derives the names and paths of the
// hosting account that serves a domain.
package site

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ksyq12/sitectl/internal/errors"
)

var (
	// alphanumeric labels, hyphens only between alphanumerics, joined by dots
	domainChars = regexp.MustCompile(`(?i)^([a-z\d](-*[a-z\d])*)(\.([a-z\d](-*[a-z\d])*))*$`)
	// 1 to 253 characters overall
	domainLength = regexp.MustCompile(`^.{1,253}$`)
	// every label 1 to 63 characters
	labelLength = regexp.MustCompile(`^[^.]{1,63}(\.[^.]{1,63})*$`)
)

// IsValidDomain reports whether domain passes the character, overall length
// and label length checks.
func IsValidDomain(domain string) bool {
	return domainChars.MatchString(domain) &&
		domainLength.MatchString(domain) &&
		labelLength.MatchString(domain)
}

// Site is the hosting account derived from a domain.
type Site struct {
	Domain   string `json:"domain"`
	Name     string `json:"name"`     // domain with dots replaced by hyphens
	Username string `json:"username"` // prefix + Name
	HomeDir  string `json:"home_dir"`
}

// New derives the account for domain. The domain must be valid.
func New(domain, userPrefix, sitesRoot string) (*Site, error) {
	if !IsValidDomain(domain) {
		return nil, errors.InvalidDomain(domain)
	}

	name := strings.ReplaceAll(domain, ".", "-")
	return &Site{
		Domain:   domain,
		Name:     name,
		Username: userPrefix + name,
		HomeDir:  filepath.Join(sitesRoot, domain),
	}, nil
}

func (s *Site) WWWDir() string {
	return filepath.Join(s.HomeDir, "www")
}

func (s *Site) TmpDir() string {
	return filepath.Join(s.HomeDir, "tmp")
}

// Dirs returns the home, www and tmp directories in creation order.
func (s *Site) Dirs() []string {
	return []string{s.HomeDir, s.WWWDir(), s.TmpDir()}
}

// Check verifies that the account names needed by the provisioning steps
// are set.
func (s *Site) Check() error {
	if s == nil || s.Username == "" || s.HomeDir == "" {
		return errors.Wrap(errors.ErrCodeInternal, "username and home directory must be derived first", nil)
	}
	return nil
}
