package template

import (
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/site"
)

//go:embed defaults/*.conf
var defaults embed.FS

// Template file names, both embedded and under templates_dir.
const (
	NginxTemplate  = "nginx.conf"
	PHPFPMTemplate = "php-fpm.conf"
)

// Tokens recognized in the default templates.
const (
	TokenDomain   = "[domain]"
	TokenName     = "[name]"
	TokenUsername = "[username]"
	TokenHome     = "[home]"
	TokenGroup    = "[group]"
)

// Load returns the text of template name, read from dir or, when dir is
// empty, from the embedded defaults.
func Load(dir, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if dir == "" {
		data, err = defaults.ReadFile("defaults/" + name)
	} else {
		data, err = os.ReadFile(filepath.Join(dir, name))
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplate, "template not found: "+name, err)
	}
	return string(data), nil
}

// Render replaces every occurrence of each key of values in text with its
// value.
func Render(text string, values map[string]string) string {
	if len(values) == 0 {
		return text
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	// longest first so a token that is a prefix of another never wins
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		pairs = append(pairs, k, values[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// NginxValues maps the nginx template tokens for s.
func NginxValues(s *site.Site) map[string]string {
	return map[string]string{
		TokenName:   s.Name,
		TokenDomain: s.Domain,
		TokenHome:   s.HomeDir,
	}
}

// PHPFPMValues maps the PHP-FPM pool template tokens for s. group is the
// owner group of the site directories.
func PHPFPMValues(s *site.Site, group string) map[string]string {
	return map[string]string{
		TokenUsername: s.Username,
		TokenName:     s.Name,
		TokenDomain:   s.Domain,
		TokenHome:     s.HomeDir,
		TokenGroup:    group,
	}
}

// Available lists the embedded template names. A templates_dir must provide
// each of them.
func Available() []string {
	entries, err := defaults.ReadDir("defaults")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
