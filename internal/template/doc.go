// Package template renders the nginx site and PHP-FPM pool files of a site.
//
// Templates are plain text with literal tokens; there is no template
// language. Render swaps each token for its value verbatim, without
// escaping; values come from a validated domain.
//
// Tokens:
//
//	nginx.conf     [domain] [name] [home]
//	php-fpm.conf   [domain] [name] [home] [username] [group]
//
// [home] is the site home directory under sites_root and [group] is
// owner_group, so the rendered files follow the config.
//
// Tokens that have no value are left in place, so php_admin_value[...]
// directives in a pool file pass through untouched.
//
// The default templates are compiled into the binary. Setting templates_dir
// in the config makes Load read <templates_dir>/nginx.conf and
// <templates_dir>/php-fpm.conf instead:
//
//	text, err := template.Load(cfg.TemplatesDir, template.NginxTemplate)
//	out := template.Render(text, template.NginxValues(s))
package template
