// Package config holds the settings of a provisioning run and loads them
// from YAML.
//
// Every value that decides where files land or which services are touched
// lives here and is handed to the provisioner explicitly. The defaults match
// a Debian host running nginx and PHP 5 FPM:
//
//	sites_root: /var/www
//	user_prefix: www-
//	owner_group: www-data
//	dirs_mode: "0760"
//	templates_dir: ""        # empty: use the templates built into the binary
//	halt_on_error: false     # true: stop at the first failing step
//	nginx:
//	  config_root: /etc/nginx
//	  service: nginx
//	php_fpm:
//	  config_root: /etc/php5/fpm
//	  service: php5-fpm
//
// The file is read from --config, then $SITECTL_CONFIG, then
// /etc/sitectl/config.yaml. A missing file is not an error; keys missing from
// the file keep their defaults.
//
// Config is not safe for concurrent mutation.
package config
