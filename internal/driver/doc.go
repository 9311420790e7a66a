// Package driver writes per-site service configuration and restarts the
// services that read it.
//
// Two drivers exist:
//
//	NginxDriver   <nginx root>/sites-available/<domain>, linked from
//	              <nginx root>/sites-enabled/<domain>
//	PHPFPMDriver  <php-fpm root>/pool.d/<domain>.conf
//
// Both implement Driver; NginxDriver also implements SiteDriver, which adds
// the enable step and a syntax test. Commands go through an
// executor.CommandExecutor, so a restart counts as failed when the service
// command prints anything on stderr.
//
// Usage:
//
//	exec := executor.NewSystemExecutor()
//	web := driver.NewNginx(cfg.Nginx, exec)
//	if err := web.Add("example.com", rendered); err != nil {
//	    return err
//	}
//	if err := web.Enable("example.com"); err != nil {
//	    return err
//	}
//	return web.Restart()
//
// Add overwrites existing files. Enable refuses to replace an existing link.
// Nothing in this package deletes files.
package driver
