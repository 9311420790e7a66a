// Package provision sets up the hosting account of one domain on the local
// machine.
//
// Add runs a fixed, forward-only sequence:
//
//	validate domain      fails with errors.ErrInvalidDomain, nothing touched
//	check root           fails with errors.ErrRootRequired, nothing touched
//	create-user          adduser --system --home <home> --disabled-password <user>
//	setup-directories    mkdir www, tmp; chmod, chown, chgrp home, www, tmp
//	nginx-config         write sites-available/<domain>, link sites-enabled/<domain>
//	php-fpm-config       write pool.d/<domain>.conf
//	restart-nginx        service <nginx> restart
//	restart-php-fpm      service <php-fpm> restart
//
// Each step's outcome is recorded in a Report. A failed restart always stops
// the run, so PHP-FPM is never restarted after nginx failed. Failures of the
// earlier steps are logged as warnings and the run goes on, unless the config
// sets halt_on_error, in which case the first failure stops the run.
// Nothing is rolled back.
//
// Running Add twice for the same domain is not safe to rely on: config files
// are overwritten, adduser and mkdir report that their targets exist, and the
// sites-enabled link is refused.
//
// Plan describes the same sequence without side effects, for --dry-run.
//
// All side effects go through Dependencies, so tests swap in
// executor.MockExecutor backed drivers, a fake RootChecker and fake Accounts.
package provision
