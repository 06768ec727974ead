// Package steps implements the fixed installation pipeline.
//
// Every step pairs a read-only Check, which reports whether its effect is
// already present on the host, with an Apply that produces it. Re-running the
// installer therefore skips completed work and resumes at the first unmet
// step.
//
// Step order:
//
//  1. package-index      refresh apt indexes
//  2. system-upgrade     full upgrade, only with --no-skip-upgrade
//  3. container-engine   Docker Engine and the compose plugin (always fatal)
//  4. proxy-packages     nginx and certbot
//  5. app-source         source checkout, only without --app-image
//  6. compose-manifest   install directory, compose file and Dockerfile
//  7. app-environment    .env with host allow-lists derived from the domain
//  8. services           compose up and the database health wait
//  9. proxy-site         nginx virtual host
//  10. certificate       certbot, best effort
//  11. admin-account     migrations and the first superuser
//  12. backup-packages   borg and rclone
//  13. backup-remote     bucket check or creation
//  14. backup-script     rclone remote, passphrase, script and borg repository
//  15. backup-schedule   crontab entry
package steps
