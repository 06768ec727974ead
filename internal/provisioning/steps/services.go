package steps

import (
	"fmt"

	"github.com/horilla-opensource/horilla-installer/internal/platform/compose"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// Services starts the compose project and waits for the database health
// check. The wait is bounded by --timeout and its expiry is fatal.
type Services struct{}

func (*Services) ID() string                         { return IDServices }
func (*Services) Description() string                { return "Start services" }
func (*Services) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

// Check requires a healthy database and a running application container,
// and that no input of the project was rewritten during this run.
func (*Services) Check(ctx *provisioning.Context) (bool, error) {
	cfg := ctx.Config
	if ctx.Changed(cfg.ComposePath(), cfg.EnvPath(), cfg.DockerfilePath(), cfg.InstallDir) {
		return false, nil
	}
	services, err := listServices(ctx)
	if err != nil {
		return false, err
	}
	db, ok := compose.Find(services, compose.ServiceDB)
	if !ok || !db.Healthy() {
		return false, nil
	}
	server, ok := compose.Find(services, compose.ServiceServer)
	return ok && server.Running(), nil
}

func (*Services) Apply(ctx *provisioning.Context) error {
	project := compose.Project{Dir: ctx.Config.InstallDir}
	build := ctx.Config.BuildFromSource()
	timeout := ctx.LongTimeout(ctx.Timeouts.PackageInstall)
	if build {
		timeout = ctx.LongTimeout(ctx.Timeouts.ImageBuild)
	}

	if _, err := ctx.Exec(project.Up(timeout, build)); err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	return waitHealthy(ctx)
}

// waitHealthy polls the database container until its health check passes.
func waitHealthy(ctx *provisioning.Context) error {
	limit := ctx.Config.Timeout
	deadline := ctx.Now().Add(limit)
	last := "not created"

	for {
		services, err := listServices(ctx)
		if err == nil {
			if db, ok := compose.Find(services, compose.ServiceDB); ok {
				if db.Healthy() {
					ctx.Observer.Printf("[%s] database is healthy", IDServices)
					return nil
				}
				last = db.State
				if db.Health != "" {
					last += "/" + db.Health
				}
			}
		}

		if !ctx.Now().Before(deadline) {
			return &provisioning.TimeoutError{What: "healthy database", Timeout: limit, Last: last}
		}
		if err := ctx.Sleep(ctx, ctx.Timeouts.HealthPollInterval); err != nil {
			return fmt.Errorf("interrupted while waiting for the database: %w", err)
		}
	}
}

func listServices(ctx *provisioning.Context) ([]compose.Service, error) {
	project := compose.Project{Dir: ctx.Config.InstallDir}
	res, err := ctx.Host.Exec(ctx, project.PS(ctx.CommandTimeout()))
	if err != nil {
		return nil, err
	}
	return compose.ParseServices(res.Stdout)
}
