package steps

import (
	"fmt"

	"github.com/horilla-opensource/horilla-installer/internal/platform/compose"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// adminExists exits zero when the user named by HORILLA_ADMIN_USERNAME exists.
const adminExists = `import os, sys
from django.contrib.auth import get_user_model
name = os.environ["HORILLA_ADMIN_USERNAME"]
sys.exit(0 if get_user_model().objects.filter(username=name).exists() else 3)`

// AdminAccount applies migrations and creates the first superuser.
type AdminAccount struct{}

func (*AdminAccount) ID() string                         { return IDAdminAccount }
func (*AdminAccount) Description() string                { return "Create administrator account" }
func (*AdminAccount) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*AdminAccount) Check(ctx *provisioning.Context) (bool, error) {
	project := compose.Project{Dir: ctx.Config.InstallDir}
	cmd := project.ExecEnv(ctx.CommandTimeout(),
		[]string{"HORILLA_ADMIN_USERNAME=" + ctx.Config.AdminUsername},
		compose.ServiceServer, "python", "manage.py", "shell", "-c", adminExists)
	return ctx.Probe(cmd), nil
}

func (*AdminAccount) Apply(ctx *provisioning.Context) error {
	cfg := ctx.Config
	project := compose.Project{Dir: cfg.InstallDir}

	if err := ctx.WaitForPort(ctx, "127.0.0.1", cfg.AppPort, ctx.Timeouts.PortWait); err != nil {
		return &provisioning.TimeoutError{
			What:    fmt.Sprintf("application on port %d", cfg.AppPort),
			Timeout: ctx.Timeouts.PortWait,
			Last:    err.Error(),
		}
	}

	long := ctx.LongTimeout(ctx.Timeouts.PackageInstall)
	if _, err := ctx.Exec(project.Exec(long, compose.ServiceServer, "python", "manage.py", "migrate", "--noinput")); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if _, err := ctx.Exec(project.Exec(long, compose.ServiceServer, "python", "manage.py", "collectstatic", "--noinput")); err != nil {
		ctx.Observer.Printf("[%s] collectstatic failed, static files may be missing: %v", IDAdminAccount, err)
	}

	create := project.ExecEnv(ctx.CommandTimeout(), []string{
		"DJANGO_SUPERUSER_USERNAME=" + cfg.AdminUsername,
		"DJANGO_SUPERUSER_PASSWORD=" + cfg.AdminPassword,
		"DJANGO_SUPERUSER_EMAIL=" + cfg.Email,
	}, compose.ServiceServer, "python", "manage.py", "createsuperuser", "--noinput")
	if _, err := ctx.Exec(create); err != nil {
		return fmt.Errorf("failed to create administrator %s: %w", cfg.AdminUsername, err)
	}
	provisioning.LogResourceChanged(ctx.Observer, IDAdminAccount, cfg.AdminUsername, "created")
	return nil
}
