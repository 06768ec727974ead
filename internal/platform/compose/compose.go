// Package compose builds docker compose invocations for the installation
// directory and interprets their output.
package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// Service names used in the rendered manifest.
const (
	ServiceDB     = "db"
	ServiceServer = "server"
)

// Container states and health values reported by `docker compose ps`.
const (
	StateRunning  = "running"
	HealthHealthy = "healthy"
)

// Service is one row of `docker compose ps --format json`.
type Service struct {
	Name    string `json:"Name"`
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
}

// Running reports whether the container is up.
func (s Service) Running() bool { return s.State == StateRunning }

// Healthy reports whether the container's health check passes.
func (s Service) Healthy() bool { return s.Running() && s.Health == HealthHealthy }

// Project addresses the compose project rendered into Dir.
type Project struct {
	Dir string
}

// Version checks that the compose plugin is available.
func Version(timeout time.Duration) host.Command {
	return host.Command{Name: "docker", Args: []string{"compose", "version"}, Timeout: timeout}
}

// Up creates and starts the services in the background. With build set,
// locally built images are rebuilt first.
func (p Project) Up(timeout time.Duration, build bool) host.Command {
	args := []string{"up", "-d", "--remove-orphans"}
	if build {
		args = append(args, "--build")
	}
	return p.command(timeout, args...)
}

// PS lists the project's containers, including stopped ones.
func (p Project) PS(timeout time.Duration) host.Command {
	return p.command(timeout, "ps", "--all", "--format", "json")
}

// Exec runs args inside service without a TTY.
func (p Project) Exec(timeout time.Duration, service string, args ...string) host.Command {
	return p.command(timeout, append([]string{"exec", "-T", service}, args...)...)
}

// ExecEnv is Exec with environment variables. Only the names appear on the
// command line; values travel in the process environment so secrets stay out
// of the process list.
func (p Project) ExecEnv(timeout time.Duration, env []string, service string, args ...string) host.Command {
	execArgs := []string{"exec", "-T"}
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		execArgs = append(execArgs, "-e", name)
	}
	execArgs = append(execArgs, service)
	cmd := p.command(timeout, append(execArgs, args...)...)
	cmd.Env = env
	return cmd
}

func (p Project) command(timeout time.Duration, args ...string) host.Command {
	return host.Command{
		Name:    "docker",
		Args:    append([]string{"compose", "--project-directory", p.Dir}, args...),
		Timeout: timeout,
	}
}

// ParseServices decodes `docker compose ps --format json`. Compose releases
// before 2.21 print a JSON array, later ones print one object per line.
func ParseServices(out string) ([]Service, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var services []Service
		if err := json.Unmarshal([]byte(trimmed), &services); err != nil {
			return nil, fmt.Errorf("failed to parse compose ps output: %w", err)
		}
		return services, nil
	}

	var services []Service
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	for {
		var s Service
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return services, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse compose ps output: %w", err)
		}
		services = append(services, s)
	}
}

// Find returns the row for service.
func Find(services []Service, service string) (Service, bool) {
	for _, s := range services {
		if s.Service == service {
			return s, true
		}
	}
	return Service{}, false
}
