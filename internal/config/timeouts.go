package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the tunables that are not worth a flag.
// Each can be overridden through an environment variable.
type Timeouts struct {
	Command            time.Duration // Default bound for a single host command
	PackageInstall     time.Duration // apt-get install/upgrade
	ImageBuild         time.Duration // docker compose up including a source build
	HealthPollInterval time.Duration // Delay between database health probes
	IndexMaxAge        time.Duration // Package index younger than this needs no refresh
	PortWait           time.Duration // Waiting for the application port after start
	NetworkRetries     int           // Retries for S3 and public IP lookups
}

// LoadTimeouts loads tunables from the environment.
// Unset or malformed variables fall back to the default.
//
// Environment Variables:
//   - HORILLA_TIMEOUT_COMMAND (default: 5m)
//   - HORILLA_TIMEOUT_PACKAGE_INSTALL (default: 20m)
//   - HORILLA_TIMEOUT_IMAGE_BUILD (default: 30m)
//   - HORILLA_HEALTH_POLL_INTERVAL (default: 5s)
//   - HORILLA_INDEX_MAX_AGE (default: 1h)
//   - HORILLA_PORT_WAIT (default: 3m)
//   - HORILLA_NETWORK_RETRIES (default: 3)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Command:            parseDuration("HORILLA_TIMEOUT_COMMAND", 5*time.Minute),
		PackageInstall:     parseDuration("HORILLA_TIMEOUT_PACKAGE_INSTALL", 20*time.Minute),
		ImageBuild:         parseDuration("HORILLA_TIMEOUT_IMAGE_BUILD", 30*time.Minute),
		HealthPollInterval: parseDuration("HORILLA_HEALTH_POLL_INTERVAL", 5*time.Second),
		IndexMaxAge:        parseDuration("HORILLA_INDEX_MAX_AGE", time.Hour),
		PortWait:           parseDuration("HORILLA_PORT_WAIT", 3*time.Minute),
		NetworkRetries:     parseInt("HORILLA_NETWORK_RETRIES", 3),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
