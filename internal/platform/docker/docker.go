// Package docker builds the commands and files that install Docker Engine
// with the compose plugin from Docker's own apt repository.
package docker

import (
	"fmt"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// Repository locations.
const (
	KeyringDir  = "/etc/apt/keyrings"
	KeyringPath = KeyringDir + "/docker.asc"
	SourcesPath = "/etc/apt/sources.list.d/docker.list"
	downloadURL = "https://download.docker.com/linux"
)

// Prerequisites are needed to fetch the repository key.
var Prerequisites = []string{"ca-certificates", "curl"}

// Packages make up the engine and the compose plugin.
var Packages = []string{"docker-ce", "docker-ce-cli", "containerd.io", "docker-buildx-plugin", "docker-compose-plugin"}

// FetchKey downloads the repository signing key to dest.
func FetchKey(timeout time.Duration, distro, dest string) host.Command {
	return host.Command{
		Name:    "curl",
		Args:    []string{"-fsSL", fmt.Sprintf("%s/%s/gpg", downloadURL, distro), "-o", dest},
		Timeout: timeout,
	}
}

// InstallKey copies a downloaded key into the keyring, world-readable so
// apt's unprivileged fetcher can verify with it.
func InstallKey(timeout time.Duration, src string) host.Command {
	return host.Command{
		Name:    "install",
		Args:    []string{"-m", "0644", src, KeyringPath},
		Timeout: timeout,
	}
}

// Architecture asks dpkg for the native architecture.
func Architecture(timeout time.Duration) host.Command {
	return host.Command{Name: "dpkg", Args: []string{"--print-architecture"}, Timeout: timeout}
}

// SourcesEntry is the apt source line for distro/codename.
func SourcesEntry(arch, distro, codename string) string {
	return fmt.Sprintf("deb [arch=%s signed-by=%s] %s/%s %s stable\n", arch, KeyringPath, downloadURL, distro, codename)
}

// Info reaches the daemon. It fails when the daemon is not running.
func Info(timeout time.Duration) host.Command {
	return host.Command{Name: "docker", Args: []string{"info", "--format", "{{.ServerVersion}}"}, Timeout: timeout}
}

// EnableService starts the daemon now and on boot.
func EnableService(timeout time.Duration) host.Command {
	return Systemctl(timeout, "enable", "--now", "docker")
}

// Systemctl runs a systemctl verb.
func Systemctl(timeout time.Duration, args ...string) host.Command {
	return host.Command{Name: "systemctl", Args: args, Timeout: timeout}
}
