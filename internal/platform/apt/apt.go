// Package apt builds Debian package manager commands and recognises the
// failures caused by another process holding the dpkg/apt locks.
package apt

import (
	"strings"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// ListsDir holds the downloaded package indexes. Its modification time is
// bumped by every successful index refresh.
const ListsDir = "/var/lib/apt/lists"

// noninteractive keeps debconf and needrestart from prompting.
var noninteractive = []string{
	"DEBIAN_FRONTEND=noninteractive",
	"NEEDRESTART_MODE=a",
}

// lockSignatures are the messages apt-get and dpkg print when a lock is held.
// The list is kept deliberately narrow so unrelated failures are not retried.
var lockSignatures = []string{
	"could not get lock",
	"unable to acquire the dpkg frontend lock",
	"unable to lock directory",
	"unable to lock the administration directory",
	"is held by process",
}

// LockSignature classifies apt/dpkg lock contention from a command's stderr.
type LockSignature struct{}

// IsContention reports whether res failed because of a held lock.
func (LockSignature) IsContention(res host.Result) bool {
	if res.ExitCode == 0 || res.TimedOut {
		return false
	}
	stderr := strings.ToLower(res.Stderr)
	for _, sig := range lockSignatures {
		if strings.Contains(stderr, sig) {
			return true
		}
	}
	return false
}

// Update refreshes the package indexes.
func Update(timeout time.Duration) host.Command {
	return aptGet(timeout, "update")
}

// Upgrade upgrades installed packages, keeping existing configuration files.
func Upgrade(timeout time.Duration) host.Command {
	return aptGet(timeout,
		"-o", "Dpkg::Options::=--force-confdef",
		"-o", "Dpkg::Options::=--force-confold",
		"upgrade", "-y")
}

// Install installs packages without recommends prompts.
func Install(timeout time.Duration, packages ...string) host.Command {
	args := append([]string{"install", "-y"}, packages...)
	return aptGet(timeout, args...)
}

// ListUpgradable lists packages with pending upgrades.
func ListUpgradable(timeout time.Duration) host.Command {
	return host.Command{
		Name:    "apt",
		Args:    []string{"list", "--upgradable"},
		Env:     noninteractive,
		Timeout: timeout,
	}
}

// PackageStatus queries the dpkg status of a package.
func PackageStatus(timeout time.Duration, pkg string) host.Command {
	return host.Command{
		Name:    "dpkg-query",
		Args:    []string{"-W", "-f=${Status}", pkg},
		Timeout: timeout,
	}
}

// Installed interprets the output of PackageStatus.
func Installed(res host.Result) bool {
	return res.Success() && strings.Contains(res.Stdout, "install ok installed")
}

// HasUpgrades interprets the output of ListUpgradable. The first line of the
// output is the "Listing..." banner.
func HasUpgrades(res host.Result) bool {
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Listing") || strings.HasPrefix(line, "WARNING") {
			continue
		}
		return true
	}
	return false
}

func aptGet(timeout time.Duration, args ...string) host.Command {
	return host.Command{
		Name:    "apt-get",
		Args:    append([]string{"-q"}, args...),
		Env:     noninteractive,
		Timeout: timeout,
	}
}
