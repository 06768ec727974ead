// Package osrelease reads the distribution identification in /etc/os-release.
package osrelease

import (
	"bufio"
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// Path is the standard location of the identification file.
const Path = "/etc/os-release"

// Distributions the installer supports.
const (
	Ubuntu = "ubuntu"
	Debian = "debian"
)

// Release holds the fields the installer uses.
type Release struct {
	ID             string
	IDLike         []string
	VersionID      string
	Codename       string
	UbuntuCodename string
}

// Parse decodes os-release data. Unknown keys and malformed lines are ignored.
func Parse(data []byte) Release {
	var r Release
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			r.ID = value
		case "ID_LIKE":
			r.IDLike = strings.Fields(value)
		case "VERSION_ID":
			r.VersionID = value
		case "VERSION_CODENAME":
			r.Codename = value
		case "UBUNTU_CODENAME":
			r.UbuntuCodename = value
		}
	}
	return r
}

// Read loads and parses Path from fsys.
func Read(fsys host.FileSystem) (Release, error) {
	data, err := fsys.ReadFile(Path)
	if err != nil {
		return Release{}, fmt.Errorf("failed to read %s: %w", Path, err)
	}
	return Parse(data), nil
}

// Family returns the supported distribution r is or derives from.
func (r Release) Family() (string, bool) {
	for _, id := range append([]string{r.ID}, r.IDLike...) {
		if id == Ubuntu || id == Debian {
			return id, true
		}
	}
	return "", false
}

// Supported reports whether r is Ubuntu, Debian or a derivative.
func (r Release) Supported() bool {
	_, ok := r.Family()
	return ok
}

// Upstream returns the distribution and codename whose package repositories
// a derivative can use. Ubuntu derivatives report UBUNTU_CODENAME.
func (r Release) Upstream() (distro, codename string, err error) {
	if r.ID == Ubuntu || r.ID == Debian {
		if r.Codename == "" {
			return "", "", fmt.Errorf("%s does not report a release codename", r.ID)
		}
		return r.ID, r.Codename, nil
	}
	if r.UbuntuCodename != "" {
		return Ubuntu, r.UbuntuCodename, nil
	}
	if slices.Contains(r.IDLike, Debian) && r.Codename != "" {
		return Debian, r.Codename, nil
	}
	return "", "", fmt.Errorf("unsupported distribution %q", r.ID)
}
