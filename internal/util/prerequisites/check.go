// Package prerequisites checks that the host tools the installer drives are
// on PATH before anything is changed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a host tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// Package is the apt package that provides the tool.
	Package string
}

// HostTools returns the tools every installation needs.
func HostTools() []Tool {
	return []Tool{
		{
			Name:        "apt-get",
			Required:    true,
			Description: "Installs the container engine, proxy and certificate agent",
			Package:     "apt",
		},
		{
			Name:        "dpkg-query",
			Required:    true,
			Description: "Detects packages that are already installed",
			Package:     "dpkg",
		},
		{
			Name:        "systemctl",
			Required:    true,
			Description: "Enables and reloads the docker and nginx services",
			Package:     "systemd",
		},
	}
}

// BackupTools returns the tools needed when backups are enabled.
func BackupTools() []Tool {
	return []Tool{
		{
			Name:        "crontab",
			Required:    true,
			Description: "Schedules the backup script",
			Package:     "cron",
		},
	}
}

// OptionalTools returns tools that are installed on demand when missing.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "git",
			Required:    false,
			Description: "Clones the application source when no image is given",
			Package:     "git",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (package %s)", tool.Name, tool.Package))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Checker looks tools up through LookPath.
type Checker struct {
	LookPath func(file string) (string, error)
}

// Check verifies that the specified tools are available.
func (c Checker) Check(tools []Tool) *CheckResults {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := lookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

// Check verifies tools against the real PATH.
func Check(tools []Tool) *CheckResults {
	return Checker{}.Check(tools)
}
