package provisioning

import (
	"strconv"
	"strings"
)

func itoa(i int) string { return strconv.Itoa(i) }

// commandName returns the program of a rendered command line, for use as a
// metric label.
func commandName(line string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	return name
}
