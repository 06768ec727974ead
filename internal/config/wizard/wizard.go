package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

// Run prompts for every installation setting, starting from the values in
// in. Domain may be left empty; Build derives it from the public address.
// The context is used for cancellation support (e.g., Ctrl+C).
func Run(ctx context.Context, in *config.Input) error {
	if err := runSiteGroup(ctx, in); err != nil {
		return fmt.Errorf("site: %w", err)
	}

	if err := runAdminGroup(ctx, in); err != nil {
		return fmt.Errorf("administrator: %w", err)
	}

	if err := runDatabaseGroup(ctx, in); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	enable := in.BackupsRequested()
	if err := runBackupToggle(ctx, &enable); err != nil {
		return fmt.Errorf("backups: %w", err)
	}
	in.EnableBackups = yesNo(enable)
	if !enable {
		return nil
	}

	if in.S3Provider == "" {
		in.S3Provider = config.ProviderAWS
	}
	if in.BackupFrequency == "" {
		in.BackupFrequency = config.DefaultFrequency
	}
	if err := runBackupProviderGroup(ctx, in); err != nil {
		return fmt.Errorf("backup provider: %w", err)
	}
	if err := runBackupDetailsGroup(ctx, in); err != nil {
		return fmt.Errorf("backup details: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// portField adapts an int setting to a text input.
type portField struct {
	dst  *int
	text string
}

func newPortField(dst *int) *portField {
	p := &portField{dst: dst}
	if *dst > 0 {
		p.text = strconv.Itoa(*dst)
	}
	return p
}

func (p *portField) apply() {
	if n, err := strconv.Atoi(strings.TrimSpace(p.text)); err == nil {
		*p.dst = n
	}
}
