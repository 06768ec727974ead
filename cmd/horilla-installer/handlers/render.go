package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/horilla-opensource/horilla-installer/internal/render"
)

// Render prints one artifact exactly as an install would write it.
func Render(ctx context.Context, opts Options, kind string) error {
	if !slices.Contains(render.Kinds(), render.Kind(kind)) {
		return fmt.Errorf("unknown artifact %q (valid: %v)", kind, render.Kinds())
	}

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	out, err := renderer.Render(render.Kind(kind), cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}
