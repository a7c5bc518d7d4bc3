package uringgen

import (
	"context"

	"github.com/wippyai/uringgen/config"
	"github.com/wippyai/uringgen/pipeline"
)

// Generate runs every stage for cfg with the system toolchain and prints
// the link directives on stdout.
func Generate(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (*pipeline.Result, error) {
	return pipeline.New(cfg, opts...).Run(ctx)
}
