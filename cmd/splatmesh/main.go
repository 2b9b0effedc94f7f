// Command splatmesh is the thin CLI entrypoint wiring the pipeline
// stages of SPEC_FULL.md end to end: bucket splats, build a per-tile
// splat-tree, extract a marching-tetrahedra mesh per tile, weld and
// prune out-of-core, and write the resulting chunk PLY files.
package main

import (
	"log/slog"
	"os"

	"github.com/seqsense/splatmesh/config"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		slog.Error("invalid arguments", "err", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))

	if err := run(cfg, logger); err != nil {
		logger.Error("splatmesh failed", "err", err)
		os.Exit(1)
	}
}
