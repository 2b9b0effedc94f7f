package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/seqsense/splatmesh/stats"
)

// writeTimeplot writes the recorded event spans to path as tab-separated
// (name, start-unix-nanos, duration) rows, for the --timeplot CLI
// surface of §6. A blank path disables it.
func writeTimeplot(path string, events *stats.EventQueue, logger *slog.Logger) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("could not write timeplot", "path", path, "err", err)
		return
	}
	defer f.Close()
	for _, s := range events.Events() {
		fmt.Fprintf(f, "%s\t%d\t%s\n", s.Name, s.Start.UnixNano(), s.Duration())
	}
}
