package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppliesDefaultsAndFlags(t *testing.T) {
	cfg, err := Parse([]string{"--out", "/tmp/out", "--prune", "0.1", "in.ply"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Out != "/tmp/out" {
		t.Errorf("Out = %q", cfg.Out)
	}
	if cfg.Prune != 0.1 {
		t.Errorf("Prune = %v, want 0.1", cfg.Prune)
	}
	if cfg.BucketSize != 64 {
		t.Errorf("BucketSize = %d, want default 64", cfg.BucketSize)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "in.ply" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
}

func TestParseRejectsMissingOut(t *testing.T) {
	if _, err := Parse([]string{"in.ply"}); err == nil {
		t.Fatal("expected error for missing --out")
	}
}

func TestParseRejectsPruneOutOfRange(t *testing.T) {
	if _, err := Parse([]string{"--out", "o", "--prune", "1.0", "in.ply"}); err == nil {
		t.Fatal("expected error for --prune >= 1")
	}
}

func TestParseLoadsYAMLConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("out: /tmp/from-yaml\nspacing: 2.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse([]string{"--config", path, "in.ply"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Out != "/tmp/from-yaml" {
		t.Errorf("Out = %q, want value from YAML file", cfg.Out)
	}
	if cfg.Spacing != 2.5 {
		t.Errorf("Spacing = %v, want 2.5", cfg.Spacing)
	}
}

func TestParseFlagOverridesYAMLConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("out: /tmp/from-yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse([]string{"--config", path, "--out", "/tmp/from-flag", "in.ply"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Out != "/tmp/from-flag" {
		t.Errorf("Out = %q, want flag to override YAML", cfg.Out)
	}
}

func TestResumeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.state")
	state := ResumeState{
		Meta: ResumeMeta{
			Spacing:      1.5,
			BucketSize:   64,
			Split:        2,
			Inputs:       []string{"a.ply", "b.ply"},
			PrunedChunks: []int64{3, 7},
		},
		Arena: []byte("chunk map and union-find arena bytes, repeated repeated repeated"),
	}
	if err := WriteResume(path, state); err != nil {
		t.Fatalf("WriteResume() error = %v", err)
	}
	got, err := ReadResume(path)
	if err != nil {
		t.Fatalf("ReadResume() error = %v", err)
	}
	if got.Meta.Spacing != state.Meta.Spacing || got.Meta.Split != state.Meta.Split {
		t.Errorf("Meta = %+v, want %+v", got.Meta, state.Meta)
	}
	if string(got.Arena) != string(state.Arena) {
		t.Errorf("Arena = %q, want %q", got.Arena, state.Arena)
	}
}
