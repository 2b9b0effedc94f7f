package config

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/seqsense/splatmesh/errs"
	"github.com/zhuyie/golzf"
	"gopkg.in/yaml.v3"
)

// ResumeMeta is the human-inspectable header of a resume sidecar (§6):
// enough of the run's configuration to tell whether a --resume state
// file still matches the inputs it's being resumed against, plus the
// prune decisions already made for completed chunks.
type ResumeMeta struct {
	Spacing      float64  `yaml:"spacing"`
	BucketSize   int64    `yaml:"bucketSize"`
	Split        int64    `yaml:"split"`
	Inputs       []string `yaml:"inputs"`
	PrunedChunks []int64  `yaml:"prunedChunks"`
}

// ResumeState is the full contents of a resume sidecar: the YAML
// metadata header plus the binary chunk-map/union-find arena, the way
// pcd.go's BinaryCompressed variant pairs an ASCII header with a
// length-prefixed compressed payload.
type ResumeState struct {
	Meta  ResumeMeta
	Arena []byte // raw chunk map + union-find arena bytes, caller-defined layout
}

// WriteResume writes state to path as a YAML metadata header, a blank
// line, then an LZF-compressed binary arena framed the way
// pcd.go's BinaryCompressed payload is: an int32 compressed length, an
// int32 uncompressed length, then the compressed bytes.
func WriteResume(path string, state ResumeState) error {
	metaBytes, err := yaml.Marshal(state.Meta)
	if err != nil {
		return errs.Wrap(errs.Invalid, err, "marshal resume metadata")
	}

	compressed := make([]byte, len(state.Arena)+16)
	n, err := lzf.Compress(state.Arena, compressed)
	if err != nil {
		return errs.Wrap(errs.Invalid, err, "compress resume arena")
	}
	compressed = compressed[:n]

	var buf bytes.Buffer
	buf.Write(metaBytes)
	buf.WriteString("\n")
	if err := binary.Write(&buf, binary.LittleEndian, int32(n)); err != nil {
		return errs.Wrap(errs.Invalid, err, "write resume header")
	}
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(state.Arena))); err != nil {
		return errs.Wrap(errs.Invalid, err, "write resume header")
	}
	buf.Write(compressed)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.IO, err, "write resume sidecar")
	}
	return nil
}

// ReadResume reads back a sidecar written by WriteResume.
func ReadResume(path string) (ResumeState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ResumeState{}, errs.Wrap(errs.IO, err, "read resume sidecar")
	}

	// The metadata header ends at a blank line: "\n\n".
	end := bytes.Index(b, []byte("\n\n"))
	if end < 0 {
		return ResumeState{}, errs.New(errs.Invalid, "resume sidecar: missing metadata terminator")
	}

	var meta ResumeMeta
	if err := yaml.Unmarshal(b[:end], &meta); err != nil {
		return ResumeState{}, errs.Wrap(errs.Invalid, err, "parse resume metadata")
	}

	r := bytes.NewReader(b[end+2:])
	var nCompressed, nUncompressed int32
	if err := binary.Read(r, binary.LittleEndian, &nCompressed); err != nil {
		return ResumeState{}, errs.Wrap(errs.Invalid, err, "read resume arena header")
	}
	if err := binary.Read(r, binary.LittleEndian, &nUncompressed); err != nil {
		return ResumeState{}, errs.Wrap(errs.Invalid, err, "read resume arena header")
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return ResumeState{}, errs.Wrap(errs.IO, err, "read resume arena")
	}
	if int32(len(rest)) < nCompressed {
		return ResumeState{}, errs.New(errs.Invalid, "resume sidecar: truncated arena")
	}

	arena := make([]byte, nUncompressed)
	n, err := lzf.Decompress(rest[:nCompressed], arena)
	if err != nil {
		return ResumeState{}, errs.Wrap(errs.Invalid, err, "decompress resume arena")
	}
	if int32(n) != nUncompressed {
		return ResumeState{}, errs.New(errs.Invalid, "resume sidecar: wrong uncompressed size")
	}

	return ResumeState{Meta: meta, Arena: arena}, nil
}
