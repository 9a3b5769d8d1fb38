// Package toolcheck verifies that the external commands autocommit depends
// on are available before any work starts.
package toolcheck

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// GitTool is the binary every autocommit run requires.
const GitTool = "git"

// probeTimeout caps the version probe of a located binary.
const probeTimeout = 3 * time.Second

// Result describes a located tool.
type Result struct {
	// Path is the absolute path of the resolved binary.
	Path string
	// Version is the reported version, empty when the probe failed.
	Version string
}

// Checker locates required external tools.
type Checker interface {
	// Lookup resolves the named tool on PATH and probes its version.
	// The error is exec.ErrNotFound (wrapped) when the binary is absent.
	Lookup(ctx context.Context, tool string) (*Result, error)
}

// DefaultChecker implements Checker using the process environment.
type DefaultChecker struct{}

// NewChecker creates a checker for the current environment.
func NewChecker() *DefaultChecker {
	return &DefaultChecker{}
}

// Lookup resolves tool via PATH.
func (c *DefaultChecker) Lookup(ctx context.Context, tool string) (*Result, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path}
	res.Version = probeVersion(ctx, path)
	return res, nil
}

// probeVersion runs "<tool> --version" and extracts the version token.
// A failed probe is not fatal, the binary may still work.
func probeVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return ""
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the version number from output in the style of
// "git version 2.43.0". Returns the first numeric token, or the whole
// first line when none is found.
func ParseVersion(out string) string {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	for _, field := range strings.Fields(line) {
		if field[0] >= '0' && field[0] <= '9' {
			return field
		}
	}
	return line
}
