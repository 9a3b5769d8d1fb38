// Package processor prepares staged diffs for AI prompts: lock-file noise is
// filtered out and the remaining text is capped so prompts stay within the
// provider payload budget.
package processor

import (
	"context"
	"regexp"
	"strings"

	"github.com/autocommit/autocommit/internal/pkg/git"
)

// Default limits for prompt preparation.
const (
	DefaultMaxPromptBytes = 12000 // diff slice sent to the provider
	DefaultMaxPromptPaths = 30    // changed-file preview sent to the provider
)

// PreparedDiff contains the prompt-ready view of a change snapshot.
type PreparedDiff struct {
	Text             string   // filtered diff text, capped at MaxPromptBytes
	Paths            []string // changed paths, capped at MaxPromptPaths
	TotalSize        int      // filtered diff size before capping
	Truncated        bool     // whether Text was cut at the byte limit
	SkippedLockFiles []string // lock files whose diff content was dropped
}

// DiffProcessor defines the interface for prompt preparation.
type DiffProcessor interface {
	Prepare(ctx context.Context, set *git.ChangeSet) (*PreparedDiff, error)
}

// ProcessorConfig holds configuration for the diff processor.
type ProcessorConfig struct {
	MaxPromptBytes int // Maximum diff bytes included in the prompt
	MaxPromptPaths int // Maximum changed paths listed in the prompt
}

// DefaultProcessor implements the DiffProcessor interface.
type DefaultProcessor struct {
	config ProcessorConfig
}

// NewProcessor creates a new DefaultProcessor with default configuration.
func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{
		config: ProcessorConfig{
			MaxPromptBytes: DefaultMaxPromptBytes,
			MaxPromptPaths: DefaultMaxPromptPaths,
		},
	}
}

// NewProcessorWithConfig creates a new DefaultProcessor with custom configuration.
func NewProcessorWithConfig(config ProcessorConfig) *DefaultProcessor {
	// Apply defaults for zero values
	if config.MaxPromptBytes <= 0 {
		config.MaxPromptBytes = DefaultMaxPromptBytes
	}
	if config.MaxPromptPaths <= 0 {
		config.MaxPromptPaths = DefaultMaxPromptPaths
	}
	return &DefaultProcessor{config: config}
}

// Prepare filters and caps the snapshot's diff for use in an AI prompt.
func (p *DefaultProcessor) Prepare(ctx context.Context, set *git.ChangeSet) (*PreparedDiff, error) {
	segments := splitByFileDiff(set.Diff)

	var kept []string
	var skipped []string
	for _, segment := range segments {
		filePath := segmentPath(segment)
		if filePath != "" && isLockFile(filePath) {
			skipped = append(skipped, filePath)
			continue
		}
		kept = append(kept, segment)
	}

	text := strings.Join(kept, "")
	totalSize := len(text)
	truncated := false
	if totalSize > p.config.MaxPromptBytes {
		text = truncateUTF8(text, p.config.MaxPromptBytes)
		truncated = true
	}

	paths := set.Paths()
	if len(paths) > p.config.MaxPromptPaths {
		paths = paths[:p.config.MaxPromptPaths]
	}

	return &PreparedDiff{
		Text:             text,
		Paths:            paths,
		TotalSize:        totalSize,
		Truncated:        truncated,
		SkippedLockFiles: skipped,
	}, nil
}

// lockFilePatterns contains lock files whose diff content is pure noise for
// a commit description.
var lockFilePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"Gemfile.lock",
	"composer.lock",
	"poetry.lock",
	"Pipfile.lock",
}

// isLockFile checks if a file path matches any lock file pattern.
func isLockFile(filePath string) bool {
	baseName := filePath
	if idx := strings.LastIndex(filePath, "/"); idx >= 0 {
		baseName = filePath[idx+1:]
	}
	for _, pattern := range lockFilePatterns {
		if baseName == pattern {
			return true
		}
	}
	// Also check for generic .lock extension
	return strings.HasSuffix(baseName, ".lock")
}

// splitByFileDiff splits diff output at file boundaries, keeping the
// "diff --git" delimiter with each segment.
func splitByFileDiff(diffStr string) []string {
	parts := strings.Split(diffStr, "diff --git ")
	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 0 {
			part = "diff --git " + part
		}
		result = append(result, part)
	}
	return result
}

// segmentPath extracts the (new) file path from a per-file diff segment.
// Rename segments report the "rename to" path.
func segmentPath(segment string) string {
	for _, line := range strings.Split(segment, "\n") {
		if strings.HasPrefix(line, "rename to ") {
			return strings.TrimPrefix(line, "rename to ")
		}
	}
	firstLine, _, _ := strings.Cut(segment, "\n")
	return extractFilePath(firstLine)
}

// diffHeaderRegex matches the quoted-path variant of a diff header.
var diffHeaderRegex = regexp.MustCompile(`^diff --git "?a/(.+?)"? "?b/(.+?)"?$`)

// extractFilePath extracts the new-side path from a diff header line.
// Format: "diff --git a/path/to/file b/path/to/file"
func extractFilePath(line string) string {
	if matches := diffHeaderRegex.FindStringSubmatch(line); matches != nil {
		return matches[2]
	}

	line = strings.TrimPrefix(line, "diff --git ")
	parts := strings.Split(line, " b/")
	if len(parts) >= 2 {
		return parts[len(parts)-1]
	}
	return ""
}

// truncateUTF8 cuts s at limit bytes without splitting a multi-byte rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
