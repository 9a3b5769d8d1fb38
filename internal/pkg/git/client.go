// Package git provides the git operations behind autocommit: staging,
// staged-change inspection, and committing.
package git

import (
	"context"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for git commands.
	GitCommandTimeout = 10 * time.Second

	// CommitTimeout allows extra room for commit hooks.
	CommitTimeout = 30 * time.Second
)

// ChangeKind represents the kind of a staged change, derived from
// git name-status letters.
type ChangeKind int

const (
	KindAdded ChangeKind = iota
	KindModified
	KindDeleted
	KindRenamed
	KindCopied
)

// String returns the string representation of ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindModified:
		return "modified"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// Change is a single staged change from git diff --cached --name-status.
type Change struct {
	Kind    ChangeKind
	Path    string
	OldPath string // For renames and copies, the original path
}

// ChangeCounts aggregates staged changes by kind. Copies count as additions.
type ChangeCounts struct {
	Added    int
	Modified int
	Deleted  int
	Renamed  int
}

// Total returns the total number of counted changes.
func (c ChangeCounts) Total() int {
	return c.Added + c.Modified + c.Deleted + c.Renamed
}

// CountChanges aggregates a change list into ChangeCounts.
func CountChanges(changes []Change) ChangeCounts {
	var counts ChangeCounts
	for _, change := range changes {
		switch change.Kind {
		case KindAdded, KindCopied:
			counts.Added++
		case KindDeleted:
			counts.Deleted++
		case KindRenamed:
			counts.Renamed++
		default:
			counts.Modified++
		}
	}
	return counts
}

// ChangeSet is the read-only snapshot of the staged state: the parsed change
// list plus the raw diff text. It is taken once per run and never refreshed.
type ChangeSet struct {
	Changes []Change
	Diff    string
}

// Paths returns the (new) path of every change, in git output order.
func (s *ChangeSet) Paths() []string {
	paths := make([]string, 0, len(s.Changes))
	for _, change := range s.Changes {
		paths = append(paths, change.Path)
	}
	return paths
}

// Counts returns the aggregated change counts.
func (s *ChangeSet) Counts() ChangeCounts {
	return CountChanges(s.Changes)
}

// IsEmpty reports whether the snapshot contains no changes.
func (s *ChangeSet) IsEmpty() bool {
	return len(s.Changes) == 0
}

// Client defines the interface for git operations.
type Client interface {
	IsInsideWorkTree(ctx context.Context) error
	HasChanges(ctx context.Context) (bool, error)
	StageAll(ctx context.Context) error
	StagedChanges(ctx context.Context) ([]Change, error)
	StagedDiff(ctx context.Context) (string, error)
	Commit(ctx context.Context, header, body string, noVerify bool) error
	ShortHead(ctx context.Context) (string, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// IsInsideWorkTree verifies the working directory belongs to a git work tree.
func (c *DefaultClient) IsInsideWorkTree(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"rev-parse", "--is-inside-work-tree"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	err := cmd.Run()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError(ctx.Err())
		}
		path := c.workDir
		if path == "" {
			path = "."
		}
		return apperrors.NewNotARepositoryError(path)
	}
	return nil
}

// HasChanges reports whether the repository has any pending changes at all:
// staged, unstaged, or untracked.
func (c *DefaultClient) HasChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"status", "--porcelain"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.Output()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return false, apperrors.NewTimeoutError(ctx.Err())
		}
		return false, wrapGitError(args, err)
	}

	return len(strings.TrimSpace(string(output))) > 0, nil
}

// StageAll stages all changes, including deletions and untracked files.
func (c *DefaultClient) StageAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"add", "-A"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError(ctx.Err())
		}
		return apperrors.NewGitError(args, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// StagedChanges lists staged changes with rename detection.
func (c *DefaultClient) StagedChanges(ctx context.Context) ([]Change, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"diff", "--cached", "--name-status", "-M"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.Output()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeoutError(ctx.Err())
		}
		return nil, wrapGitError(args, err)
	}

	return ParseNameStatus(string(output)), nil
}

// StagedDiff returns the staged diff with minimal context and no color codes.
func (c *DefaultClient) StagedDiff(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"diff", "--cached", "--unified=1", "--no-color"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.Output()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewTimeoutError(ctx.Err())
		}
		return "", wrapGitError(args, err)
	}

	return string(output), nil
}

// Commit creates a commit with separate header and body paragraphs.
// Hook failures surface with git's own output preserved.
func (c *DefaultClient) Commit(ctx context.Context, header, body string, noVerify bool) error {
	ctx, cancel := context.WithTimeout(ctx, CommitTimeout)
	defer cancel()

	args := []string{"commit"}
	if noVerify {
		args = append(args, "--no-verify")
	}
	args = append(args, "-m", header, "-m", body)

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	apperrors.LogGitCommand(args[:1], time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError(ctx.Err())
		}
		return apperrors.NewGitError(args[:1], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ShortHead returns the abbreviated hash of HEAD.
func (c *DefaultClient) ShortHead(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	args := []string{"rev-parse", "--short", "HEAD"}
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.Output()
	apperrors.LogGitCommand(args, time.Since(start), exitCode(err))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewTimeoutError(ctx.Err())
		}
		return "", wrapGitError(args, err)
	}

	return strings.TrimSpace(string(output)), nil
}

// ParseNameStatus parses git name-status output into changes. Rename and copy
// lines carry both paths; unrecognized status letters are treated as
// modifications so unusual entries still count toward the descriptor.
func ParseNameStatus(raw string) []Change {
	var changes []Change
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		status := strings.TrimSpace(parts[0])
		if status == "" {
			continue
		}

		kind := parseStatusLetter(status[0])
		if (kind == KindRenamed || kind == KindCopied) && len(parts) >= 3 {
			changes = append(changes, Change{
				Kind:    kind,
				OldPath: NormalizePath(parts[1]),
				Path:    NormalizePath(parts[2]),
			})
			continue
		}
		if len(parts) >= 2 {
			changes = append(changes, Change{
				Kind: kind,
				Path: NormalizePath(parts[1]),
			})
		}
	}
	return changes
}

// parseStatusLetter maps a name-status letter to a ChangeKind.
func parseStatusLetter(letter byte) ChangeKind {
	switch letter {
	case 'A':
		return KindAdded
	case 'D':
		return KindDeleted
	case 'R':
		return KindRenamed
	case 'C':
		return KindCopied
	case 'M':
		return KindModified
	default:
		return KindModified
	}
}

// NormalizePath converts backslashes to forward slashes and trims whitespace,
// so path heuristics behave identically across platforms.
func NormalizePath(path string) string {
	return strings.TrimSpace(strings.ReplaceAll(path, "\\", "/"))
}

// wrapGitError converts an exec error into an AppError, surfacing whatever
// stderr git produced.
func wrapGitError(args []string, err error) *apperrors.AppError {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return apperrors.NewGitError(args, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return apperrors.NewGitError(args, err, "")
}

// exitCode extracts the process exit code for logging, -1 when unknown.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
