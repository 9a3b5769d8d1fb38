package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
)

// setupTestRepo creates a temporary git repository for testing.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "autocommit-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	runGit(t, tmpDir, "init")
	runGit(t, tmpDir, "config", "user.email", "test@example.com")
	runGit(t, tmpDir, "config", "user.name", "Test User")

	return tmpDir
}

// runGit runs a git command in the specified directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, output)
	}
	return string(output)
}

// writeTestFile creates a file with the given content.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestIsInsideWorkTree(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	client := NewClientWithWorkDir(tmpDir)
	if err := client.IsInsideWorkTree(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsInsideWorkTree_NotARepo(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "autocommit-norepo-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	client := NewClientWithWorkDir(tmpDir)
	err = client.IsInsideWorkTree(context.Background())
	if err == nil {
		t.Fatal("expected error outside a work tree")
	}
	if apperrors.GetExitCode(err) != 2 {
		t.Errorf("expected exit code 2, got %d", apperrors.GetExitCode(err))
	}
}

func TestHasChanges(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	client := NewClientWithWorkDir(tmpDir)

	hasChanges, err := client.HasChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasChanges {
		t.Error("expected clean repository to report no changes")
	}

	// An untracked file counts as a change.
	writeTestFile(t, tmpDir, "new.txt", "hello")

	hasChanges, err = client.HasChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasChanges {
		t.Error("expected untracked file to count as a change")
	}
}

func TestStageAll(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	writeTestFile(t, tmpDir, "a.txt", "one")
	writeTestFile(t, tmpDir, "sub/b.txt", "two")
	writeTestFile(t, tmpDir, "README.md", "# Test\n\nupdated")

	client := NewClientWithWorkDir(tmpDir)
	if err := client.StageAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := runGit(t, tmpDir, "status", "--porcelain")
	for _, line := range strings.Split(strings.TrimSpace(status), "\n") {
		if line == "" {
			continue
		}
		// After add -A every entry is staged: no untracked or
		// worktree-only modifications remain.
		if strings.HasPrefix(line, "??") || line[0] == ' ' {
			t.Errorf("unstaged entry after StageAll: %q", line)
		}
	}
}

func TestStagedChanges_Empty(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	client := NewClientWithWorkDir(tmpDir)
	changes, err := client.StagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("expected no staged changes, got %d", len(changes))
	}
}

func TestStagedChanges_Kinds(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "keep.txt", "keep")
	writeTestFile(t, tmpDir, "modify.txt", "before")
	writeTestFile(t, tmpDir, "delete.txt", "gone soon")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	writeTestFile(t, tmpDir, "added.txt", "new")
	writeTestFile(t, tmpDir, "modify.txt", "after")
	if err := os.Remove(filepath.Join(tmpDir, "delete.txt")); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	runGit(t, tmpDir, "add", "-A")

	client := NewClientWithWorkDir(tmpDir)
	changes, err := client.StagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kinds := map[string]ChangeKind{}
	for _, c := range changes {
		kinds[c.Path] = c.Kind
	}

	if kinds["added.txt"] != KindAdded {
		t.Errorf("added.txt: expected KindAdded, got %v", kinds["added.txt"])
	}
	if kinds["modify.txt"] != KindModified {
		t.Errorf("modify.txt: expected KindModified, got %v", kinds["modify.txt"])
	}
	if kinds["delete.txt"] != KindDeleted {
		t.Errorf("delete.txt: expected KindDeleted, got %v", kinds["delete.txt"])
	}
}

func TestStagedChanges_Rename(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "old_name.txt", "stable content for rename detection\nline two\nline three\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	runGit(t, tmpDir, "mv", "old_name.txt", "new_name.txt")

	client := NewClientWithWorkDir(tmpDir)
	changes, err := client.StagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}

	change := changes[0]
	if change.Kind != KindRenamed {
		t.Errorf("expected KindRenamed, got %v", change.Kind)
	}
	if change.OldPath != "old_name.txt" {
		t.Errorf("expected old path 'old_name.txt', got %q", change.OldPath)
	}
	if change.Path != "new_name.txt" {
		t.Errorf("expected path 'new_name.txt', got %q", change.Path)
	}
}

func TestStagedChanges_FirstCommit(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	// No HEAD yet: the index is diffed against the empty tree.
	writeTestFile(t, tmpDir, "first.txt", "hello")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	changes, err := client.StagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Kind != KindAdded {
		t.Errorf("expected KindAdded, got %v", changes[0].Kind)
	}
}

func TestStagedDiff(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "main.go", "package main\n\nfunc main() {}\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	writeTestFile(t, tmpDir, "main.go", "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.StagedDiff(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(diff, "diff --git a/main.go b/main.go") {
		t.Errorf("diff header missing: %q", diff)
	}
	if !strings.Contains(diff, "+import \"fmt\"") {
		t.Errorf("added line missing from diff: %q", diff)
	}
}

func TestStagedDiff_EmptyIndex(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.StagedDiff(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(diff) != "" {
		t.Errorf("expected empty diff, got %q", diff)
	}
}

func TestCommit(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	writeTestFile(t, tmpDir, "README.md", "# Test\n\nUpdated")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	header := "docs(repo): 更新说明文档"
	body := "类型: docs\n作用域: repo\n主题: 更新说明文档\n简介: 本次修改 1 个文件。"
	if err := client.Commit(context.Background(), header, body, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Header and body land as separate paragraphs.
	logOutput := runGit(t, tmpDir, "log", "-1", "--format=%B")
	if !strings.Contains(logOutput, header) {
		t.Errorf("header not found in commit message: %s", logOutput)
	}
	if !strings.Contains(logOutput, "作用域: repo") {
		t.Errorf("body not found in commit message: %s", logOutput)
	}
}

func TestCommit_HookRejection(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	hookPath := filepath.Join(tmpDir, ".git", "hooks", "pre-commit")
	hook := "#!/bin/sh\necho 'hook rejected'\nexit 1\n"
	if err := os.WriteFile(hookPath, []byte(hook), 0755); err != nil {
		t.Fatalf("failed to write hook: %v", err)
	}

	writeTestFile(t, tmpDir, "README.md", "# Test\n\nBlocked")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	err := client.Commit(context.Background(), "chore(repo): blocked", "body", false)
	if err == nil {
		t.Fatal("expected commit to be rejected by hook")
	}
	// The hook output must survive into the error verbatim.
	if !strings.Contains(err.Error(), "hook rejected") {
		t.Errorf("hook output missing from error: %v", err)
	}
	if apperrors.GetExitCode(err) != 2 {
		t.Errorf("expected exit code 2, got %d", apperrors.GetExitCode(err))
	}

	// --no-verify bypasses the hook.
	if err := client.Commit(context.Background(), "chore(repo): bypassed", "body", true); err != nil {
		t.Fatalf("unexpected error with --no-verify: %v", err)
	}
}

func TestShortHead(t *testing.T) {
	tmpDir := setupTestRepo(t)
	defer os.RemoveAll(tmpDir)

	writeTestFile(t, tmpDir, "README.md", "# Test")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	client := NewClientWithWorkDir(tmpDir)
	sha, err := client.ShortHead(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sha) < 4 {
		t.Errorf("expected abbreviated hash, got %q", sha)
	}
	if strings.ContainsAny(sha, " \n\t") {
		t.Errorf("hash contains whitespace: %q", sha)
	}
}

func TestParseNameStatus(t *testing.T) {
	raw := "A\tadded.go\n" +
		"M\tchanged.go\n" +
		"D\tremoved.txt\n" +
		"R100\told/name.go\tnew/name.go\n" +
		"C75\tsrc/base.go\tsrc/copy.go\n" +
		"T\ttypechange.bin\n" +
		"\n"

	changes := ParseNameStatus(raw)
	if len(changes) != 6 {
		t.Fatalf("expected 6 changes, got %d", len(changes))
	}

	expected := []Change{
		{Kind: KindAdded, Path: "added.go"},
		{Kind: KindModified, Path: "changed.go"},
		{Kind: KindDeleted, Path: "removed.txt"},
		{Kind: KindRenamed, Path: "new/name.go", OldPath: "old/name.go"},
		{Kind: KindCopied, Path: "src/copy.go", OldPath: "src/base.go"},
		// Unknown letters degrade to modifications.
		{Kind: KindModified, Path: "typechange.bin"},
	}

	for i, want := range expected {
		got := changes[i]
		if got.Kind != want.Kind || got.Path != want.Path || got.OldPath != want.OldPath {
			t.Errorf("change %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestParseNameStatus_Empty(t *testing.T) {
	if changes := ParseNameStatus(""); len(changes) != 0 {
		t.Errorf("expected no changes for empty input, got %d", len(changes))
	}
	if changes := ParseNameStatus("\n\n"); len(changes) != 0 {
		t.Errorf("expected no changes for blank input, got %d", len(changes))
	}
}

func TestCountChanges(t *testing.T) {
	changes := []Change{
		{Kind: KindAdded, Path: "a.go"},
		{Kind: KindAdded, Path: "b.go"},
		{Kind: KindCopied, Path: "c.go", OldPath: "a.go"},
		{Kind: KindModified, Path: "d.go"},
		{Kind: KindDeleted, Path: "e.go"},
		{Kind: KindRenamed, Path: "f.go", OldPath: "old.go"},
	}

	counts := CountChanges(changes)
	if counts.Added != 3 {
		t.Errorf("expected 3 added (copies count as additions), got %d", counts.Added)
	}
	if counts.Modified != 1 {
		t.Errorf("expected 1 modified, got %d", counts.Modified)
	}
	if counts.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", counts.Deleted)
	}
	if counts.Renamed != 1 {
		t.Errorf("expected 1 renamed, got %d", counts.Renamed)
	}
	if counts.Total() != 6 {
		t.Errorf("expected total 6, got %d", counts.Total())
	}
}

func TestChangeSet(t *testing.T) {
	set := &ChangeSet{
		Changes: []Change{
			{Kind: KindAdded, Path: "cmd/main.go"},
			{Kind: KindModified, Path: "internal/app/service.go"},
		},
		Diff: "diff --git a/cmd/main.go b/cmd/main.go\n",
	}

	paths := set.Paths()
	if len(paths) != 2 || paths[0] != "cmd/main.go" || paths[1] != "internal/app/service.go" {
		t.Errorf("unexpected paths: %v", paths)
	}
	if set.IsEmpty() {
		t.Error("expected non-empty set")
	}
	if (&ChangeSet{}).IsEmpty() != true {
		t.Error("expected empty set to report empty")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"src/main.go", "src/main.go"},
		{"src\\win\\path.go", "src/win/path.go"},
		{"  padded.txt  ", "padded.txt"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.input); got != tt.expected {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
