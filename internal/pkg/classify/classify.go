// Package classify derives a commit descriptor from staged changes using
// heuristic rules over file paths and diff content. The rules are plain data
// on the Rules struct, so callers can swap pattern sets without touching the
// inference logic. Classification never fails; every input yields a complete
// descriptor with best-effort defaults.
package classify

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/autocommit/autocommit/internal/pkg/git"
	"github.com/autocommit/autocommit/internal/pkg/message"
)

// RevertMarker is the phrase git writes into revert commit diffs.
const RevertMarker = "this reverts commit"

// Rules holds every pattern set and template the classifier consults.
// Exact-match sets are keyed by lowercase values.
type Rules struct {
	DocExtensions        map[string]bool
	DocBasenames         map[string]bool
	StyleExtensions      map[string]bool
	StyleConfigBasenames map[string]bool
	BuildBasenames       map[string]bool
	BuildFilePrefixes    []string
	CIPathPrefixes       []string
	CIBasenames          map[string]bool
	RootScopeBasenames   map[string]bool
	TestDirectories      map[string]bool
	TestFilePrefixes     []string
	TestFileSuffixes     []string
	PerfPathHints        []string

	FixKeywords      []string
	RefactorKeywords []string
	PerfKeywords     []string

	// Theme templates. All but ThemeRevert take the scope as the only verb.
	ThemeRevert     string
	ThemeAddOnly    string
	ThemeDeleteOnly string
	ThemeRenameOnly string
	ThemeModifyOnly string
	ThemeMixed      string
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		DocExtensions: map[string]bool{
			".md": true, ".rst": true, ".adoc": true, ".txt": true,
		},
		DocBasenames: map[string]bool{
			"readme.md": true, "changelog.md": true, "license": true, "license.md": true,
		},
		StyleExtensions: map[string]bool{
			".css": true, ".scss": true, ".sass": true, ".less": true, ".styl": true,
		},
		StyleConfigBasenames: map[string]bool{
			".editorconfig": true, ".prettierrc": true, ".stylelintrc": true,
			".eslintrc": true, ".eslintrc.js": true, ".eslintrc.cjs": true, ".eslintrc.json": true,
		},
		BuildBasenames: map[string]bool{
			"makefile": true, "dockerfile": true,
			"docker-compose.yml": true, "docker-compose.yaml": true,
			"package.json": true, "pnpm-lock.yaml": true, "yarn.lock": true, "package-lock.json": true,
			"pom.xml": true, "build.gradle": true, "build.gradle.kts": true, "gradle.properties": true,
			"pyproject.toml": true, "requirements.txt": true,
		},
		BuildFilePrefixes: []string{"vite.config", "webpack.config", "rollup.config"},
		CIPathPrefixes: []string{
			".github/workflows/", ".gitlab-ci.yml", ".circleci/",
			"azure-pipelines.yml", "azure-pipelines.yaml", "jenkinsfile",
		},
		CIBasenames: map[string]bool{
			"jenkinsfile": true, ".gitlab-ci.yml": true,
		},
		RootScopeBasenames: map[string]bool{
			".gitignore": true, ".gitattributes": true, ".npmrc": true, ".nvmrc": true,
			"readme.md": true, "license": true, "license.md": true,
		},
		TestDirectories: map[string]bool{
			"test": true, "tests": true, "testing": true,
			"__tests__": true, "spec": true, "specs": true, "e2e": true,
		},
		TestFilePrefixes: []string{"test_"},
		TestFileSuffixes: []string{
			"_test.go", "_test.py", ".spec.ts", ".spec.tsx", ".spec.js", ".spec.jsx",
		},
		PerfPathHints: []string{"perf", "benchmark"},

		FixKeywords: []string{
			"fix", "bug", "hotfix", "crash", "error", "exception", "null", "patch",
			"修复", "错误", "异常",
		},
		RefactorKeywords: []string{
			"refactor", "cleanup", "restructure", "rename", "重构", "整理",
		},
		PerfKeywords: []string{
			"perf", "performance", "optimiz", "benchmark", "性能", "优化",
		},

		ThemeRevert:     "回滚上一轮改动",
		ThemeAddOnly:    "新增%s相关内容",
		ThemeDeleteOnly: "移除%s冗余内容",
		ThemeRenameOnly: "整理%s文件结构",
		ThemeModifyOnly: "完善%s相关实现",
		ThemeMixed:      "同步%s相关改动",
	}
}

// Classifier applies a rule set to change snapshots.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier with the given rules.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefaultClassifier creates a classifier with DefaultRules.
func NewDefaultClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// Rules returns the classifier's rule set.
func (c *Classifier) Rules() Rules {
	return c.rules
}

// Classify derives a complete descriptor from the snapshot. maxFiles caps the
// number of paths listed in the intro preview.
func (c *Classifier) Classify(set *git.ChangeSet, maxFiles int) message.Descriptor {
	paths := set.Paths()
	counts := set.Counts()

	commitType := c.rules.InferType(paths, set.Diff, counts)
	scope := c.rules.InferScope(paths, commitType)
	return message.Descriptor{
		Type:  commitType,
		Scope: scope,
		Theme: c.rules.InferTheme(scope, counts, commitType),
		Intro: c.rules.InferIntro(scope, counts, paths, maxFiles),
	}
}

// IsDocs reports whether the path looks like documentation.
func (r Rules) IsDocs(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	if r.DocExtensions[path.Ext(lowered)] || r.DocBasenames[path.Base(lowered)] {
		return true
	}
	for _, part := range splitPath(lowered) {
		if part == "docs" || part == "doc" || part == "documentation" {
			return true
		}
	}
	return false
}

// IsTest reports whether the path looks like test code.
func (r Rules) IsTest(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	for _, part := range splitPath(lowered) {
		if r.TestDirectories[part] {
			return true
		}
	}
	base := path.Base(lowered)
	for _, prefix := range r.TestFilePrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	for _, suffix := range r.TestFileSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IsCI reports whether the path belongs to CI configuration.
func (r Rules) IsCI(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	for _, prefix := range r.CIPathPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return r.CIBasenames[path.Base(lowered)]
}

// IsBuild reports whether the path belongs to build tooling.
func (r Rules) IsBuild(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	base := path.Base(lowered)
	if r.BuildBasenames[base] {
		return true
	}
	for _, part := range splitPath(lowered) {
		if part == "build" {
			return true
		}
	}
	for _, prefix := range r.BuildFilePrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

// IsStyle reports whether the path is stylesheet or formatter configuration.
func (r Rules) IsStyle(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	return r.StyleExtensions[path.Ext(lowered)] || r.StyleConfigBasenames[path.Base(lowered)]
}

// IsPerfPath reports whether the path itself hints at performance work.
func (r Rules) IsPerfPath(p string) bool {
	lowered := strings.ToLower(git.NormalizePath(p))
	for _, hint := range r.PerfPathHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}

// InferType picks the commit type. Whole-change-set path categories win over
// keyword signals; additions push the fallback from chore to feat.
func (r Rules) InferType(paths []string, diff string, counts git.ChangeCounts) string {
	if len(paths) == 0 {
		return "chore"
	}

	if strings.Contains(strings.ToLower(diff), RevertMarker) {
		return "revert"
	}

	if allPaths(paths, r.IsDocs) {
		return "docs"
	}
	if allPaths(paths, r.IsTest) {
		return "test"
	}
	if allPaths(paths, r.IsCI) {
		return "ci"
	}
	if allPaths(paths, r.IsBuild) {
		return "build"
	}
	if allPaths(paths, r.IsStyle) {
		return "style"
	}

	joined := strings.ToLower(strings.Join(paths, " "))
	signal := joined + "\n" + ExtractContentSignal(diff)

	if anyPath(paths, r.IsPerfPath) || hasKeyword(signal, r.PerfKeywords) {
		return "perf"
	}
	if hasKeyword(signal, r.FixKeywords) {
		return "fix"
	}
	if hasKeyword(signal, r.RefactorKeywords) {
		return "refactor"
	}

	if counts.Added > 0 {
		return "feat"
	}
	return "chore"
}

// InferScope picks the scope: fixed scopes for ci/docs/build, otherwise the
// dominant top-level directory, "multi" for heterogeneous sets and "repo" for
// root-level changes.
func (r Rules) InferScope(paths []string, commitType string) string {
	if len(paths) == 0 {
		return message.DefaultScope
	}

	switch commitType {
	case "ci":
		return "ci"
	case "docs":
		return "docs"
	case "build":
		return "build"
	}

	rootLike := 0
	var tops []string
	for _, p := range paths {
		normalized := git.NormalizePath(p)
		parts := splitPath(normalized)
		if len(parts) <= 1 || r.RootScopeBasenames[strings.ToLower(path.Base(normalized))] {
			rootLike++
			continue
		}
		top := parts[0]
		if strings.HasPrefix(top, ".") && len(parts) > 1 {
			if trimmed := strings.TrimLeft(top, "."); trimmed != "" {
				top = trimmed
			}
		}
		tops = append(tops, top)
	}

	unique := uniqueSorted(tops)
	switch {
	case len(unique) == 1:
		return message.SanitizeScope(unique[0])
	case len(unique) > 1:
		return "multi"
	case rootLike > 0:
		return message.DefaultScope
	default:
		return message.DefaultScope
	}
}

// InferTheme picks the Chinese theme line from the change-kind mix.
func (r Rules) InferTheme(scope string, counts git.ChangeCounts, commitType string) string {
	if commitType == "revert" {
		return r.ThemeRevert
	}
	switch {
	case counts.Added > 0 && counts.Modified == 0 && counts.Deleted == 0 && counts.Renamed == 0:
		return fmt.Sprintf(r.ThemeAddOnly, scope)
	case counts.Deleted > 0 && counts.Added == 0 && counts.Modified == 0:
		return fmt.Sprintf(r.ThemeDeleteOnly, scope)
	case counts.Renamed > 0 && counts.Added == 0:
		return fmt.Sprintf(r.ThemeRenameOnly, scope)
	case counts.Modified > 0 && counts.Added == 0:
		return fmt.Sprintf(r.ThemeModifyOnly, scope)
	default:
		return fmt.Sprintf(r.ThemeMixed, scope)
	}
}

// InferIntro builds the Chinese intro sentence: change counts, the dominant
// scope, and a path preview capped at maxFiles entries.
func (r Rules) InferIntro(scope string, counts git.ChangeCounts, paths []string, maxFiles int) string {
	total := len(paths)
	preview := paths
	suffix := ""
	if maxFiles > 0 && total > maxFiles {
		preview = paths[:maxFiles]
		suffix = fmt.Sprintf(" 等%d个文件", total)
	}
	return fmt.Sprintf(
		"对%d个文件进行了变更（新增%d、修改%d、删除%d、重命名%d），主要集中在%s范围，涉及%s%s。",
		total, counts.Added, counts.Modified, counts.Deleted, counts.Renamed,
		scope, strings.Join(preview, "，"), suffix,
	)
}

// ExtractContentSignal reduces a unified diff to its changed lines: header
// lines are dropped, the +/- markers stripped, and the result lowercased for
// keyword matching.
func ExtractContentSignal(diff string) string {
	var content []string
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "@@ ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			content = append(content, line[1:])
		}
	}
	return strings.ToLower(strings.Join(content, "\n"))
}

// splitPath splits a normalized path into its non-empty segments.
func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// hasKeyword reports whether any keyword occurs in the lowercased text.
func hasKeyword(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// allPaths reports whether pred holds for every path.
func allPaths(paths []string, pred func(string) bool) bool {
	for _, p := range paths {
		if !pred(p) {
			return false
		}
	}
	return true
}

// anyPath reports whether pred holds for at least one path.
func anyPath(paths []string, pred func(string) bool) bool {
	for _, p := range paths {
		if pred(p) {
			return true
		}
	}
	return false
}

// uniqueSorted returns the sorted distinct values.
func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	sort.Strings(unique)
	return unique
}
