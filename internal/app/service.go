// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/autocommit/autocommit/internal/pkg/ai"
	"github.com/autocommit/autocommit/internal/pkg/cache"
	"github.com/autocommit/autocommit/internal/pkg/classify"
	"github.com/autocommit/autocommit/internal/pkg/config"
	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
	"github.com/autocommit/autocommit/internal/pkg/git"
	"github.com/autocommit/autocommit/internal/pkg/history"
	"github.com/autocommit/autocommit/internal/pkg/message"
	"github.com/autocommit/autocommit/internal/pkg/processor"
	"github.com/autocommit/autocommit/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// ErrNoChanges reports a repository with nothing to commit at all. It is
// not a failure: the command layer turns it into a notice and exits zero.
var ErrNoChanges = errors.New("no changes to commit")

// MaxRegenerationAttempts is the maximum number of times a user can regenerate a descriptor.
const MaxRegenerationAttempts = 5

// DefaultAITimeout bounds a single descriptor generation request.
const DefaultAITimeout = 30 * time.Second

// DefaultMaxFiles is the path preview cap used when neither the flag nor
// the config supplies one.
const DefaultMaxFiles = 5

// RunOptions controls a single run of the commit pipeline.
type RunOptions struct {
	// RepoPath is the target repository, "." when unset.
	RepoPath string
	// DryRun classifies and prints without committing.
	DryRun bool
	// OutputFile writes the full commit message to a file (dry-run only).
	OutputFile string
	// NoStage skips the automatic `git add -A`.
	NoStage bool
	// NoVerify passes --no-verify to git commit.
	NoVerify bool
	// MaxFiles caps the path preview in the intro. Must be >= 1.
	MaxFiles int
	// NoAI disables the provider call and uses local rules only.
	NoAI bool
	// AIRequired turns provider failures into fatal errors.
	AIRequired bool
	// AITimeout bounds the provider call, DefaultAITimeout when zero.
	AITimeout time.Duration
	// NoCache bypasses the descriptor cache.
	NoCache bool
	// Overrides are applied verbatim over the generated descriptor.
	Overrides message.Overrides
}

// CommitService orchestrates the descriptor generation and commit workflow.
type CommitService struct {
	gitClient     git.Client
	aiProvider    ai.Provider
	aiSetupErr    error
	classifier    *classify.Classifier
	diffProcessor processor.DiffProcessor
	uiManager     ui.Manager
	historyMgr    history.Manager
	config        *config.Config
	cache         cache.Manager
	breaker       *apperrors.CircuitBreaker
}

// NewCommitService creates a new CommitService with the given dependencies.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	classifier *classify.Classifier,
	diffProcessor processor.DiffProcessor,
	uiManager ui.Manager,
	historyMgr history.Manager,
	cfg *config.Config,
) *CommitService {
	// Initialize cache if enabled
	var cacheManager cache.Manager
	if cfg != nil && cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = cache.DefaultTTL
		}
		maxEntries := cfg.Cache.MaxEntries
		if maxEntries <= 0 {
			maxEntries = cache.DefaultMaxEntries
		}
		cacheManager = cache.NewLRUCache(maxEntries, ttl)
	}

	return &CommitService{
		gitClient:     gitClient,
		aiProvider:    aiProvider,
		classifier:    classifier,
		diffProcessor: diffProcessor,
		uiManager:     uiManager,
		historyMgr:    historyMgr,
		config:        cfg,
		cache:         cacheManager,
		breaker:       apperrors.NewCircuitBreaker(apperrors.DefaultCircuitBreakerConfig()),
	}
}

// SetAISetupError records why no provider is available. The reason surfaces
// in the fallback notice, or in the fatal error under --ai-required.
func (s *CommitService) SetAISetupError(err error) {
	s.aiSetupErr = err
}

// Run executes the full pipeline: repository checks, staging, snapshot,
// descriptor generation, user action handling, and the commit itself.
func (s *CommitService) Run(ctx context.Context, opts *RunOptions) error {
	if opts == nil {
		opts = &RunOptions{}
	}

	if err := s.gitClient.IsInsideWorkTree(ctx); err != nil {
		return err
	}

	hasChanges, err := s.gitClient.HasChanges(ctx)
	if err != nil {
		return err
	}
	if !hasChanges {
		return ErrNoChanges
	}

	if !opts.NoStage {
		spinner := s.uiManager.ShowSpinner("暂存全部变更...")
		spinner.Start()
		err := s.gitClient.StageAll(ctx)
		spinner.Stop()
		if err != nil {
			return err
		}
	}

	changes, err := s.gitClient.StagedChanges(ctx)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return apperrors.NewNoStagedChangesError()
	}

	diff, err := s.gitClient.StagedDiff(ctx)
	if err != nil {
		return err
	}

	set := &git.ChangeSet{Changes: changes, Diff: diff}
	return s.generateAndHandleLoop(ctx, opts, set, repoDisplayName(opts.RepoPath))
}

// generateAndHandleLoop handles the generate → display → action loop with
// regeneration support. With a non-interactive UI manager the loop runs a
// single accept pass.
func (s *CommitService) generateAndHandleLoop(
	ctx context.Context,
	opts *RunOptions,
	set *git.ChangeSet,
	repoName string,
) error {
	regenerationCount := 0
	forceRefresh := false

	for {
		descriptor, source, err := s.generateDescriptor(ctx, opts, set, repoName, forceRefresh)
		if err != nil {
			return err
		}

		if err := s.uiManager.DisplayDescriptor(descriptor, source); err != nil {
			return fmt.Errorf("failed to display descriptor: %w", err)
		}

		s.warnOnDescriptor(descriptor)

		action, err := s.uiManager.PromptAction()
		if err != nil {
			return fmt.Errorf("failed to get user action: %w", err)
		}

		switch action {
		case ui.ActionAccept:
			return s.handleAccept(ctx, opts, descriptor, source, repoName)

		case ui.ActionEdit:
			edited, err := s.uiManager.EditDescriptor(descriptor)
			if err != nil {
				s.uiManager.ShowError(fmt.Errorf("failed to edit descriptor: %w", err))
				continue
			}
			return s.handleAccept(ctx, opts, edited, source, repoName)

		case ui.ActionRegenerate:
			regenerationCount++
			if regenerationCount >= MaxRegenerationAttempts {
				return fmt.Errorf("maximum regeneration attempts (%d) reached", MaxRegenerationAttempts)
			}
			// A regenerate must reach the provider, not the cache.
			forceRefresh = true
			continue

		case ui.ActionCancel:
			s.uiManager.ShowSuccess("已取消，未执行提交。")
			return nil
		}
	}
}

// generateDescriptor produces the final descriptor and its source label.
// Local rules always run first; the provider result replaces them when the
// call succeeds, and overrides beat both.
func (s *CommitService) generateDescriptor(
	ctx context.Context,
	opts *RunOptions,
	set *git.ChangeSet,
	repoName string,
	forceRefresh bool,
) (*message.Descriptor, string, error) {
	d := s.classifier.Classify(set, s.maxFiles(opts))
	source := ai.SourceLocal

	if s.shouldUseAI(opts) {
		refined, refinedSource, err := s.refineWithAI(ctx, opts, set, repoName, forceRefresh)
		if err != nil {
			title := ai.ProviderTitle(s.providerName())
			if opts.AIRequired {
				return nil, "", apperrors.New(apperrors.ErrAIProviderFailed,
					fmt.Sprintf("%s 调用失败且启用了 --ai-required: %v", title, err))
			}
			s.uiManager.ShowNotice(fmt.Sprintf("提示: %s 不可用，已回退本地规则。原因: %v", title, err))
		} else {
			d = *refined
			source = refinedSource
		}
	}

	d = opts.Overrides.Apply(d)

	// The header must always carry a taxonomy type.
	if !message.IsValidCommitType(d.Type) {
		d.Type = "chore"
	}

	return &d, source, nil
}

// shouldUseAI reports whether this run calls the provider at all. Any
// override switches the run to pure local rules, matching --no-ai.
func (s *CommitService) shouldUseAI(opts *RunOptions) bool {
	if opts.NoAI || opts.Overrides.Any() {
		return false
	}
	if s.config != nil && !s.config.Commit.AIEnabled {
		return false
	}
	return true
}

// refineWithAI prepares the prompt view of the snapshot and asks the
// provider for a descriptor, with cache on both sides of the call.
func (s *CommitService) refineWithAI(
	ctx context.Context,
	opts *RunOptions,
	set *git.ChangeSet,
	repoName string,
	forceRefresh bool,
) (*message.Descriptor, string, error) {
	if s.aiProvider == nil {
		if s.aiSetupErr != nil {
			return nil, "", s.aiSetupErr
		}
		return nil, "", fmt.Errorf("AI provider not configured")
	}

	prepared, err := s.diffProcessor.Prepare(ctx, set)
	if err != nil {
		return nil, "", err
	}

	sourceLabel := ai.SourceLabel(s.providerName())

	cacheKey := ""
	if s.cache != nil && !opts.NoCache {
		cacheKey = cache.GenerateCacheKey(prepared.Text, s.aiProvider.Name(), s.modelName(), "")
		if !forceRefresh {
			if entry, ok := s.cache.Get(cacheKey); ok {
				d := entry.Descriptor
				return &d, entry.Source, nil
			}
		}
	}

	req := &ai.GenerateRequest{
		Repo:   repoName,
		Paths:  prepared.Paths,
		Counts: set.Counts(),
		Diff:   prepared.Text,
	}

	spinner := s.uiManager.ShowSpinner("正在生成提交描述...")
	spinner.Start()
	defer spinner.Stop()

	reqCtx, cancel := context.WithTimeout(ctx, s.aiTimeout(opts))
	defer cancel()

	var resp *ai.GenerateResponse
	err = s.breaker.Execute(reqCtx, func(ctx context.Context) error {
		var genErr error
		resp, genErr = s.aiProvider.GenerateDescriptor(ctx, req)
		return genErr
	})
	if err != nil {
		return nil, "", err
	}

	if s.cache != nil && cacheKey != "" {
		s.cache.Set(cacheKey, resp.Descriptor, sourceLabel, 0)
	}

	d := resp.Descriptor
	return &d, sourceLabel, nil
}

// warnOnDescriptor surfaces validation warnings without blocking the commit.
func (s *CommitService) warnOnDescriptor(d *message.Descriptor) {
	if d == nil {
		return
	}
	result := d.ValidateWithWarnings()
	for _, warning := range result.Warnings {
		s.uiManager.ShowNotice(fmt.Sprintf("提示: %s", warning))
	}
}

// handleAccept finishes the run: dry-run output, or the actual commit with
// the success report, plus the history record.
func (s *CommitService) handleAccept(
	ctx context.Context,
	opts *RunOptions,
	d *message.Descriptor,
	source string,
	repoName string,
) error {
	if opts.DryRun {
		if opts.OutputFile != "" {
			if err := s.writeToFile(opts.OutputFile, d.Format()); err != nil {
				return err
			}
		}
		s.recordHistory(repoName, d, source, "", false)
		s.uiManager.ShowSuccess("dry-run: 未执行 git commit。")
		return nil
	}

	spinner := s.uiManager.ShowSpinner("正在提交...")
	spinner.Start()
	err := s.gitClient.Commit(ctx, d.Header(), d.Body(), opts.NoVerify)
	spinner.Stop()
	if err != nil {
		return err
	}

	sha, err := s.gitClient.ShortHead(ctx)
	if err != nil {
		return err
	}

	s.recordHistory(repoName, d, source, sha, true)
	s.uiManager.ShowSuccess(fmt.Sprintf("提交完成: %s", sha))
	return nil
}

// recordHistory saves the run to the history file. Failures only warn,
// the commit itself already happened.
func (s *CommitService) recordHistory(repoName string, d *message.Descriptor, source, sha string, committed bool) {
	if s.historyMgr == nil || s.config == nil || !s.config.History.Enabled {
		return
	}

	entry := history.NewEntry(repoName, *d, source)
	entry.SHA = sha
	entry.Committed = committed

	if err := s.historyMgr.Save(entry); err != nil {
		s.uiManager.ShowNotice(fmt.Sprintf("提示: 历史记录保存失败: %v", err))
	}
}

// writeToFile writes the full commit message to a file.
func (s *CommitService) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filePath, err)
	}

	s.uiManager.ShowSuccess(fmt.Sprintf("已写入 %s", filePath))
	return nil
}

// maxFiles resolves the intro preview cap: flag, then config, then default.
func (s *CommitService) maxFiles(opts *RunOptions) int {
	if opts.MaxFiles >= 1 {
		return opts.MaxFiles
	}
	if s.config != nil && s.config.Commit.MaxFiles >= 1 {
		return s.config.Commit.MaxFiles
	}
	return DefaultMaxFiles
}

// aiTimeout resolves the provider call budget: flag, then config, then default.
func (s *CommitService) aiTimeout(opts *RunOptions) time.Duration {
	if opts.AITimeout > 0 {
		return opts.AITimeout
	}
	if s.config != nil && s.config.Provider.TimeoutSeconds > 0 {
		return time.Duration(s.config.Provider.TimeoutSeconds) * time.Second
	}
	return DefaultAITimeout
}

// providerName returns the configured provider name, falling back to the
// live provider instance.
func (s *CommitService) providerName() string {
	if s.config != nil && s.config.Provider.Name != "" {
		return s.config.Provider.Name
	}
	if s.aiProvider != nil {
		return s.aiProvider.Name()
	}
	return ai.ProviderNameDeepSeek
}

// modelName returns the configured model name.
func (s *CommitService) modelName() string {
	if s.config != nil {
		return s.config.Provider.Model
	}
	return ""
}

// repoDisplayName is the repository name shown to the model and recorded
// in history.
func repoDisplayName(path string) string {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.Base(abs)
}
