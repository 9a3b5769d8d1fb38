// Package cmd contains the CLI command definitions for autocommit.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autocommit/autocommit/internal/app"
	"github.com/autocommit/autocommit/internal/pkg/ai"
	"github.com/autocommit/autocommit/internal/pkg/classify"
	"github.com/autocommit/autocommit/internal/pkg/config"
	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
	"github.com/autocommit/autocommit/internal/pkg/git"
	"github.com/autocommit/autocommit/internal/pkg/history"
	"github.com/autocommit/autocommit/internal/pkg/message"
	"github.com/autocommit/autocommit/internal/pkg/processor"
	"github.com/autocommit/autocommit/internal/pkg/security"
	"github.com/autocommit/autocommit/internal/pkg/toolcheck"
	"github.com/autocommit/autocommit/internal/pkg/ui"
)

// CommitFlags holds the flags shared by the root, commit and generate commands.
type CommitFlags struct {
	RepoPath    string
	DryRun      bool
	OutputFile  string
	NoStage     bool
	NoVerify    bool
	Type        string
	Scope       string
	Theme       string
	Intro       string
	MaxFiles    int
	NoAI        bool
	AIRequired  bool
	AITimeout   time.Duration
	Interactive bool
	NoCache     bool
}

// NewCommitCmd creates the commit command.
func NewCommitCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "分析已暂存变更，生成中文描述并执行 git commit",
		Long: `分析 git diff，生成 Conventional Commits 格式的中文提交描述并执行 commit。

工具先用 git add -A 暂存全部变更（可用 --no-stage 跳过），再读取已暂存的
diff，按本地规则推断 类型/作用域/主题/简介 四要素。配置了 AI 提供方时会请求
模型润色，失败则自动回退本地规则。

示例:
  autocommit commit                 # 暂存、生成并提交
  autocommit commit --dry-run       # 只打印描述，不提交
  autocommit commit --type fix      # 手动指定类型，跳过 AI
  autocommit commit -i              # 提交前交互确认/编辑`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	addGenerationFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "只生成描述，不执行 commit")
	cmd.Flags().BoolVar(&flags.NoVerify, "no-verify", false, "提交时添加 --no-verify")

	return cmd
}

// addGenerationFlags registers the flags every descriptor generating
// command takes.
func addGenerationFlags(cmd *cobra.Command, flags *CommitFlags) {
	cmd.Flags().StringVar(&flags.RepoPath, "repo", ".", "目标仓库路径，默认为当前目录")
	cmd.Flags().BoolVar(&flags.NoStage, "no-stage", false, "不自动执行 git add -A")
	cmd.Flags().StringVar(&flags.Type, "type", "", "手动指定提交类型")
	cmd.Flags().StringVar(&flags.Scope, "scope", "", "手动指定作用域")
	cmd.Flags().StringVar(&flags.Theme, "theme", "", "手动指定主题")
	cmd.Flags().StringVar(&flags.Intro, "intro", "", "手动指定简介")
	cmd.Flags().IntVar(&flags.MaxFiles, "max-files", app.DefaultMaxFiles, "简介中展示的最多文件数")
	cmd.Flags().BoolVar(&flags.NoAI, "no-ai", false, "禁用 AI 提供方，仅用本地规则")
	cmd.Flags().BoolVar(&flags.AIRequired, "ai-required", false, "强制要求 AI 成功，否则退出")
	cmd.Flags().DurationVar(&flags.AITimeout, "ai-timeout", app.DefaultAITimeout, "AI 请求超时时间")
	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "提交前交互确认/编辑")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "跳过描述缓存")
}

// runCommit wires the dependencies and executes the commit pipeline.
func runCommit(cmd *cobra.Command, flags *CommitFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Global flags
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	providerOverride, _ := cmd.Flags().GetString("provider")
	modelOverride, _ := cmd.Flags().GetString("model")

	apperrors.SetVerbose(verbose)

	// Usage validation happens before any side effect.
	if flags.MaxFiles < 1 {
		return apperrors.NewInvalidArgumentsError("--max-files 需要 >= 1")
	}

	overrides := message.Overrides{
		Type:  flags.Type,
		Scope: flags.Scope,
		Theme: flags.Theme,
		Intro: flags.Intro,
	}
	if err := overrides.Validate(); err != nil {
		return apperrors.NewInvalidCommitTypeError(flags.Type, message.ValidCommitTypes)
	}

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	// One-time git binary check. The result is recorded in the config so
	// later runs skip the probe.
	if !cfgMgr.IsToolCheckDone() {
		checker := toolcheck.NewChecker()
		result, err := checker.Lookup(ctx, toolcheck.GitTool)
		if err != nil {
			return apperrors.NewGitNotFoundError(
				toolcheck.FormatInstructions(toolcheck.GetInstallInstructions()))
		}
		apperrors.Debug("git found: %s (version %s)", result.Path, result.Version)
		if err := cfgMgr.SetToolCheckDone(); err != nil {
			apperrors.Warn("Failed to record tool check: %v", err)
		}
	}

	// First-run setup only in interactive mode. The default mode must stay
	// scriptable: missing config means defaults plus environment variables.
	if flags.Interactive && !cfgMgr.ConfigExists() {
		if err := ui.RunInteractiveSetup(cfgMgr); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
	}

	// Flag overrides beat env and file values, and never persist.
	if providerOverride != "" {
		cfgMgr.SetOverride("provider.name", providerOverride)
		apperrors.Debug("Provider overridden via flag: %s", providerOverride)
	}
	if modelOverride != "" {
		cfgMgr.SetOverride("provider.model", modelOverride)
		apperrors.Debug("Model overridden via flag: %s", modelOverride)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
	}

	// Writing the message to a file never commits.
	if flags.OutputFile != "" {
		flags.DryRun = true
	}

	willCallAI := !flags.NoAI && !overrides.Any() && cfg.Commit.AIEnabled

	// A configured but malformed key is a config error. A missing key is
	// not: the run falls back to local rules.
	apiKey := cfg.ResolveAPIKey()
	if apiKey != "" {
		if err := security.ValidateAPIKeyFormat(cfg.Provider.Name, apiKey); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "invalid API key")
		}
	}

	// First-use warning before any diff leaves the machine.
	if willCallAI && cfg.Provider.Name != ai.ProviderNameOllama && !cfg.Security.WarningAcknowledged {
		if err := showSecurityWarning(cfgMgr, flags.Interactive); err != nil {
			return err
		}
	}

	if verbose {
		apperrors.Info("Using provider: %s", cfg.Provider.Name)
		apperrors.Info("Using model: %s", cfg.Provider.Model)
		if apiKey != "" {
			apperrors.Info("API key: %s", security.MaskAPIKey(apiKey))
		}
		if flags.DryRun {
			apperrors.Info("Dry-run mode enabled")
		}
	}

	gitClient := git.NewClientWithWorkDir(flags.RepoPath)

	// Provider creation may fail (no key, unknown name). That is not fatal
	// here: the service falls back to local rules with a notice, unless
	// --ai-required turns it into an error.
	var aiProvider ai.Provider
	var aiSetupErr error
	if willCallAI {
		providerCfg := cfg.Provider
		providerCfg.APIKey = apiKey
		aiProvider, aiSetupErr = ai.NewProvider(&providerCfg)
		if aiSetupErr != nil {
			apperrors.Debug("AI provider unavailable: %v", aiSetupErr)
			aiProvider = nil
		} else {
			apperrors.Debug("AI provider created: %s", aiProvider.Name())
		}
	}

	var uiMgr ui.Manager
	if flags.Interactive {
		uiMgr = ui.NewDefaultManager(cfg.UI.ColorEnabled, cfg.UI.SpinnerStyle)
	} else {
		uiMgr = ui.NewNonInteractiveManager()
	}

	var historyMgr history.Manager
	if cfg.History.Enabled {
		historyMgr = history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)
	}

	service := app.NewCommitService(
		gitClient,
		aiProvider,
		classify.NewDefaultClassifier(),
		processor.NewProcessor(),
		uiMgr,
		historyMgr,
		cfg,
	)
	if aiSetupErr != nil {
		service.SetAISetupError(aiSetupErr)
	}

	opts := &app.RunOptions{
		RepoPath:   flags.RepoPath,
		DryRun:     flags.DryRun,
		OutputFile: flags.OutputFile,
		NoStage:    flags.NoStage,
		NoVerify:   flags.NoVerify,
		MaxFiles:   flags.MaxFiles,
		NoAI:       flags.NoAI,
		AIRequired: flags.AIRequired,
		AITimeout:  flags.AITimeout,
		NoCache:    flags.NoCache,
		Overrides:  overrides,
	}

	err = service.Run(ctx, opts)
	if errors.Is(err, app.ErrNoChanges) {
		fmt.Println("没有可提交的变更。")
		return nil
	}
	return err
}

// showSecurityWarning displays the first-use security warning. Interactive
// runs must confirm; non-interactive runs see it once on stderr and continue.
func showSecurityWarning(cfgMgr *config.ViperManager, interactive bool) error {
	if interactive {
		fmt.Print(security.FirstUseWarning)
		fmt.Print("已了解以上风险，继续? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			return apperrors.New(apperrors.ErrInvalidArguments, "未确认安全提示，已取消操作")
		}
		fmt.Println(security.FirstUseAcknowledgment)
		fmt.Println()
	} else {
		// Keep stdout clean for the descriptor block.
		fmt.Fprint(os.Stderr, security.FirstUseWarning)
		fmt.Fprintln(os.Stderr, security.FirstUseAcknowledgment)
	}

	if err := cfgMgr.AcknowledgeSecurityWarning(); err != nil {
		apperrors.Warn("Failed to save security acknowledgment: %v", err)
	}

	return nil
}
