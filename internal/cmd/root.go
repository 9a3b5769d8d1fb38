package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the autocommit CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	rootFlags := &CommitFlags{}

	rootCmd := &cobra.Command{
		Use:   "autocommit",
		Short: "自动分析 git diff，生成中文提交描述并执行 commit",
		Long: `autocommit 自动分析 git diff，生成中文提交描述并执行 commit。

默认动作等同于 'autocommit commit': 暂存全部变更，读取已暂存 diff，
按本地规则推断 类型(作用域): 主题 与简介，配置了 AI 提供方
(DeepSeek、OpenAI、Ollama) 时由模型润色，然后执行 git commit。

AI 不可用时自动回退本地规则，不阻塞提交。`,
		Version: version,
		// Errors are rendered once in main with the exit-code mapping.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, rootFlags)
		},
	}

	rootCmd.SetVersionTemplate(`autocommit {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "输出调试日志")
	rootCmd.PersistentFlags().String("config", "", "配置文件路径 (默认 ~/.autocommit/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "AI 提供方 (deepseek, openai, ollama)")
	rootCmd.PersistentFlags().String("model", "", "AI 模型")

	// The root command doubles as the commit command.
	addGenerationFlags(rootCmd, rootFlags)
	rootCmd.Flags().BoolVar(&rootFlags.DryRun, "dry-run", false, "只生成描述，不执行 commit")
	rootCmd.Flags().BoolVar(&rootFlags.NoVerify, "no-verify", false, "提交时添加 --no-verify")

	rootCmd.AddCommand(NewCommitCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}
