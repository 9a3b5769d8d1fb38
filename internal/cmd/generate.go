package cmd

import (
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command, a commit that never commits.
func NewGenerateCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "只生成提交描述，不执行 commit",
		Long: `生成提交描述并打印，不执行 git commit。

等同于 'autocommit commit --dry-run'，另外支持用 --output 把完整
提交信息写入文件（首行 header，空行，四行 body）。

示例:
  autocommit generate               # 生成并打印描述
  autocommit generate -o msg.txt    # 把提交信息写入文件
  autocommit generate --no-ai       # 仅用本地规则`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.DryRun = true
			return runCommit(cmd, flags)
		},
	}

	addGenerationFlags(cmd, flags)
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "将完整提交信息写入文件")

	return cmd
}
