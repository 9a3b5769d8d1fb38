package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autocommit/autocommit/internal/pkg/config"
	"github.com/autocommit/autocommit/internal/pkg/history"
)

// DefaultHistoryLimit is the default number of history entries to display.
const DefaultHistoryLimit = 20

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "查看生成过的提交描述",
		Long: `查看 autocommit 生成过的提交描述。

默认显示最近 20 条，可用 --limit 调整。

示例:
  autocommit history            # 最近 20 条
  autocommit history --limit 5  # 最近 5 条
  autocommit history clear      # 清空历史`,
		RunE: runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "显示的条数")

	historyCmd.AddCommand(newHistoryClearCmd())

	return historyCmd
}

// runHistoryList displays the history entries.
func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.History.Enabled {
		fmt.Println("历史记录已禁用。可用 'autocommit config set history.enabled true' 开启。")
		return nil
	}

	historyMgr := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)

	entries, err := historyMgr.List(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("暂无历史记录。")
		return nil
	}

	fmt.Printf("最近 %d 条记录:\n\n", len(entries))

	// Most recent first.
	for i := len(entries) - 1; i >= 0; i-- {
		printHistoryEntry(entries[i], len(entries)-i)
	}

	return nil
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(entry *history.Entry, index int) {
	timestamp := entry.Timestamp.Format(time.RFC3339)

	status := "未提交"
	if entry.Committed {
		status = "已提交"
		if entry.SHA != "" {
			status = "已提交 " + entry.SHA
		}
	}

	fmt.Printf("[%d] %s %s (%s)\n", index, timestamp, entry.Repo, status)
	fmt.Printf("    来源: %s\n", entry.Source)
	fmt.Printf("    commit: %s\n", entry.Header())
	if entry.Intro != "" {
		fmt.Printf("    简介: %s\n", entry.Intro)
	}
	fmt.Println()
}

// newHistoryClearCmd creates the 'history clear' subcommand.
func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "清空历史记录",
		Long: `删除历史文件中的全部记录。

该操作不可撤销。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			mgr, err := config.NewManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			cfg, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			historyMgr := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)

			if err := historyMgr.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			fmt.Println("历史记录已清空。")
			return nil
		},
	}
}
