package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autocommit/autocommit/internal/pkg/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "管理 autocommit 配置",
		Long: `管理 autocommit 配置。

配置文件默认位于 ~/.autocommit/config.yaml，权限 0600。所有键也可以用
AUTOCOMMIT_ 前缀的环境变量覆盖，例如 AUTOCOMMIT_PROVIDER_MODEL。`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigListCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "生成默认配置文件",
		Long: `在 ~/.autocommit/config.yaml 生成一份带默认值的配置文件。

文件可能保存 API 密钥，因此以 0600 权限创建。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			mgr, err := config.NewManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			if err := mgr.Init(); err != nil {
				return err
			}

			fmt.Printf("配置文件已创建: %s\n", mgr.GetConfigPath())
			fmt.Println("编辑该文件或用 'autocommit config set' 设置 API 密钥等选项。")
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "设置配置项",
		Long: `按键设置配置项，嵌套键用点号表示。

示例:
  autocommit config set provider.name deepseek
  autocommit config set provider.api_key sk-xxx
  autocommit config set provider.model deepseek-chat
  autocommit config set commit.max_files 10
  autocommit config set commit.ai_enabled false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			configPath, _ := cmd.Flags().GetString("config")
			mgr, err := config.NewManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			if !mgr.ConfigExists() {
				return fmt.Errorf("配置文件不存在，先运行 'autocommit config init'")
			}

			if err := mgr.Set(key, value); err != nil {
				return err
			}

			// Mask API key in output
			displayValue := value
			if strings.Contains(strings.ToLower(key), "api_key") {
				displayValue = config.MaskAPIKey(value)
			}

			fmt.Printf("已设置 %s = %s\n", key, displayValue)
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部配置",
		Long: `打印当前全部配置。

API 密钥只显示末四位。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			mgr, err := config.NewManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			settings := mgr.List()
			printSettings("", settings)
			return nil
		},
	}
}

// printSettings recursively prints configuration settings.
func printSettings(indent string, settings map[string]interface{}) {
	for key, value := range settings {
		switch v := value.(type) {
		case map[string]interface{}:
			fmt.Printf("%s%s:\n", indent, key)
			printSettings(indent+"  ", v)
		default:
			// Mask API keys
			displayValue := fmt.Sprintf("%v", value)
			if strings.Contains(strings.ToLower(key), "api_key") && displayValue != "" {
				displayValue = config.MaskAPIKey(displayValue)
			}
			fmt.Printf("%s%s: %s\n", indent, key, displayValue)
		}
	}
}
