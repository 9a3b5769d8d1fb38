package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/autocommit/autocommit/internal/pkg/config"
)

// setupDefaults returns the model and endpoint suggested for a provider
// during first-time setup.
func setupDefaults(provider string) (model, endpoint string) {
	switch provider {
	case "openai":
		return "gpt-4o-mini", ""
	case "ollama":
		return "codellama", "http://localhost:11434"
	default:
		return "deepseek-chat", "https://api.deepseek.com/v1"
	}
}

// validateSetupAPIKey accepts an empty key (resolved from the environment
// at runtime) but rejects implausibly short ones.
func validateSetupAPIKey(s string) error {
	if s != "" && len(strings.TrimSpace(s)) < 5 {
		return fmt.Errorf("API 密钥长度不足")
	}
	return nil
}

// validateSetupModel rejects blank model names.
func validateSetupModel(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("模型不能为空")
	}
	return nil
}

// RunInteractiveSetup walks the user through first-time configuration.
// It asks for the provider, credentials and model, persists them, and
// marks the security warning as acknowledged.
func RunInteractiveSetup(cfgMgr *config.ViperManager) error {
	fmt.Println("未找到配置，开始初始化 autocommit。")
	fmt.Println()

	// Make sure the config directory and file exist so the Set calls
	// below have something to write to. An existing file is fine.
	_ = cfgMgr.Init()

	var (
		provider string
		apiKey   string
		model    string
		endpoint string
	)

	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("选择 AI 提供方").
				Description("用于根据 git diff 生成提交描述").
				Options(
					huh.NewOption("DeepSeek (推荐)", "deepseek"),
					huh.NewOption("OpenAI", "openai"),
					huh.NewOption("Ollama (本地)", "ollama"),
				).
				Value(&provider),
		),
	)

	if err := providerForm.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	// Per-provider defaults shown in the follow-up prompts.
	model, endpoint = setupDefaults(provider)

	var groups []*huh.Group

	if provider != "ollama" {
		envVar := config.APIKeyEnvVar(provider)
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("API 密钥").
				Description(fmt.Sprintf("留空则运行时读取环境变量 %s", envVar)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(validateSetupAPIKey),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("模型").
			Value(&model).
			Validate(validateSetupModel),
	))

	if provider == "ollama" || provider == "deepseek" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("服务地址").
				Value(&endpoint),
		))
	}

	detailForm := huh.NewForm(groups...)
	if err := detailForm.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := cfgMgr.Set("provider.name", provider); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}
	if apiKey != "" {
		if err := cfgMgr.Set("provider.api_key", strings.TrimSpace(apiKey)); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}
	if err := cfgMgr.Set("provider.model", strings.TrimSpace(model)); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if endpoint != "" {
		if err := cfgMgr.Set("provider.endpoint", strings.TrimSpace(endpoint)); err != nil {
			return fmt.Errorf("failed to save endpoint: %w", err)
		}
	}

	if err := cfgMgr.AcknowledgeSecurityWarning(); err != nil {
		return fmt.Errorf("failed to record security acknowledgement: %w", err)
	}

	fmt.Println()
	fmt.Printf("配置已保存: %s\n", cfgMgr.GetConfigPath())
	fmt.Println("现在可以在任意 git 仓库中运行 autocommit 了。")

	return nil
}
