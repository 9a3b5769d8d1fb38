package ui

import (
	"testing"
)

// The huh forms themselves need a TTY, so setup tests cover the logic
// around them: suggested defaults and input validation.

func TestSetupDefaults(t *testing.T) {
	tests := []struct {
		provider     string
		wantModel    string
		wantEndpoint string
	}{
		{provider: "deepseek", wantModel: "deepseek-chat", wantEndpoint: "https://api.deepseek.com/v1"},
		{provider: "openai", wantModel: "gpt-4o-mini", wantEndpoint: ""},
		{provider: "ollama", wantModel: "codellama", wantEndpoint: "http://localhost:11434"},
		{provider: "", wantModel: "deepseek-chat", wantEndpoint: "https://api.deepseek.com/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			model, endpoint := setupDefaults(tt.provider)
			if model != tt.wantModel {
				t.Errorf("model = %q, want %q", model, tt.wantModel)
			}
			if endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %q, want %q", endpoint, tt.wantEndpoint)
			}
		})
	}
}

func TestValidateSetupAPIKey(t *testing.T) {
	// Empty is allowed: the key may come from the environment at runtime.
	if err := validateSetupAPIKey(""); err != nil {
		t.Errorf("validateSetupAPIKey(\"\") = %v, want nil", err)
	}
	if err := validateSetupAPIKey("sk-1234567890"); err != nil {
		t.Errorf("validateSetupAPIKey(valid) = %v, want nil", err)
	}
	if err := validateSetupAPIKey("abc"); err == nil {
		t.Error("validateSetupAPIKey(short) = nil, want error")
	}
	if err := validateSetupAPIKey("   a   "); err == nil {
		t.Error("validateSetupAPIKey(padded short) = nil, want error")
	}
}

func TestValidateSetupModel(t *testing.T) {
	if err := validateSetupModel("deepseek-chat"); err != nil {
		t.Errorf("validateSetupModel(valid) = %v, want nil", err)
	}
	if err := validateSetupModel(""); err == nil {
		t.Error("validateSetupModel(\"\") = nil, want error")
	}
	if err := validateSetupModel("   "); err == nil {
		t.Error("validateSetupModel(blank) = nil, want error")
	}
}
