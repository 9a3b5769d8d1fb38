// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"encoding/json"

	"github.com/autocommit/autocommit/internal/pkg/git"
)

// DefaultSystemPrompt instructs the model to return the four descriptor
// fields as strict JSON.
const DefaultSystemPrompt = "你是资深代码审阅助手。根据 git diff 生成 commit 四要素。" +
	"必须返回严格 JSON，不要 markdown，不要解释。" +
	"字段: type, scope, theme, intro。" +
	"type 必须是 feat/fix/refactor/docs/style/test/chore/perf/ci/build/revert 之一。" +
	"theme 和 intro 必须是简洁中文。"

// PromptTemplate handles prompt generation for AI providers.
type PromptTemplate struct {
	SystemPrompt string
}

// PromptData contains the data used to build the user prompt.
type PromptData struct {
	Repo         string
	Paths        []string
	Counts       git.ChangeCounts
	Diff         string
	CustomPrompt string
}

// promptPayload is the JSON document sent as the user message.
type promptPayload struct {
	Repo         string        `json:"repo"`
	ChangedFiles []string      `json:"changed_files"`
	ChangeCounts payloadCounts `json:"change_counts"`
	Diff         string        `json:"diff"`
	OutputSchema payloadSchema `json:"output_schema"`
}

// payloadCounts serializes change counts under their status letters.
type payloadCounts struct {
	Added    int `json:"A"`
	Modified int `json:"M"`
	Deleted  int `json:"D"`
	Renamed  int `json:"R"`
}

// payloadSchema spells out the expected response shape for the model.
type payloadSchema struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Theme string `json:"theme"`
	Intro string `json:"intro"`
}

// NewPromptTemplate creates a PromptTemplate with the default system prompt.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{SystemPrompt: DefaultSystemPrompt}
}

// NewPromptTemplateWithCustom creates a PromptTemplate with a custom system
// prompt. An empty prompt keeps the default.
func NewPromptTemplateWithCustom(systemPrompt string) *PromptTemplate {
	pt := NewPromptTemplate()
	if systemPrompt != "" {
		pt.SystemPrompt = systemPrompt
	}
	return pt
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}

// RenderUserPrompt builds the JSON user message for the given data.
// A custom prompt, when present, is used directly.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if data.CustomPrompt != "" {
		return data.CustomPrompt, nil
	}

	payload := promptPayload{
		Repo:         data.Repo,
		ChangedFiles: data.Paths,
		ChangeCounts: payloadCounts{
			Added:    data.Counts.Added,
			Modified: data.Counts.Modified,
			Deleted:  data.Counts.Deleted,
			Renamed:  data.Counts.Renamed,
		},
		Diff: data.Diff,
		OutputSchema: payloadSchema{
			Type:  "feat|fix|refactor|docs|style|test|chore|perf|ci|build|revert",
			Scope: "string",
			Theme: "string",
			Intro: "string",
		},
	}
	if payload.ChangedFiles == nil {
		payload.ChangedFiles = []string{}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// BuildPromptData creates PromptData from a GenerateRequest.
func BuildPromptData(req *GenerateRequest) *PromptData {
	return &PromptData{
		Repo:         req.Repo,
		Paths:        req.Paths,
		Counts:       req.Counts,
		Diff:         req.Diff,
		CustomPrompt: req.CustomPrompt,
	}
}
