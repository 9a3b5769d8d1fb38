package ai

import (
	"strings"
	"testing"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name      string
		rawText   string
		wantType  string
		wantScope string
		wantTheme string
		wantIntro string
	}{
		{
			name:      "clean JSON",
			rawText:   `{"type":"feat","scope":"api","theme":"新增用户查询接口","intro":"本次修改 2 个文件，新增用户查询接口。"}`,
			wantType:  "feat",
			wantScope: "api",
			wantTheme: "新增用户查询接口",
			wantIntro: "本次修改 2 个文件，新增用户查询接口。",
		},
		{
			name:      "uppercase type is normalized",
			rawText:   `{"type":"FIX","scope":"config","theme":"修复配置读取","intro":"修复配置读取时的空指针。"}`,
			wantType:  "fix",
			wantScope: "config",
			wantTheme: "修复配置读取",
			wantIntro: "修复配置读取时的空指针。",
		},
		{
			name:      "empty scope falls back to repo",
			rawText:   `{"type":"docs","scope":"","theme":"更新说明文档","intro":"更新 README 中的使用说明。"}`,
			wantType:  "docs",
			wantScope: "repo",
			wantTheme: "更新说明文档",
			wantIntro: "更新 README 中的使用说明。",
		},
		{
			name:      "scope is sanitized",
			rawText:   `{"type":"chore","scope":"internal/pkg/git","theme":"整理目录","intro":"调整 git 包的内部结构。"}`,
			wantType:  "chore",
			wantScope: "internal-pkg-git",
			wantTheme: "整理目录",
			wantIntro: "调整 git 包的内部结构。",
		},
		{
			name:      "surrounding whitespace on fields",
			rawText:   `{"type":"  test ","scope":" api ","theme":" 补充单元测试 ","intro":" 为解析逻辑补充单元测试。 "}`,
			wantType:  "test",
			wantScope: "api",
			wantTheme: "补充单元测试",
			wantIntro: "为解析逻辑补充单元测试。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.rawText)
			if err != nil {
				t.Fatalf("ParseDescriptor() error = %v", err)
			}
			if d.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", d.Type, tt.wantType)
			}
			if d.Scope != tt.wantScope {
				t.Errorf("Scope = %q, want %q", d.Scope, tt.wantScope)
			}
			if d.Theme != tt.wantTheme {
				t.Errorf("Theme = %q, want %q", d.Theme, tt.wantTheme)
			}
			if d.Intro != tt.wantIntro {
				t.Errorf("Intro = %q, want %q", d.Intro, tt.wantIntro)
			}
		})
	}
}

func TestParseDescriptor_Fenced(t *testing.T) {
	// Models without a JSON response mode tend to wrap the object in a
	// markdown fence despite instructions.
	inner := `{"type":"feat","scope":"api","theme":"新增接口","intro":"新增用户查询接口。"}`

	tests := []struct {
		name    string
		rawText string
	}{
		{name: "json fence", rawText: "```json\n" + inner + "\n```"},
		{name: "bare fence", rawText: "```\n" + inner + "\n```"},
		{name: "fence with surrounding whitespace", rawText: "  \n```json\n" + inner + "\n```\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.rawText)
			if err != nil {
				t.Fatalf("ParseDescriptor() error = %v", err)
			}
			if d.Type != "feat" || d.Scope != "api" {
				t.Errorf("got %+v, want the fenced and unfenced results to match", d)
			}
		})
	}
}

func TestParseDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rawText string
		wantMsg string
	}{
		{
			name:    "not JSON",
			rawText: "feat(api): 新增接口",
			wantMsg: "non-JSON",
		},
		{
			name:    "unknown type",
			rawText: `{"type":"feature","scope":"api","theme":"新增接口","intro":"新增接口。"}`,
			wantMsg: "invalid type",
		},
		{
			name:    "empty type",
			rawText: `{"type":"","scope":"api","theme":"新增接口","intro":"新增接口。"}`,
			wantMsg: "invalid type",
		},
		{
			name:    "empty theme",
			rawText: `{"type":"feat","scope":"api","theme":"","intro":"新增接口。"}`,
			wantMsg: "empty theme",
		},
		{
			name:    "whitespace theme",
			rawText: `{"type":"feat","scope":"api","theme":"   ","intro":"新增接口。"}`,
			wantMsg: "empty theme",
		},
		{
			name:    "empty intro",
			rawText: `{"type":"feat","scope":"api","theme":"新增接口","intro":""}`,
			wantMsg: "empty intro",
		},
		{
			name:    "empty input",
			rawText: "",
			wantMsg: "non-JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.rawText)
			if err == nil {
				t.Fatalf("ParseDescriptor() = %+v, want error", d)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fence",
			input: `{"type":"feat"}`,
			want:  `{"type":"feat"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"type\":\"feat\"}\n```",
			want:  `{"type":"feat"}`,
		},
		{
			name:  "uppercase language tag",
			input: "```JSON\n{\"type\":\"feat\"}\n```",
			want:  `{"type":"feat"}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"type\":\"feat\"}\n```",
			want:  `{"type":"feat"}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  {\"type\":\"feat\"}  ",
			want:  `{"type":"feat"}`,
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripJSONFences(tt.input); got != tt.want {
				t.Errorf("StripJSONFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
