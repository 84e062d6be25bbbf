package prompts

import (
	"strings"
	"testing"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	b, err := NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("初期化に失敗しました: %v", err)
	}

	t.Run("記事プロンプトは出力形式を指示する", func(t *testing.T) {
		got, err := b.Build(ModePost, TemplateData{})
		if err != nil {
			t.Fatalf("Build に失敗しました: %v", err)
		}
		for _, want := range []string{"title", "categories", "tags", "Leave a blank line"} {
			if !strings.Contains(got, want) {
				t.Errorf("%q が含まれていません", want)
			}
		}
	})

	t.Run("コンテキストプロンプトに直前の記事が全文埋め込まれる", func(t *testing.T) {
		content := strings.Repeat("conteúdo longo ", 1000)
		got, err := b.Build(ModeContext, TemplateData{
			Filename: "2025-01-01-old.md",
			PostURL:  "https://example.com/posts/old",
			Content:  content,
		})
		if err != nil {
			t.Fatalf("Build に失敗しました: %v", err)
		}
		if !strings.Contains(got, "Title: 2025-01-01-old.md") || !strings.Contains(got, "url: https://example.com/posts/old") {
			t.Errorf("記事の識別子が含まれていません: %s", got[:200])
		}
		if !strings.Contains(got, content) {
			t.Error("本文が切り詰められています")
		}
		if !strings.Contains(got, "different topic") {
			t.Error("別の話題を選ぶ指示が含まれていません")
		}
	})

	t.Run("テンプレート構文を含むデータはそのまま埋め込まれる", func(t *testing.T) {
		got, err := b.Build(ModeImage, TemplateData{Title: "{{.Secret}}", Content: "<b>x</b>"})
		if err != nil {
			t.Fatalf("Build に失敗しました: %v", err)
		}
		if !strings.Contains(got, "Title: {{.Secret}}") || !strings.Contains(got, "Content preview: <b>x</b>...") {
			t.Errorf("データが変換されています: %s", got)
		}
	})

	t.Run("不明なモードはエラー", func(t *testing.T) {
		if _, err := b.Build("unknown", TemplateData{}); err == nil {
			t.Error("エラーが返されるはずです")
		}
	})
}
