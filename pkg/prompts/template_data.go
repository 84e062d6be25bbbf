package prompts

import (
	_ "embed"
)

const (
	ModePost    = "post"
	ModeContext = "context"
	ModeImage   = "image"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	Title      string
	Categories string
	Tags       string
	Content    string

	// 直前の記事を参照させる場合に使います。
	Filename string
	PostURL  string
}

var (
	//go:embed post.md
	PostPrompt string
	//go:embed context.md
	ContextPrompt string
	//go:embed image.md
	ImagePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModePost:    PostPrompt,
	ModeContext: ContextPrompt,
	ModeImage:   ImagePrompt,
}
