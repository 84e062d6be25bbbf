package publisher

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/shouni/go-autopost/pkg/domain"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{- if .Image}}
<img src="{{.Image}}" alt="{{.Title}}">
{{- end}}
<p class="meta">{{.Date}} | {{.Categories}} | {{.Tags}}</p>
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title      string
	Image      string
	Date       string
	Categories string
	Tags       string
	Body       template.HTML
}

// HTMLRenderer は記事本文を HTML のプレビューページに変換します。
type HTMLRenderer struct {
	engine    goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewHTMLRenderer は GFM を有効にした HTMLRenderer を返します。
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render は記事を1枚の HTML ページとして返します。本文はサニタイズされます。
func (r *HTMLRenderer) Render(post *domain.Post) ([]byte, error) {
	var body bytes.Buffer
	if err := r.engine.Convert([]byte(post.Content), &body); err != nil {
		return nil, fmt.Errorf("Markdown の変換に失敗しました: %w", err)
	}
	safe := r.sanitizer.SanitizeBytes(body.Bytes())

	date := ""
	if !post.Date.IsZero() {
		date = post.DateString()
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, pageData{
		Title:      post.Title,
		Image:      post.ImagePath,
		Date:       date,
		Categories: post.Categories,
		Tags:       post.Tags,
		Body:       template.HTML(safe),
	})
	if err != nil {
		return nil, fmt.Errorf("HTML ページの生成に失敗しました: %w", err)
	}
	return page.Bytes(), nil
}

// HTMLPath は記事ファイルに対応するプレビューのパスを返します。
// プレビューは記事ディレクトリの外の dir に置きます。
func HTMLPath(dir, markdownPath string) string {
	base := filepath.Base(markdownPath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".html")
}

// WriteHTML は記事を HTML に変換して dir に書き出し、そのパスを返します。
func (r *HTMLRenderer) WriteHTML(ctx context.Context, writer OutputWriter, dir string, post *domain.Post) (string, error) {
	data, err := r.Render(post)
	if err != nil {
		return "", err
	}
	htmlPath := HTMLPath(dir, post.Filename)
	if err := writer.Write(ctx, htmlPath, bytes.NewReader(data), "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("HTML ファイルの書き込みに失敗しました: %w", err)
	}
	return htmlPath, nil
}

// PreviewPublisher は記事の HTML プレビューを記事ディレクトリとは別のディレクトリに書き出します。
type PreviewPublisher struct {
	renderer *HTMLRenderer
	writer   OutputWriter
	dir      string
}

// NewPreviewPublisher は PreviewPublisher を初期化します。
func NewPreviewPublisher(renderer *HTMLRenderer, writer OutputWriter, dir string) *PreviewPublisher {
	return &PreviewPublisher{renderer: renderer, writer: writer, dir: dir}
}

// WritePreview は記事の HTML プレビューを書き出し、そのパスを返します。
func (p *PreviewPublisher) WritePreview(ctx context.Context, post *domain.Post) (string, error) {
	return p.renderer.WriteHTML(ctx, p.writer, p.dir, post)
}
