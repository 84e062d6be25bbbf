package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/generator"
)

// DefaultFallbackImage は画像生成をスキップまたは失敗したときに使う画像パスです。
const DefaultFallbackImage = "/assets/img/posts/ia-generated.png"

// GeneratePostArgs は GeneratePost の依存関係です。
type GeneratePostArgs struct {
	Content       generator.ContentGenerator
	Image         generator.ImageGenerator // nil の場合は常にフォールバック画像を使います
	Repository    PostRepository
	Preview       PreviewWriter // nil の場合は HTML を書き出しません
	PostsDir      string
	FallbackImage string
	Now           func() time.Time
}

// GeneratePost は直前の記事を文脈に新しい記事を1件生成して保存するユースケースです。
type GeneratePost struct {
	content       generator.ContentGenerator
	image         generator.ImageGenerator
	repository    PostRepository
	preview       PreviewWriter
	postsDir      string
	fallbackImage string
	now           func() time.Time
}

// NewGeneratePost は GeneratePost を初期化します。
func NewGeneratePost(args GeneratePostArgs) (*GeneratePost, error) {
	if args.Content == nil {
		return nil, fmt.Errorf("ContentGenerator は必須です")
	}
	if args.Repository == nil {
		return nil, fmt.Errorf("PostRepository は必須です")
	}

	fallback := args.FallbackImage
	if fallback == "" {
		fallback = DefaultFallbackImage
	}
	now := args.Now
	if now == nil {
		now = time.Now
	}

	return &GeneratePost{
		content:       args.Content,
		image:         args.Image,
		repository:    args.Repository,
		preview:       args.Preview,
		postsDir:      args.PostsDir,
		fallbackImage: fallback,
		now:           now,
	}, nil
}

// Execute は記事を生成して保存し、組み立てた Post を返します。
// 本文の生成か保存に失敗した場合はエラーを返し、記事は作られません。
func (u *GeneratePost) Execute(ctx context.Context) (*domain.Post, error) {
	last, err := u.repository.GetLast(ctx)
	if err != nil {
		slog.WarnContext(ctx, "直前の記事を読み込めないため文脈なしで生成します", "error", err)
		last = nil
	}

	prompt, err := u.content.CreatePrompt(last)
	if err != nil {
		return nil, err
	}

	text, err := u.content.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed := u.content.ParseGeneratedContent(text)
	slog.InfoContext(ctx, "記事本文を解析しました", "title", parsed.Title, "categories", parsed.Categories, "tags", parsed.Tags)

	imagePath := u.generateImage(ctx, parsed)
	post := domain.NewPost(parsed, u.now(), u.postsDir, imagePath)

	if err := u.repository.Save(ctx, post); err != nil {
		return nil, err
	}

	if u.preview != nil {
		htmlPath, err := u.preview.WritePreview(ctx, post)
		if err != nil {
			slog.WarnContext(ctx, "HTML プレビューの書き出しに失敗しました", "error", err)
		} else {
			slog.InfoContext(ctx, "HTML プレビューを書き出しました", "path", htmlPath)
		}
	}

	return post, nil
}

// generateImage は画像を生成して公開パスを返します。失敗してもフォールバック画像で処理を続けます。
func (u *GeneratePost) generateImage(ctx context.Context, parsed domain.ParsedContent) string {
	if u.image == nil {
		return u.fallbackImage
	}

	path, err := u.image.GenerateImage(ctx, parsed.Title, parsed.Categories, parsed.Tags, parsed.Content)
	if err != nil {
		slog.WarnContext(ctx, "画像生成に失敗したためフォールバック画像を使います", "error", err, "fallback", u.fallbackImage)
		return u.fallbackImage
	}
	if path == "" {
		return u.fallbackImage
	}
	return path
}
