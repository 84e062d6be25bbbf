package builder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/shouni/go-autopost/pkg/contextcache"
	"github.com/shouni/go-autopost/pkg/generator"
	"github.com/shouni/go-autopost/pkg/publisher"
	"github.com/shouni/go-autopost/pkg/workflow"
)

// InitializeAIClient は genai クライアントを初期化します。
// API キーがない場合はクライアントを作らずに nil を返し、生成時に設定エラーとして扱います。
func InitializeAIClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*genai.Client, error) {
	if apiKey == "" {
		return nil, nil
	}
	return generator.NewGeminiClient(ctx, apiKey, baseURL, httpClient)
}

// BuildContentGenerator は本文生成を担当する ContentGenerator を構築します。
func BuildContentGenerator(appCtx *AppContext) *generator.GeminiContentGenerator {
	cfg := appCtx.Config.GeneratorConfig()

	var (
		model generator.ContentModel
		opts  []generator.ContentOption
	)
	if appCtx.aiClient != nil {
		model = appCtx.aiClient.Models
		if appCtx.Options.ContextCache {
			manager := contextcache.NewManager(appCtx.aiClient.Caches, appCtx.Options.CacheFile, appCtx.Options.CacheTTL, cfg.SystemInstruction)
			opts = append(opts, generator.WithContextCache(manager))
		}
	}

	return generator.NewGeminiContentGenerator(cfg, model, appCtx.PromptBuilder, opts...)
}

// BuildImageGenerator はイラスト生成を担当する ImageGenerator を構築します。
func BuildImageGenerator(appCtx *AppContext) *generator.CloudflareImageGenerator {
	cfg := appCtx.Config.GeneratorConfig()
	opts := appCtx.Options

	picker := generator.NewBaseImagePicker(opts.BaseImagesDir, cfg.ImageWidth, cfg.ImageHeight)
	assets := publisher.NewAssetManager(appCtx.Writer, opts.AssetsDir)
	return generator.NewCloudflareImageGenerator(cfg, appCtx.httpClient, appCtx.PromptBuilder, picker, assets)
}

// BuildGeneratePost は記事生成のユースケースを構築します。
func BuildGeneratePost(ctx context.Context, appCtx *AppContext) (*workflow.GeneratePost, error) {
	opts := appCtx.Options

	args := workflow.GeneratePostArgs{
		Content:       BuildContentGenerator(appCtx),
		Image:         BuildImageGenerator(appCtx),
		Repository:    publisher.NewFilePostRepository(appCtx.Writer, opts.PostsDir),
		PostsDir:      opts.PostsDir,
		FallbackImage: opts.FallbackImage,
	}
	if opts.HTML {
		args.Preview = publisher.NewPreviewPublisher(publisher.NewHTMLRenderer(), appCtx.Writer, opts.HTMLDir)
	}

	uc, err := workflow.NewGeneratePost(args)
	if err != nil {
		return nil, fmt.Errorf("GeneratePostの構築に失敗しました: %w", err)
	}
	slog.DebugContext(ctx, "ユースケースを構築しました", "posts_dir", opts.PostsDir, "assets_dir", opts.AssetsDir, "html", opts.HTML, "html_dir", opts.HTMLDir, "context_cache", opts.ContextCache)
	return uc, nil
}
