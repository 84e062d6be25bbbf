package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shouni/go-autopost/internal/builder"
	"github.com/shouni/go-autopost/internal/config"
	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/generator"
	"github.com/shouni/go-autopost/pkg/parser"
	"github.com/shouni/go-autopost/pkg/prompts"
	"github.com/shouni/go-autopost/pkg/publisher"
)

// Execute は記事を1件生成して保存し、GitHub Actions の出力を書き出すのだ。
func Execute(ctx context.Context, cfg *config.Config) (*domain.Post, error) {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uc, err := builder.BuildGeneratePost(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "記事の生成を開始するのだ...", "posts_dir", cfg.Options.PostsDir)
	post, err := uc.Execute(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "記事を生成したのだ！", "title", post.Title, "file", post.Filename, "image", post.ImagePath)

	if cfg.GitHubOutput != "" {
		if err := WriteGitHubOutput(cfg.GitHubOutput, post); err != nil {
			return post, err
		}
	}
	return post, nil
}

// ExecutePreview は保存済みの記事ファイルを HTML に変換するのだ。
// output が空の場合は標準出力に書き出すのだ。
func ExecutePreview(ctx context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("記事ファイル '%s' の読み込みに失敗しました: %w", input, err)
	}
	post := parser.ParsePostFile(input, data)

	html, err := publisher.NewHTMLRenderer().Render(post)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := os.Stdout.Write(html)
		return err
	}
	if err := publisher.NewLocalWriter().Write(ctx, output, bytes.NewReader(html), "text/html; charset=utf-8"); err != nil {
		return fmt.Errorf("HTML ファイルの書き込みに失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "HTML プレビューを書き出したのだ", "path", output)
	return nil
}

// WriteGitHubOutput は後続ステップ向けに記事の情報を追記するのだ。
func WriteGitHubOutput(path string, post *domain.Post) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("GITHUB_OUTPUT '%s' を開けません: %w", path, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "post_title=%s\n", post.Title)
	fmt.Fprintf(&sb, "post_slug=%s\n", post.Slug)
	fmt.Fprintf(&sb, "post_categories=%s\n", post.Categories)
	fmt.Fprintf(&sb, "post_tags=%s\n", post.Tags)
	fmt.Fprintf(&sb, "post_filename=%s\n", post.Filename)
	fmt.Fprintf(&sb, "post_image=%s\n", strings.TrimPrefix(post.ImagePath, "/"))

	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("GITHUB_OUTPUT への書き込みに失敗しました: %w", err)
	}
	return f.Close()
}

// setupAppContext は、設定と共有コンポーネントからアプリケーションコンテキストを初期化して返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpClient := generator.NewHTTPClient(cfg.Options.HTTPTimeout)
	aiClient, err := builder.InitializeAIClient(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	if aiClient == nil {
		slog.WarnContext(ctx, "GEMINI_API_KEY が設定されていないのだ")
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の初期化に失敗しました: %w", err)
	}

	appCtx := builder.NewAppContext(cfg, httpClient, aiClient, publisher.NewLocalWriter(), pb)
	return &appCtx, nil
}
