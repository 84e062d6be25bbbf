package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-autopost/internal/config"
	"github.com/shouni/go-autopost/internal/pipeline"
)

// generateCmd は、AIによる記事とイラストの生成を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに記事とイラストを生成させますなのだ。",
	Long: `直前の記事を読み込み、別の話題で新しい記事を生成するのだ。
出力は Markdown ファイル（記事）と PNG ファイル（イラスト）になるのだよ。
本文の生成か保存に失敗した場合だけ終了コード 1 で終わるのだ。`,
	Args: cobra.NoArgs,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 環境変数から基本設定をロードして、フラグの値を重ねるのだ
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("記事生成パイプラインを起動するのだ！",
		"posts_dir", opts.PostsDir,
		"assets_dir", opts.AssetsDir,
		"image_enabled", cfg.CloudflareAPIToken != "" && cfg.CloudflareAccountID != "")

	post, err := pipeline.Execute(ctx, cfg)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！", "file", post.Filename)
	return nil
}
