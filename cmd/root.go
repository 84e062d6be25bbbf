package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-autopost/internal/config"
)

const appName = "autopost"

// opts はコマンドラインフラグの値を保持するのだ。
var opts = config.DefaultGenerateOptions()

// rootCmd は引数なしで実行されたときに記事を1件生成するのだ。
var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "AIでブログ記事を自動生成するのだ。",
	Long:          `直前の記事を文脈に Gemini で新しい記事を書き、Cloudflare Workers AI でイラストを添えて Markdown として保存するのだ。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(opts.Verbose)
		return nil
	},
	RunE: generateCommand,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	// --- 出力先 ---
	flags.StringVar(&opts.PostsDir, "posts-dir", config.DefaultPostsDir, "記事を保存するディレクトリなのだ。")
	flags.StringVar(&opts.AssetsDir, "assets-dir", config.DefaultAssetsDir, "生成した画像を保存するディレクトリなのだ。")
	flags.StringVar(&opts.BaseImagesDir, "base-images-dir", config.DefaultBaseImagesDir, "img2img のベース画像を置くディレクトリなのだ。")
	flags.StringVar(&opts.FallbackImage, "fallback-image", config.DefaultFallbackImage, "画像生成できなかったときに使う画像パスなのだ。")

	// --- 実行制御 ---
	flags.DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "外部APIリクエストのタイムアウトなのだ。")
	flags.IntVar(&opts.MaxAttempts, "max-attempts", config.DefaultMaxAttempts, "外部API呼び出しの最大試行回数なのだ。")
	flags.DurationVar(&opts.ContentDelay, "content-delay", config.DefaultContentDelay, "本文生成の再試行の初回待ち時間なのだ。")
	flags.DurationVar(&opts.ImageDelay, "image-delay", config.DefaultImageDelay, "画像生成の再試行の初回待ち時間なのだ。")
	flags.DurationVar(&opts.RateInterval, "rate-interval", 0, "外部APIリクエストの最小間隔なのだ（0で無制限）。")

	// --- 追加機能 ---
	flags.BoolVar(&opts.HTML, "html", false, "HTML プレビューも書き出すのだ。")
	flags.StringVar(&opts.HTMLDir, "html-dir", config.DefaultHTMLDir, "HTML プレビューを書き出すディレクトリなのだ（記事ディレクトリの外）。")
	flags.BoolVar(&opts.ContextCache, "context-cache", false, "生成結果を Gemini のコンテキストキャッシュに保持して次回に再利用するのだ。")
	flags.StringVar(&opts.CacheFile, "cache-file", config.DefaultCacheFile, "コンテキストキャッシュの情報を保存するファイルなのだ。")
	flags.DurationVar(&opts.CacheTTL, "cache-ttl", config.DefaultCacheTTL, "コンテキストキャッシュの有効期間なのだ。")

	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// setupLogger はログの出力レベルを設定するのだ。
func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, previewCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("実行に失敗したのだ", errorChain(err))
		os.Exit(1)
	}
}

// errorChain はラップされたエラーの連鎖を %+v で展開したログ属性を返すのだ。
func errorChain(err error) slog.Attr {
	return slog.String("error", fmt.Sprintf("%+v", err))
}
