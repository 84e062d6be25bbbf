package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-autopost/pkg/config"
	"github.com/shouni/go-autopost/pkg/contextcache"
	"github.com/shouni/go-autopost/pkg/workflow"
)

// デフォルト値の定義なのだ
const (
	DefaultPostsDir      = "_posts"
	DefaultAssetsDir     = "assets/img/posts"
	DefaultHTMLDir       = "_previews"
	DefaultBaseImagesDir = "assets/img/posts/base"
	DefaultFallbackImage = workflow.DefaultFallbackImage
	DefaultHTTPTimeout   = config.DefaultRequestTimeout
	DefaultMaxAttempts   = config.DefaultMaxAttempts
	DefaultContentDelay  = config.DefaultContentRetryDelay
	DefaultImageDelay    = config.DefaultImageRetryDelay
	DefaultCacheFile     = contextcache.DefaultFile
	DefaultCacheTTL      = contextcache.DefaultTTL
)

// Config はアプリケーション全体の環境設定（APIキーや出力先）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey        string
	GeminiBaseURL       string
	CloudflareAPIToken  string
	CloudflareAccountID string
	CloudflareBaseURL   string
	BlogURL             string
	GitHubOutput        string // GitHub Actions のステップ出力ファイル。空なら書き出さない

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
// 値の読み込みはこの関数だけが行い、各コンポーネントには Config を渡すのだ。
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:        envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:       envutil.GetEnv("GEMINI_BASE_URL", config.DefaultGeminiBaseURL),
		CloudflareAPIToken:  envutil.GetEnv("CF_AI_API_KEY", ""),
		CloudflareAccountID: envutil.GetEnv("CF_ACCOUNT_ID", ""),
		CloudflareBaseURL:   envutil.GetEnv("CF_BASE_URL", config.DefaultCloudflareBaseURL),
		BlogURL:             envutil.GetEnv("BLOG_URL", config.DefaultBlogURL),
		GitHubOutput:        envutil.GetEnv("GITHUB_OUTPUT", ""),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 出力先
	PostsDir      string // --posts-dir
	AssetsDir     string // --assets-dir
	BaseImagesDir string // --base-images-dir
	FallbackImage string // --fallback-image

	// 実行制御
	HTTPTimeout  time.Duration // --http-timeout
	MaxAttempts  int           // --max-attempts
	ContentDelay time.Duration // --content-delay
	ImageDelay   time.Duration // --image-delay
	RateInterval time.Duration // --rate-interval

	// 追加機能
	HTML         bool          // --html
	HTMLDir      string        // --html-dir
	ContextCache bool          // --context-cache
	CacheFile    string        // --cache-file
	CacheTTL     time.Duration // --cache-ttl

	Verbose bool // --verbose
}

// DefaultGenerateOptions はフラグのデフォルト値なのだ。
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		PostsDir:      DefaultPostsDir,
		AssetsDir:     DefaultAssetsDir,
		BaseImagesDir: DefaultBaseImagesDir,
		FallbackImage: DefaultFallbackImage,
		HTMLDir:       DefaultHTMLDir,
		HTTPTimeout:   DefaultHTTPTimeout,
		MaxAttempts:   DefaultMaxAttempts,
		ContentDelay:  DefaultContentDelay,
		ImageDelay:    DefaultImageDelay,
		CacheFile:     DefaultCacheFile,
		CacheTTL:      DefaultCacheTTL,
	}
}

// GeneratorConfig は各ジェネレーターに渡す設定を組み立てるのだ。
func (c *Config) GeneratorConfig() config.Config {
	gc := config.DefaultConfig()
	gc.GeminiAPIKey = c.GeminiAPIKey
	if c.GeminiBaseURL != "" {
		gc.GeminiBaseURL = c.GeminiBaseURL
	}
	gc.CloudflareAPIToken = c.CloudflareAPIToken
	gc.CloudflareAccountID = c.CloudflareAccountID
	if c.CloudflareBaseURL != "" {
		gc.CloudflareBaseURL = c.CloudflareBaseURL
	}
	if c.BlogURL != "" {
		gc.BlogURL = c.BlogURL
	}

	opts := c.Options
	if opts.HTTPTimeout > 0 {
		gc.RequestTimeout = opts.HTTPTimeout
	}
	if opts.MaxAttempts > 0 {
		gc.MaxAttempts = opts.MaxAttempts
	}
	if opts.ContentDelay > 0 {
		gc.ContentRetryDelay = opts.ContentDelay
	}
	if opts.ImageDelay > 0 {
		gc.ImageRetryDelay = opts.ImageDelay
	}
	gc.RateInterval = opts.RateInterval
	return gc
}
