package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/"
	DefaultSystemInstruction = "Your name is R. Daneel Olivaw and you are a programming, technology and software development expert who regularly posts on Cleisson Barbosa's blog, cleissonbarbosa.github.io"
	DefaultTemperature       = float32(1.0)
	DefaultTopP              = float32(0.8)
	DefaultTopK              = float32(10)
	DefaultMaxOutputTokens   = int32(6000)
	DefaultStopSequence      = "Title"

	DefaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4/"
	DefaultCloudflareModel   = "@cf/runwayml/stable-diffusion-v1-5-img2img"
	DefaultNegativePrompt    = "poor quality, low resolution, bad anatomy, text, watermark, signature"
	DefaultNumSteps          = 20
	DefaultGuidance          = 8.5
	DefaultStrength          = 0.85
	DefaultImageWidth        = 630
	DefaultImageHeight       = 1200

	DefaultBlogURL           = "https://cleissonbarbosa.github.io"
	DefaultRequestTimeout    = 120 * time.Second
	DefaultMaxAttempts       = 3
	DefaultContentRetryDelay = 5 * time.Second
	DefaultImageRetryDelay   = 3 * time.Second
)

// DefaultModels はテキスト生成時に一様ランダムで選ばれるモデルの候補です。
var DefaultModels = []string{
	"gemini-1.5-flash-001",
	"gemini-2.0-flash-001",
	"gemini-2.0-pro-exp-02-05",
	"gemini-2.0-flash-thinking-exp-01-21",
}

// Config は各ジェネレーターを動作させるための基本設定です。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey      string
	GeminiBaseURL     string
	Models            []string
	SystemInstruction string

	// --- Generation Settings ---
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
	StopSequences   []string

	// --- Cloudflare Workers AI Settings ---
	CloudflareAPIToken  string
	CloudflareAccountID string
	CloudflareBaseURL   string
	CloudflareModel     string
	NegativePrompt      string
	NumSteps            int
	Guidance            float64
	Strength            float64
	ImageWidth          int
	ImageHeight         int

	// --- Blog Settings ---
	BlogURL string

	// --- Timeout & Retries ---
	RequestTimeout    time.Duration
	MaxAttempts       int
	ContentRetryDelay time.Duration
	ImageRetryDelay   time.Duration
	RateInterval      time.Duration // 0 の場合はリクエスト間隔を制御しない
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiBaseURL:     DefaultGeminiBaseURL,
		Models:            append([]string(nil), DefaultModels...),
		SystemInstruction: DefaultSystemInstruction,
		Temperature:       DefaultTemperature,
		TopP:              DefaultTopP,
		TopK:              DefaultTopK,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		StopSequences:     []string{DefaultStopSequence},
		CloudflareBaseURL: DefaultCloudflareBaseURL,
		CloudflareModel:   DefaultCloudflareModel,
		NegativePrompt:    DefaultNegativePrompt,
		NumSteps:          DefaultNumSteps,
		Guidance:          DefaultGuidance,
		Strength:          DefaultStrength,
		ImageWidth:        DefaultImageWidth,
		ImageHeight:       DefaultImageHeight,
		BlogURL:           DefaultBlogURL,
		RequestTimeout:    DefaultRequestTimeout,
		MaxAttempts:       DefaultMaxAttempts,
		ContentRetryDelay: DefaultContentRetryDelay,
		ImageRetryDelay:   DefaultImageRetryDelay,
	}
}
