package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-autopost/pkg/config"
	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/parser"
	"github.com/shouni/go-autopost/pkg/prompts"
	"github.com/shouni/go-autopost/pkg/retry"
)

const (
	geminiServiceName = "gemini"
	geminiAPIKeyName  = "GEMINI_API_KEY"
	logSnippetLength  = 200
)

// GeminiContentGenerator は Gemini API を使って記事本文を生成します。
type GeminiContentGenerator struct {
	cfg           config.Config
	model         ContentModel
	promptBuilder prompts.PromptBuilder
	parser        parser.Parser
	policy        *retry.Policy
	limiter       *rate.Limiter
	cache         ContextCache
	pickIndex     func(n int) int
}

// ContentOption は GeminiContentGenerator の任意設定です。
type ContentOption func(*GeminiContentGenerator)

// WithContextCache はコンテキストキャッシュを有効にします。
func WithContextCache(cache ContextCache) ContentOption {
	return func(g *GeminiContentGenerator) {
		g.cache = cache
	}
}

// WithModelPicker はモデル選択に使う乱数関数を差し替えます。
func WithModelPicker(pick func(n int) int) ContentOption {
	return func(g *GeminiContentGenerator) {
		g.pickIndex = pick
	}
}

// WithContentRetryPolicy は再試行ポリシーを差し替えます。
func WithContentRetryPolicy(p *retry.Policy) ContentOption {
	return func(g *GeminiContentGenerator) {
		g.policy = p
	}
}

// NewGeminiContentGenerator は GeminiContentGenerator を初期化します。
// model が nil の場合、GenerateContent は ConfigurationError を返します。
func NewGeminiContentGenerator(cfg config.Config, model ContentModel, pb prompts.PromptBuilder, opts ...ContentOption) *GeminiContentGenerator {
	if len(cfg.Models) == 0 {
		cfg.Models = config.DefaultModels
	}
	g := &GeminiContentGenerator{
		cfg:           cfg,
		model:         model,
		promptBuilder: pb,
		parser:        parser.NewContentParser(),
		policy:        retry.New(cfg.MaxAttempts, cfg.ContentRetryDelay, retry.WithName("gemini.generateContent")),
		limiter:       newLimiter(cfg.RateInterval),
		pickIndex:     rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreatePrompt は記事生成の指示文を返します。last があれば直前の記事の全文と、別の話題を選ぶ指示を追記します。
func (g *GeminiContentGenerator) CreatePrompt(last *domain.Post) (string, error) {
	base, err := g.promptBuilder.Build(prompts.ModePost, prompts.TemplateData{})
	if err != nil {
		return "", fmt.Errorf("プロンプト生成に失敗: %w", err)
	}
	if last == nil {
		return base, nil
	}

	name := filepath.Base(last.Filename)
	contextPrompt, err := g.promptBuilder.Build(prompts.ModeContext, prompts.TemplateData{
		Filename: name,
		PostURL:  g.postURL(last),
		Content:  last.Content,
	})
	if err != nil {
		return "", fmt.Errorf("文脈プロンプトの生成に失敗: %w", err)
	}
	return base + contextPrompt, nil
}

// postURL は公開済み記事の URL を組み立てます。
func (g *GeminiContentGenerator) postURL(last *domain.Post) string {
	slug := last.Slug
	if slug == "" {
		base := strings.TrimSuffix(filepath.Base(last.Filename), filepath.Ext(last.Filename))
		slug = strings.TrimLeft(parser.FileDateRegex.ReplaceAllString(base, ""), "-")
	}
	return strings.TrimSuffix(g.cfg.BlogURL, "/") + "/posts/" + slug
}

// GenerateContent は候補からモデルをランダムに選び、再試行付きで本文を生成します。
func (g *GeminiContentGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g.model == nil || g.cfg.GeminiAPIKey == "" {
		return "", &domain.ConfigurationError{Key: geminiAPIKeyName}
	}

	modelName := g.cfg.Models[g.pickIndex(len(g.cfg.Models))]
	genConfig := g.generationConfig()
	if g.cache != nil {
		if name := g.cache.Lookup(ctx, modelName); name != "" {
			genConfig.CachedContent = name
			genConfig.SystemInstruction = nil
			slog.InfoContext(ctx, "コンテキストキャッシュを利用します", "cache", name)
		}
	}

	slog.InfoContext(ctx, "Gemini API を呼び出します", "model", modelName, "prompt", truncateString(prompt, logSnippetLength))

	text, err := retry.DoValue(ctx, g.policy, func(ctx context.Context) (string, error) {
		if err := waitLimiter(ctx, g.limiter); err != nil {
			return "", err
		}
		return g.generateOnce(ctx, modelName, prompt, genConfig)
	})
	if err != nil {
		return "", fmt.Errorf("記事本文の生成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "記事本文を生成しました", "model", modelName, "chars", len([]rune(text)))

	if g.cache != nil {
		g.cache.Refresh(ctx, modelName, text)
	}
	return text, nil
}

// ParseGeneratedContent は生成テキストを記事のフィールドに分解します。
func (g *GeminiContentGenerator) ParseGeneratedContent(text string) domain.ParsedContent {
	return g.parser.Parse(text)
}

func (g *GeminiContentGenerator) generateOnce(ctx context.Context, modelName, prompt string, genConfig *genai.GenerateContentConfig) (string, error) {
	resp, err := g.model.GenerateContent(ctx, modelName, genai.Text(prompt), genConfig)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.ExternalServiceError{
				Service:    geminiServiceName,
				StatusCode: apiErr.Code,
				Message:    truncateString(apiErr.Message, 500),
				Err:        err,
			}
		}
		return "", fmt.Errorf("Gemini API へのリクエストに失敗しました: %w", err)
	}

	text, ok := firstCandidateText(resp)
	if !ok {
		return "", &domain.ExternalServiceError{
			Service: geminiServiceName,
			Message: fmt.Sprintf("レスポンスに candidates[0].content のテキストが含まれていません (finish_reason=%s)", finishReason(resp)),
		}
	}
	return text, nil
}

// generationConfig は呼び出しごとに新しい生成設定を返します。
func (g *GeminiContentGenerator) generationConfig() *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.cfg.Temperature),
		TopP:            genai.Ptr(g.cfg.TopP),
		TopK:            genai.Ptr(g.cfg.TopK),
		MaxOutputTokens: g.cfg.MaxOutputTokens,
		StopSequences:   g.cfg.StopSequences,
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
		},
	}
	if g.cfg.SystemInstruction != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(g.cfg.SystemInstruction, genai.RoleUser)
	}
	return genConfig
}

// firstCandidateText は最初の候補に含まれるテキストパートを連結して返します。思考パートは除外します。
// SAFETY や MAX_TOKENS で打ち切られ、テキストが1文字もない候補は不正なレスポンスとして扱います。
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", false
	}
	return sb.String(), true
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}
