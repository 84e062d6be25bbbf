package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/shouni/go-autopost/pkg/config"
	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/prompts"
	"github.com/shouni/go-autopost/pkg/retry"
)

const (
	cloudflareServiceName = "cloudflare"
	contentPreviewLength  = 500
	maxErrorBodyLength    = 500
)

// HTTPDoer は HTTP リクエストを送信するクライアントです。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AssetSaver は生成画像を保存し、記事から参照する公開パスを返します。
type AssetSaver interface {
	SaveImage(ctx context.Context, fileName string, data []byte) (string, error)
}

// img2imgRequest は Workers AI の img2img モデルへのリクエストです。
type img2imgRequest struct {
	Prompt         string  `json:"prompt"`
	ImageB64       string  `json:"image_b64"`
	NegativePrompt string  `json:"negative_prompt"`
	NumSteps       int     `json:"num_steps"`
	Guidance       float64 `json:"guidance"`
	Strength       float64 `json:"strength"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// img2imgEnvelope は JSON で返された場合のレスポンスです。
type img2imgEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CloudflareImageGenerator は Cloudflare Workers AI の img2img で記事のイラストを生成します。
type CloudflareImageGenerator struct {
	cfg           config.Config
	httpClient    HTTPDoer
	promptBuilder prompts.PromptBuilder
	picker        *BaseImagePicker
	assets        AssetSaver
	policy        *retry.Policy
	limiter       *rate.Limiter
	newID         func() string
}

// ImageOption は CloudflareImageGenerator の任意設定です。
type ImageOption func(*CloudflareImageGenerator)

// WithImageRetryPolicy は再試行ポリシーを差し替えます。
func WithImageRetryPolicy(p *retry.Policy) ImageOption {
	return func(g *CloudflareImageGenerator) {
		g.policy = p
	}
}

// WithIDGenerator は保存ファイル名に使う識別子の生成関数を差し替えます。
func WithIDGenerator(newID func() string) ImageOption {
	return func(g *CloudflareImageGenerator) {
		g.newID = newID
	}
}

// NewCloudflareImageGenerator は CloudflareImageGenerator を初期化します。
func NewCloudflareImageGenerator(
	cfg config.Config,
	httpClient HTTPDoer,
	pb prompts.PromptBuilder,
	picker *BaseImagePicker,
	assets AssetSaver,
	opts ...ImageOption,
) *CloudflareImageGenerator {
	g := &CloudflareImageGenerator{
		cfg:           cfg,
		httpClient:    httpClient,
		promptBuilder: pb,
		picker:        picker,
		assets:        assets,
		policy:        retry.New(cfg.MaxAttempts, cfg.ImageRetryDelay, retry.WithName("cloudflare.img2img")),
		limiter:       newLimiter(cfg.RateInterval),
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateImagePrompt は記事のメタデータからイラスト用プロンプトを作ります。本文は先頭500文字だけを使います。
func (g *CloudflareImageGenerator) CreateImagePrompt(title, categories, tags, contentPreview string) (string, error) {
	p, err := g.promptBuilder.Build(prompts.ModeImage, prompts.TemplateData{
		Title:      title,
		Categories: categories,
		Tags:       tags,
		Content:    preview(contentPreview, contentPreviewLength),
	})
	if err != nil {
		return "", fmt.Errorf("画像プロンプトの生成に失敗: %w", err)
	}
	return p, nil
}

// GenerateImage はイラストを生成して保存し、公開パスを返します。
// 認証情報やベース画像がない場合は何もせず空文字を返します。
func (g *CloudflareImageGenerator) GenerateImage(ctx context.Context, title, categories, tags, contentPreview string) (string, error) {
	if g.cfg.CloudflareAPIToken == "" || g.cfg.CloudflareAccountID == "" {
		slog.InfoContext(ctx, "Cloudflare の認証情報がないため画像生成をスキップします")
		return "", nil
	}

	base, err := g.picker.Pick(ctx)
	if errors.Is(err, ErrNoBaseImage) {
		slog.InfoContext(ctx, "ベース画像がないため画像生成をスキップします", "dir", g.picker.dir)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	prompt, err := g.CreateImagePrompt(title, categories, tags, contentPreview)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "画像プロンプトを作成しました", "prompt", truncateString(prompt, 100))

	payload, err := json.Marshal(img2imgRequest{
		Prompt:         prompt,
		ImageB64:       base64.StdEncoding.EncodeToString(base.Data),
		NegativePrompt: g.cfg.NegativePrompt,
		NumSteps:       g.cfg.NumSteps,
		Guidance:       g.cfg.Guidance,
		Strength:       g.cfg.Strength,
		Width:          g.cfg.ImageWidth,
		Height:         g.cfg.ImageHeight,
	})
	if err != nil {
		return "", fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	endpoint, err := url.JoinPath(g.cfg.CloudflareBaseURL, "accounts", g.cfg.CloudflareAccountID, "ai", "run", g.cfg.CloudflareModel)
	if err != nil {
		return "", fmt.Errorf("エンドポイントの組み立てに失敗しました: %w", err)
	}

	image, err := retry.DoValue(ctx, g.policy, func(ctx context.Context) ([]byte, error) {
		if err := waitLimiter(ctx, g.limiter); err != nil {
			return nil, err
		}
		return g.requestImage(ctx, endpoint, payload)
	})
	if err != nil {
		return "", fmt.Errorf("画像生成に失敗しました: %w", err)
	}

	fileName := g.newID() + ".png"
	publicPath, err := g.assets.SaveImage(ctx, fileName, image)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "画像を保存しました", "path", publicPath, "bytes", len(image))
	return publicPath, nil
}

func (g *CloudflareImageGenerator) requestImage(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.CloudflareAPIToken)
	req.Header.Set("Content-Type", "application/json")

	slog.InfoContext(ctx, "画像生成 API を呼び出します", "model", g.cfg.CloudflareModel)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("画像生成 API へのリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExternalServiceError{
			Service:    cloudflareServiceName,
			StatusCode: resp.StatusCode,
			Message:    truncateString(string(body), maxErrorBodyLength),
		}
	}

	return decodeImageBody(ctx, resp.Header.Get("Content-Type"), body)
}

// decodeImageBody はレスポンスから画像のバイト列を取り出します。
// 画像そのもの、success と base64 の result を持つ JSON、そのどちらでもない本文、の順に判定します。
func decodeImageBody(ctx context.Context, contentType string, body []byte) ([]byte, error) {
	if isImage(contentType, body) {
		return body, nil
	}

	var envelope img2imgEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		slog.WarnContext(ctx, "レスポンスが画像でも JSON でもないため、そのまま保存します", "content_type", contentType)
		return body, nil
	}

	if !envelope.Success {
		msg := "API が失敗を返しました"
		if len(envelope.Errors) > 0 {
			msg += ": " + envelope.Errors[0].Message
		}
		return nil, &domain.ExternalServiceError{Service: cloudflareServiceName, Message: msg}
	}

	encoded, ok := resultImage(envelope.Result)
	if !ok {
		return nil, &domain.ExternalServiceError{Service: cloudflareServiceName, Message: "レスポンスに result が含まれていません"}
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: cloudflareServiceName, Message: "result の base64 デコードに失敗しました", Err: err}
	}
	return image, nil
}

// isImage は Content-Type かマジックバイトから PNG/JPEG かどうかを判定します。
func isImage(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "image/png") || strings.Contains(ct, "image/jpeg") {
		return true
	}
	mt := mimetype.Detect(body)
	return mt.Is("image/png") || mt.Is("image/jpeg")
}

// resultImage は result が文字列、または image フィールドを持つオブジェクトの場合に base64 文字列を返します。
func resultImage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var obj struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Image != "" {
		return obj.Image, true
	}
	return "", false
}
