package generator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// NewHTTPClient は外部 API 呼び出しに使う HTTP クライアントを生成します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewGeminiClient は Gemini API 用の genai クライアントを初期化します。
// baseURL が空の場合は SDK の既定値を使います。
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}
