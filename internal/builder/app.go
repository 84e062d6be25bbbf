package builder

import (
	"net/http"

	"google.golang.org/genai"

	"github.com/shouni/go-autopost/internal/config"
	"github.com/shouni/go-autopost/pkg/prompts"
	"github.com/shouni/go-autopost/pkg/publisher"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config        *config.Config             // Configは、環境変数から読み込まれた設定です（APIキー、出力先など）。
	Options       config.GenerateOptions     // Optionsは、コマンドラインから渡された実行時の設定です。
	Writer        publisher.OutputWriter     // Writerは、生成された記事や画像を保存するための出力先です。
	PromptBuilder *prompts.TextPromptBuilder // PromptBuilderは、本文と画像のプロンプトを組み立てます。
	aiClient      *genai.Client              // aiClient はGeminiの通信に使う共通クライアント。API キーがない場合は nil
	httpClient    *http.Client               // httpClient は外部APIとの通信に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient *http.Client,
	aiClient *genai.Client,
	writer publisher.OutputWriter,
	pb *prompts.TextPromptBuilder,
) AppContext {
	return AppContext{
		Config:        cfg,
		Options:       cfg.Options,
		Writer:        writer,
		PromptBuilder: pb,
		aiClient:      aiClient,
		httpClient:    httpClient,
	}
}
