package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/go-autopost/pkg/domain"
)

// ContentGenerator は記事本文のプロンプト構築、生成、解析を担う契約です。
type ContentGenerator interface {
	// CreatePrompt は生成用プロンプトを返します。last が nil でなければ直前の記事を文脈として埋め込みます。
	CreatePrompt(last *domain.Post) (string, error)
	// GenerateContent はプロンプトをテキスト生成 API に送り、最初の候補のテキストを返します。
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// ParseGeneratedContent は生成テキストからフィールドを取り出します。失敗はしません。
	ParseGeneratedContent(text string) domain.ParsedContent
}

// ImageGenerator は記事のイラスト生成を担う契約です。
type ImageGenerator interface {
	CreateImagePrompt(title, categories, tags, contentPreview string) (string, error)
	// GenerateImage は保存した画像の公開パスを返します。生成を行わなかった場合は空文字を返します。
	GenerateImage(ctx context.Context, title, categories, tags, contentPreview string) (string, error)
}

// ContentModel は genai.Models のうち本文生成で使うメソッドです。
type ContentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ContextCache はサーバー側のコンテキストキャッシュを扱う契約です。
type ContextCache interface {
	// Lookup は model で利用できる有効なキャッシュ名を返します。なければ空文字です。
	Lookup(ctx context.Context, model string) string
	// Refresh は生成結果で新しいキャッシュを作成し、古いものを置き換えます。失敗は記録のみ行います。
	Refresh(ctx context.Context, model, text string)
}
