package workflow

import (
	"context"

	"github.com/shouni/go-autopost/pkg/domain"
)

// PostRepository は記事の永続化を担います。
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	GetLast(ctx context.Context) (*domain.Post, error)
}

// PreviewWriter は保存済みの記事から HTML プレビューを書き出します。
type PreviewWriter interface {
	WritePreview(ctx context.Context, post *domain.Post) (string, error)
}
