package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/parser"
)

const postExt = ".md"

// FilePostRepository は記事を Markdown ファイルとしてディレクトリに保存します。
type FilePostRepository struct {
	writer   OutputWriter
	postsDir string
}

// NewFilePostRepository は FilePostRepository を初期化します。
func NewFilePostRepository(writer OutputWriter, postsDir string) *FilePostRepository {
	return &FilePostRepository{
		writer:   writer,
		postsDir: postsDir,
	}
}

// Save は記事をファイルに書き出します。同じファイル名の記事は上書きされます。
// 失敗した場合は *domain.PersistenceError を返します。
func (r *FilePostRepository) Save(ctx context.Context, post *domain.Post) error {
	target := post.Filename
	if target == "" {
		target = domain.BuildFilename(r.postsDir, post.Date, post.Slug)
	}

	data, err := FormatPost(post)
	if err != nil {
		return &domain.PersistenceError{Path: target, Err: err}
	}
	if err := r.writer.Write(ctx, target, bytes.NewReader(data), "text/markdown; charset=utf-8"); err != nil {
		return &domain.PersistenceError{Path: target, Err: err}
	}

	slog.InfoContext(ctx, "記事を保存しました", "path", target, "bytes", len(data))
	return nil
}

// GetLast は更新日時が最も新しい記事を読み込みます。
// ディレクトリが存在しない、または記事が1件もない場合は nil を返します。
func (r *FilePostRepository) GetLast(ctx context.Context) (*domain.Post, error) {
	entries, err := os.ReadDir(r.postsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事ディレクトリ '%s' の読み込みに失敗しました: %w", r.postsDir, err)
	}

	var (
		latestName string
		latestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), postExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			slog.WarnContext(ctx, "ファイル情報を取得できないためスキップします", "file", e.Name(), "error", err)
			continue
		}
		mod := info.ModTime()
		// 同時刻の場合は名前の大きい方 (日付の新しい方) を優先します。
		if latestName == "" || mod.After(latestTime) || (mod.Equal(latestTime) && e.Name() > latestName) {
			latestName, latestTime = e.Name(), mod
		}
	}
	if latestName == "" {
		return nil, nil
	}

	path := filepath.Join(r.postsDir, latestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("記事 '%s' の読み込みに失敗しました: %w", path, err)
	}

	post := parser.ParsePostFile(path, data)
	slog.InfoContext(ctx, "直前の記事を読み込みました", "path", path, "title", post.Title)
	return post, nil
}
