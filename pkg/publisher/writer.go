package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OutputWriter はデータを保存先に書き出すためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムへ書き出す OutputWriter です。
// 親ディレクトリが存在しない場合は作成します。
type LocalWriter struct{}

// NewLocalWriter は LocalWriter を返します。
func NewLocalWriter() *LocalWriter {
	return &LocalWriter{}
}

// Write は r の内容で path を上書きします。
func (w *LocalWriter) Write(ctx context.Context, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリ '%s' の作成に失敗しました: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("ファイル '%s' を開けません: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("ファイル '%s' への書き込みに失敗しました: %w", path, err)
	}
	return f.Close()
}
