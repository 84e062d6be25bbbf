package publisher

import (
	"bytes"
	"context"
	"fmt"
)

// AssetManager は生成画像の保存先と公開パスを管理します。
type AssetManager struct {
	writer    OutputWriter
	baseDir   string // 保存先のディレクトリ (例: "assets/img/posts")
	publicDir string // 記事から参照するときのディレクトリ
}

// AssetOption は AssetManager の任意設定です。
type AssetOption func(*AssetManager)

// WithPublicDir は公開パスのディレクトリを保存先と別にします。
func WithPublicDir(dir string) AssetOption {
	return func(am *AssetManager) {
		am.publicDir = dir
	}
}

// NewAssetManager は AssetManager を初期化します。公開パスは既定で保存先と同じディレクトリです。
func NewAssetManager(writer OutputWriter, baseDir string, opts ...AssetOption) *AssetManager {
	am := &AssetManager{
		writer:    writer,
		baseDir:   baseDir,
		publicDir: baseDir,
	}
	for _, opt := range opts {
		opt(am)
	}
	return am
}

// SaveImage は画像データを保存し、記事から参照する公開パスを返します。
func (am *AssetManager) SaveImage(ctx context.Context, fileName string, data []byte) (string, error) {
	fullPath, err := ResolveOutputPath(am.baseDir, fileName)
	if err != nil {
		return "", fmt.Errorf("asset_manager: %w", err)
	}
	if err := am.writer.Write(ctx, fullPath, bytes.NewReader(data), "image/png"); err != nil {
		return "", fmt.Errorf("asset_manager: 画像の保存に失敗しました: %w", err)
	}
	return PublicPath(am.publicDir, fileName), nil
}
