package publisher

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ResolveOutputPath は、ベースとなるディレクトリとファイル名から出力パスを生成します。
// ファイル名にディレクトリ成分が含まれる場合はエラーを返します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	if fileName == "" || fileName == "." || fileName == ".." {
		return "", fmt.Errorf("無効なファイル名です: %q", fileName)
	}
	if strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("ファイル名にパス区切りは使えません: %q", fileName)
	}
	return filepath.Join(baseDir, fileName), nil
}

// PublicPath はサイトのルートから見た公開パスを返します。
// 例: ("assets/img/posts", "a.png") -> "/assets/img/posts/a.png"
func PublicPath(publicDir, fileName string) string {
	dir := strings.TrimPrefix(filepath.ToSlash(publicDir), "./")
	return path.Join("/", dir, fileName)
}
