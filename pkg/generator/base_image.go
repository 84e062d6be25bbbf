package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/image/draw"
)

// ErrNoBaseImage はベース画像のディレクトリに候補が1枚もないことを表します。
var ErrNoBaseImage = errors.New("ベース画像が見つかりません")

var baseImageExts = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}

// BaseImage は img2img の入力に使う参照画像です。
type BaseImage struct {
	Path string
	Data []byte // 要求サイズに変換済みの PNG。変換できなかった場合は元のバイト列
}

// BaseImagePicker はディレクトリからベース画像をランダムに選び、生成サイズに合わせて変換します。
type BaseImagePicker struct {
	dir       string
	width     int
	height    int
	listCache *cache.Cache
	pickIndex func(n int) int
}

// NewBaseImagePicker は BaseImagePicker を初期化します。width か height が 0 以下の場合は変換しません。
func NewBaseImagePicker(dir string, width, height int) *BaseImagePicker {
	return &BaseImagePicker{
		dir:       dir,
		width:     width,
		height:    height,
		listCache: cache.New(30*time.Minute, 1*time.Hour),
		pickIndex: rand.IntN,
	}
}

// Pick はベース画像を1枚選んで返します。候補がない場合は ErrNoBaseImage を返します。
func (p *BaseImagePicker) Pick(ctx context.Context) (*BaseImage, error) {
	files, err := p.list()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoBaseImage
	}

	path := files[p.pickIndex(len(files))]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ベース画像 '%s' の読み込みに失敗しました: %w", path, err)
	}
	slog.InfoContext(ctx, "ベース画像を選択しました", "path", path)

	resized, err := p.resize(data)
	if err != nil {
		slog.WarnContext(ctx, "ベース画像を変換できないため元のデータを使います", "path", path, "error", err)
		return &BaseImage{Path: path, Data: data}, nil
	}
	return &BaseImage{Path: path, Data: resized}, nil
}

// list は候補ファイルを名前順で返します。ディレクトリがなければ作成します。
func (p *BaseImagePicker) list() ([]string, error) {
	if v, ok := p.listCache.Get(p.dir); ok {
		return v.([]string), nil
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ベース画像ディレクトリの作成に失敗しました: %w", err)
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("ベース画像ディレクトリの読み込みに失敗しました: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := baseImageExts[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(p.dir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) > 0 {
		p.listCache.Set(p.dir, files, cache.DefaultExpiration)
	}
	return files, nil
}

func (p *BaseImagePicker) resize(data []byte) ([]byte, error) {
	if p.width <= 0 || p.height <= 0 {
		return data, nil
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("画像のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
