package domain

import (
	"path"
	"time"
)

// DateLayout はファイル名とフロントマターで使う日付の書式です。
const DateLayout = "2006-01-02"

// Post はブログ記事1件を表すエンティティです。
// 一度組み立てられた後はリポジトリに渡されるまで変更されません。
type Post struct {
	Title      string
	Categories string // カンマ区切り
	Tags       string // カンマ区切り
	Content    string // Markdown 本文
	Date       time.Time
	Slug       string
	ImagePath  string
	Filename   string // <postsDir>/<YYYY-MM-DD>-<slug>.md
}

// ParsedContent は生成テキストから抽出したフィールドです。
type ParsedContent struct {
	Title      string
	Categories string
	Tags       string
	Content    string
}

// NewPost はパース結果から Post を組み立てます。
// date がゼロ値の場合は現在時刻を使い、Slug と Filename は Title と Date から導出します。
func NewPost(parsed ParsedContent, date time.Time, postsDir, imagePath string) *Post {
	if date.IsZero() {
		date = time.Now()
	}
	slug := Slugify(parsed.Title)
	return &Post{
		Title:      parsed.Title,
		Categories: parsed.Categories,
		Tags:       parsed.Tags,
		Content:    parsed.Content,
		Date:       date,
		Slug:       slug,
		ImagePath:  imagePath,
		Filename:   BuildFilename(postsDir, date, slug),
	}
}

// BuildFilename は日付とスラッグから記事ファイルのパスを導出します。
// 記事ファイル名の導出はこの関数だけが行います。
func BuildFilename(postsDir string, date time.Time, slug string) string {
	return path.Join(postsDir, date.Format(DateLayout)+"-"+slug+".md")
}

// DateString は Date を YYYY-MM-DD 形式で返します。
func (p *Post) DateString() string {
	return p.Date.Format(DateLayout)
}
