package parser

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-autopost/pkg/domain"
)

// GeneratedTag は保存時にすべての記事へ付与される固定タグです。
const GeneratedTag = "ai-generated"

// frontMatter は記事ファイルのフロントマターのうち読み戻す項目です。
type frontMatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Image struct {
		Path string `yaml:"path"`
		Alt  string `yaml:"alt"`
	} `yaml:"image"`
}

// ParsePostFile は保存済みの記事ファイルを解析して Post を返します。
// フロントマターが YAML として壊れていても、取り出せる項目だけを埋めて返します。
func ParsePostFile(filename string, data []byte) *domain.Post {
	text := string(data)
	post := &domain.Post{Filename: filename}

	base := filepath.Base(filename)
	if m := FileDateRegex.FindStringSubmatch(base); m != nil {
		if d, err := time.ParseInLocation(domain.DateLayout, m[1], time.Local); err == nil {
			post.Date = d
			post.Slug = strings.TrimPrefix(strings.TrimSuffix(base, filepath.Ext(base)), m[1]+"-")
		}
	}

	header, body := "", text
	if m := FrontMatterRegex.FindStringSubmatch(text); m != nil {
		header, body = m[1], m[2]
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		slog.Debug("フロントマターを YAML として解釈できないため正規表現で読み取ります", "file", filename, "error", err)
		if m := TitleFieldRegex.FindStringSubmatch(header); m != nil {
			fm.Title = m[1]
		}
	}
	post.Title = fm.Title
	post.ImagePath = fm.Image.Path

	// フローリストは書かれたままの文字列で読み戻します。
	if m := CategoriesFieldRegex.FindStringSubmatch(header); m != nil {
		post.Categories = m[1]
	}
	if m := TagsFieldRegex.FindStringSubmatch(header); m != nil {
		post.Tags = stripGeneratedTag(m[1])
	}

	post.Content = strings.TrimSpace(FooterRegex.ReplaceAllString(body, ""))
	return post
}

func stripGeneratedTag(tags string) string {
	tags = strings.TrimSpace(tags)
	if tags == GeneratedTag {
		return ""
	}
	return strings.TrimSuffix(tags, ", "+GeneratedTag)
}
