package parser

import (
	"regexp"
	"strings"

	"github.com/shouni/go-autopost/pkg/domain"
)

// Parser は生成モデルの出力から記事のフィールドを取り出すインターフェースです。
type Parser interface {
	Parse(text string) domain.ParsedContent
}

// ContentParser は「タイトル / カテゴリ / タグ / 空行 / 本文」の順で書かれたテキストを寛容に解析します。
type ContentParser struct{}

// NewContentParser は ContentParser を初期化します。
func NewContentParser() *ContentParser {
	return &ContentParser{}
}

// Parse は ParseGeneratedContent を呼び出します。
func (p *ContentParser) Parse(text string) domain.ParsedContent {
	return ParseGeneratedContent(text)
}

// ParseGeneratedContent はテキストからタイトル、カテゴリ、タグ、本文を取り出します。
// 見つからないフィールドは空文字になり、どのような入力でも失敗しません。
func ParseGeneratedContent(text string) domain.ParsedContent {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	c := newLineCursor(strings.Split(strings.TrimSpace(text), "\n"))

	var parsed domain.ParsedContent
	if title, ok := c.next(); ok {
		parsed.Title = normalizeTitle(title)
	}

	c.skipBlank()
	if categories, ok := c.next(); ok {
		parsed.Categories = normalizeList(categories, categoriesPrefixRegex)
	}

	c.skipBlank()
	if tags, ok := c.next(); ok {
		parsed.Tags = normalizeList(tags, tagsPrefixRegex)
	}

	c.skipBlank()
	parsed.Content = strings.TrimSpace(strings.Join(c.rest(), "\n"))

	return parsed
}

func normalizeTitle(line string) string {
	s := strings.ReplaceAll(strings.TrimSpace(line), `"`, "")
	s = leadingHashRegex.ReplaceAllString(s, "")
	s = titlePrefixRegex.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(s)
}

func normalizeList(line string, prefix *regexp.Regexp) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = prefix.ReplaceAllString(s, "")
	s = strings.NewReplacer("[", "", "]", "").Replace(s)
	return strings.TrimSpace(s)
}
