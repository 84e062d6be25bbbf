package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Slugify はタイトルから URL に使えるスラッグを生成します。
// 発音区別符号を落として小文字化し、単語構成文字以外の連続を1つのハイフンにまとめ、両端のハイフンを取り除きます。
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	s := nonWordRun.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(s, "-")
}
