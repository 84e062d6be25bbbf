package parser

import "regexp"

var (
	// leadingHashRegex は見出し記号として行頭に付いた "#" を捉えます。
	leadingHashRegex = regexp.MustCompile(`^#+\s*`)

	// titlePrefixRegex は大文字小文字を問わない "title:" 接頭辞を捉えます。
	titlePrefixRegex = regexp.MustCompile(`(?i)^title\s*:\s*`)

	// categoriesPrefixRegex は "categorias:" または "categories:" 接頭辞を捉えます。
	categoriesPrefixRegex = regexp.MustCompile(`^(?:categorias|categories)\s*:\s*`)

	// tagsPrefixRegex は "tags:" 接頭辞を捉えます。
	tagsPrefixRegex = regexp.MustCompile(`^tags\s*:\s*`)

	// FrontMatterRegex は記事ファイル先頭の "---" で囲まれたフロントマターと、その後ろの本文をキャプチャします。
	FrontMatterRegex = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|\z)(.*)\z`)

	// TitleFieldRegex は YAML として解釈できない場合の title 行を捉えます。
	TitleFieldRegex = regexp.MustCompile(`(?m)^title: "([^"]+)"`)

	// CategoriesFieldRegex は categories のフローリストの中身をそのまま捉えます。
	CategoriesFieldRegex = regexp.MustCompile(`(?m)^categories: \[(.*)\]`)

	// TagsFieldRegex は tags のフローリストの中身をそのまま捉えます。
	TagsFieldRegex = regexp.MustCompile(`(?m)^tags: \[(.*)\]`)

	// FileDateRegex はファイル名先頭の YYYY-MM-DD を捉えます。
	FileDateRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

	// FooterRegex は本文の後ろに付く区切り線と自動生成の注記を捉えます。
	FooterRegex = regexp.MustCompile(`(?s)\n---\s*\n_Este post.*\z`)
)
