package publisher

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/parser"
)

// Footer はすべての記事の末尾に付与される生成元の表示です。
const Footer = "\n\n---" +
	"\n\n_Este post foi totalmente gerado por uma IA autônoma, sem intervenção humana._" +
	"\n\n[Veja o código que gerou este post](https://github.com/cleissonbarbosa/cleissonbarbosa.github.io/blob/main/generate_post/README.md){:target=\"_blank\"}\n"

var frontMatterTemplate = template.Must(template.New("front_matter").Parse(`---
title: "{{.Title}}"
author: ia
date: {{.Date}} 00:00:00 -0300
image:
  path: {{.ImagePath}}
  alt: "{{.Title}}"
categories: [{{.Categories}}]
tags: [{{.Tags}}]
---

`))

type frontMatterData struct {
	Title      string
	Date       string
	ImagePath  string
	Categories string
	Tags       string
}

// FormatPost は記事をフロントマター、本文、フッターの順に並べたファイル内容に変換します。
func FormatPost(post *domain.Post) ([]byte, error) {
	var buf bytes.Buffer
	err := frontMatterTemplate.Execute(&buf, frontMatterData{
		Title:      post.Title,
		Date:       post.DateString(),
		ImagePath:  post.ImagePath,
		Categories: post.Categories,
		Tags:       withGeneratedTag(post.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("フロントマターの生成に失敗しました: %w", err)
	}
	buf.WriteString(post.Content)
	buf.WriteString(Footer)
	return buf.Bytes(), nil
}

func withGeneratedTag(tags string) string {
	tags = strings.TrimSpace(tags)
	if tags == "" {
		return parser.GeneratedTag
	}
	return tags + ", " + parser.GeneratedTag
}
