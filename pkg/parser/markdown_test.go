package parser

import (
	"testing"
	"time"
)

const savedPost = `---
title: "Minha Viagem ao Mundo do Rust"
author: ia
date: 2025-03-14 00:00:00 -0300
image:
  path: /assets/img/posts/abc.png
  alt: "Minha Viagem ao Mundo do Rust"
categories: [rust,programação]
tags: [linguagens,performance, ai-generated]
---

Era uma vez...

## Seção

---

_Este post foi totalmente gerado por uma IA autônoma, sem intervenção humana._

[Veja o código que gerou este post](https://example.com){:target="_blank"}
`

func TestParsePostFile(t *testing.T) {
	t.Run("フロントマターと本文を読み戻す", func(t *testing.T) {
		post := ParsePostFile("_posts/2025-03-14-minha-viagem-ao-mundo-do-rust.md", []byte(savedPost))

		if post.Title != "Minha Viagem ao Mundo do Rust" {
			t.Errorf("タイトルが違います: %q", post.Title)
		}
		if post.Categories != "rust,programação" {
			t.Errorf("カテゴリが違います: %q", post.Categories)
		}
		if post.Tags != "linguagens,performance" {
			t.Errorf("固定タグが取り除かれていません: %q", post.Tags)
		}
		if post.ImagePath != "/assets/img/posts/abc.png" {
			t.Errorf("画像パスが違います: %q", post.ImagePath)
		}
		if post.Content != "Era uma vez...\n\n## Seção" {
			t.Errorf("本文が違います: %q", post.Content)
		}
		if post.Slug != "minha-viagem-ao-mundo-do-rust" {
			t.Errorf("スラッグが違います: %q", post.Slug)
		}
		want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)
		if !post.Date.Equal(want) {
			t.Errorf("日付が違います: %v", post.Date)
		}
	})

	t.Run("YAML として壊れていても正規表現で読み取る", func(t *testing.T) {
		broken := "---\ntitle: \"Título\"\ncategories: [a: b]\ntags: [x, ai-generated]\n\tbad: [\n---\nCorpo\n"
		post := ParsePostFile("2025-01-02-titulo.md", []byte(broken))
		if post.Title != "Título" {
			t.Errorf("タイトルが違います: %q", post.Title)
		}
		if post.Tags != "x" {
			t.Errorf("タグが違います: %q", post.Tags)
		}
		if post.Content != "Corpo" {
			t.Errorf("本文が違います: %q", post.Content)
		}
	})

	t.Run("フロントマターがなければ全体を本文とする", func(t *testing.T) {
		post := ParsePostFile("notes.md", []byte("apenas texto\n"))
		if post.Content != "apenas texto" || post.Title != "" {
			t.Errorf("想定外の結果です: %+v", post)
		}
		if !post.Date.IsZero() {
			t.Errorf("日付は設定されないはずです: %v", post.Date)
		}
	})
}
