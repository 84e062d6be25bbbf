package publisher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shouni/go-autopost/pkg/domain"
)

func samplePost(postsDir string) *domain.Post {
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)
	return domain.NewPost(domain.ParsedContent{
		Title:      "Minha Viagem ao Mundo do Rust",
		Categories: "programação, rust",
		Tags:       "rust, aprendizado",
		Content:    "## Introdução\n\nTexto do post.",
	}, date, postsDir, "/assets/img/posts/abc.png")
}

func TestFormatPost(t *testing.T) {
	got, err := FormatPost(samplePost("_posts"))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	want := "---\n" +
		"title: \"Minha Viagem ao Mundo do Rust\"\n" +
		"author: ia\n" +
		"date: 2024-05-10 00:00:00 -0300\n" +
		"image:\n" +
		"  path: /assets/img/posts/abc.png\n" +
		"  alt: \"Minha Viagem ao Mundo do Rust\"\n" +
		"categories: [programação, rust]\n" +
		"tags: [rust, aprendizado, ai-generated]\n" +
		"---\n\n" +
		"## Introdução\n\nTexto do post." +
		"\n\n---\n\n_Este post foi totalmente gerado por uma IA autônoma, sem intervenção humana._\n\n" +
		"[Veja o código que gerou este post](https://github.com/cleissonbarbosa/cleissonbarbosa.github.io/blob/main/generate_post/README.md){:target=\"_blank\"}\n"

	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("ファイル内容が違います (-want +got):\n%s", diff)
	}
}

func TestFormatPost_EmptyTags(t *testing.T) {
	post := samplePost("_posts")
	post.Tags = ""
	got, err := FormatPost(post)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "\ntags: [ai-generated]\n") {
		t.Errorf("固定タグだけが出力されるはずです:\n%s", got)
	}
}

func TestFilePostRepository_SaveAndGetLast(t *testing.T) {
	ctx := context.Background()
	postsDir := filepath.Join(t.TempDir(), "_posts")
	repo := NewFilePostRepository(NewLocalWriter(), postsDir)

	post := samplePost(postsDir)
	if err := repo.Save(ctx, post); err != nil {
		t.Fatalf("保存に失敗しました: %v", err)
	}
	if _, err := os.Stat(filepath.Join(postsDir, "2024-05-10-minha-viagem-ao-mundo-do-rust.md")); err != nil {
		t.Fatalf("記事ファイルが見つかりません: %v", err)
	}

	got, err := repo.GetLast(ctx)
	if err != nil {
		t.Fatalf("読み込みに失敗しました: %v", err)
	}
	if diff := cmp.Diff(post, got); diff != "" {
		t.Errorf("読み戻した記事が違います (-want +got):\n%s", diff)
	}
}

func TestFilePostRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	postsDir := t.TempDir()
	repo := NewFilePostRepository(NewLocalWriter(), postsDir)

	first := samplePost(postsDir)
	second := samplePost(postsDir)
	second.Content = "Outro texto."
	for _, p := range []*domain.Post{first, second} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	entries, _ := os.ReadDir(postsDir)
	if len(entries) != 1 {
		t.Fatalf("同名の記事は上書きされるはずです: %d件", len(entries))
	}
	got, _ := repo.GetLast(ctx)
	if got.Content != "Outro texto." {
		t.Errorf("後から保存した内容になっていません: %q", got.Content)
	}
}

func TestFilePostRepository_SaveError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "_posts")
	if err := os.WriteFile(blocker, []byte("file"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo := NewFilePostRepository(NewLocalWriter(), blocker)

	err := repo.Save(context.Background(), samplePost(blocker))
	var pErr *domain.PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("PersistenceError が返されていません: %v", err)
	}
	if filepath.Dir(pErr.Path) != blocker {
		t.Errorf("エラーのパスが違います: %s", pErr.Path)
	}
}

func TestFilePostRepository_GetLast(t *testing.T) {
	ctx := context.Background()

	t.Run("ディレクトリがなければ nil", func(t *testing.T) {
		repo := NewFilePostRepository(NewLocalWriter(), filepath.Join(t.TempDir(), "missing"))
		got, err := repo.GetLast(ctx)
		if err != nil || got != nil {
			t.Fatalf("nil が返されるはずです: %v, %v", got, err)
		}
	})

	t.Run("Markdown がなければ nil", func(t *testing.T) {
		dir := t.TempDir()
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
		_ = os.Mkdir(filepath.Join(dir, "drafts.md"), 0o755)
		got, err := NewFilePostRepository(NewLocalWriter(), dir).GetLast(ctx)
		if err != nil || got != nil {
			t.Fatalf("nil が返されるはずです: %v, %v", got, err)
		}
	})

	t.Run("更新日時が最も新しい記事を選ぶ", func(t *testing.T) {
		dir := t.TempDir()
		files := map[string]time.Time{
			"2024-01-01-antigo.md":  time.Now().Add(-2 * time.Hour),
			"2023-01-01-recente.md": time.Now().Add(-1 * time.Minute),
			"2024-02-01-meio.md":    time.Now().Add(-1 * time.Hour),
		}
		for name, mod := range files {
			path := filepath.Join(dir, name)
			content := "---\ntitle: \"" + name + "\"\n---\n\ncorpo"
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := os.Chtimes(path, mod, mod); err != nil {
				t.Fatal(err)
			}
		}

		got, err := NewFilePostRepository(NewLocalWriter(), dir).GetLast(ctx)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got.Slug != "recente" || got.Title != "2023-01-01-recente.md" || got.Content != "corpo" {
			t.Errorf("選ばれた記事が違います: %+v", got)
		}
	})
}
