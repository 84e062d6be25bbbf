package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-autopost/pkg/config"
	"github.com/shouni/go-autopost/pkg/domain"
	"github.com/shouni/go-autopost/pkg/prompts"
	"github.com/shouni/go-autopost/pkg/retry"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAssets struct {
	saved map[string][]byte
}

func (f *fakeAssets) SaveImage(_ context.Context, fileName string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[fileName] = data
	return "/assets/img/posts/" + fileName, nil
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

type imageTestEnv struct {
	gen    *CloudflareImageGenerator
	assets *fakeAssets
	calls  *int
	bodies *[]img2imgRequest
}

func newImageTestEnv(t *testing.T, withCreds, withBase bool, handler http.HandlerFunc) *imageTestEnv {
	t.Helper()
	calls := 0
	var bodies []img2imgRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/client/v4/accounts/acc-123/ai/run/@cf/runwayml/stable-diffusion-v1-5-img2img" {
			t.Errorf("想定外のパスです: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer cf-token" {
			t.Errorf("認証ヘッダーが違います: %s", r.Header.Get("Authorization"))
		}
		var body img2imgRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("リクエストをデコードできません: %v", err)
		}
		bodies = append(bodies, body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	baseDir := filepath.Join(t.TempDir(), "base")
	if withBase {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeTestPNG(t, filepath.Join(baseDir, "fundo.png"), 40, 20)
	}

	cfg := config.DefaultConfig()
	cfg.CloudflareBaseURL = srv.URL + "/client/v4/"
	if withCreds {
		cfg.CloudflareAPIToken = "cf-token"
		cfg.CloudflareAccountID = "acc-123"
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		t.Fatal(err)
	}
	assets := &fakeAssets{}
	gen := NewCloudflareImageGenerator(cfg, srv.Client(), pb,
		NewBaseImagePicker(baseDir, cfg.ImageWidth, cfg.ImageHeight),
		assets,
		WithImageRetryPolicy(retry.New(3, time.Millisecond)),
		WithIDGenerator(func() string { return "fixed-id" }),
	)
	return &imageTestEnv{gen: gen, assets: assets, calls: &calls, bodies: &bodies}
}

func TestCloudflareImageGenerator_GenerateImage(t *testing.T) {
	ctx := context.Background()

	t.Run("認証情報がなければ何もしない", func(t *testing.T) {
		env := newImageTestEnv(t, false, true, func(w http.ResponseWriter, r *http.Request) {})
		got, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body")
		if err != nil || got != "" {
			t.Fatalf("スキップされるはずです: %q, %v", got, err)
		}
		if *env.calls != 0 {
			t.Errorf("API は呼ばれないはずです")
		}
	})

	t.Run("ベース画像がなければ何もしない", func(t *testing.T) {
		env := newImageTestEnv(t, true, false, func(w http.ResponseWriter, r *http.Request) {})
		got, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body")
		if err != nil || got != "" {
			t.Fatalf("スキップされるはずです: %q, %v", got, err)
		}
		if _, err := os.Stat(env.gen.picker.dir); err != nil {
			t.Errorf("ベース画像ディレクトリが作成されていません: %v", err)
		}
	})

	t.Run("PNG のバイナリはそのまま保存する", func(t *testing.T) {
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngMagic)
		})
		got, err := env.gen.GenerateImage(ctx, "Título", "go", "tag", "body")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got != "/assets/img/posts/fixed-id.png" {
			t.Errorf("公開パスが違います: %s", got)
		}
		if !bytes.Equal(env.assets.saved["fixed-id.png"], pngMagic) {
			t.Error("保存内容が変更されています")
		}

		body := (*env.bodies)[0]
		if body.NumSteps != 20 || body.Guidance != 8.5 || body.Strength != 0.85 || body.Width != 630 || body.Height != 1200 {
			t.Errorf("拡散パラメータが違います: %+v", body)
		}
		if !strings.Contains(body.NegativePrompt, "watermark") || !strings.Contains(body.Prompt, "Title: Título") {
			t.Errorf("プロンプトが違います: %+v", body)
		}
		raw, err := base64.StdEncoding.DecodeString(body.ImageB64)
		if err != nil {
			t.Fatalf("ベース画像が base64 ではありません: %v", err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(raw))
		if err != nil || cfg.Width != 630 || cfg.Height != 1200 {
			t.Errorf("ベース画像が生成サイズに変換されていません: %+v, %v", cfg, err)
		}
	})

	t.Run("Content-Type がなくてもマジックバイトで判定する", func(t *testing.T) {
		jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01")
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(jpeg)
		})
		if _, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body"); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !bytes.Equal(env.assets.saved["fixed-id.png"], jpeg) {
			t.Error("保存内容が変更されています")
		}
	})

	t.Run("JSON の base64 結果をデコードして保存する", func(t *testing.T) {
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"result":  base64.StdEncoding.EncodeToString(pngMagic),
			})
		})
		if _, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body"); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !bytes.Equal(env.assets.saved["fixed-id.png"], pngMagic) {
			t.Error("デコードされた画像が保存されていません")
		}
	})

	t.Run("success=false は再試行の上限まで試して失敗する", func(t *testing.T) {
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success": false}`))
		})
		got, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body")
		var extErr *domain.ExternalServiceError
		if !errors.As(err, &extErr) || got != "" {
			t.Fatalf("ExternalServiceError が返されていません: %q, %v", got, err)
		}
		if *env.calls != 3 {
			t.Errorf("呼び出し回数が違います: %d", *env.calls)
		}
		if len(env.assets.saved) != 0 {
			t.Error("何も保存されないはずです")
		}
	})

	t.Run("result がなければ失敗する", func(t *testing.T) {
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": true}`))
		})
		if _, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body"); err == nil {
			t.Fatal("エラーが返されるはずです")
		}
	})

	t.Run("失敗ステータスは再試行される", func(t *testing.T) {
		attempts := 0
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngMagic)
		})
		got, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body")
		if err != nil || got != "/assets/img/posts/fixed-id.png" {
			t.Fatalf("3回目で成功するはずです: %q, %v", got, err)
		}
		if *env.calls != 3 {
			t.Errorf("呼び出し回数が違います: %d", *env.calls)
		}
	})

	t.Run("画像でも JSON でもなければそのまま保存する", func(t *testing.T) {
		env := newImageTestEnv(t, true, true, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("not an image"))
		})
		got, err := env.gen.GenerateImage(ctx, "t", "c", "g", "body")
		if err != nil || got == "" {
			t.Fatalf("フォールバックとして保存されるはずです: %q, %v", got, err)
		}
		if string(env.assets.saved["fixed-id.png"]) != "not an image" {
			t.Error("レスポンスがそのまま保存されていません")
		}
	})
}

func TestCloudflareImageGenerator_CreateImagePrompt(t *testing.T) {
	env := newImageTestEnv(t, false, false, func(w http.ResponseWriter, r *http.Request) {})
	content := strings.Repeat("á", 600)

	got, err := env.gen.CreateImagePrompt("Título", "go", "tag", content)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if !strings.Contains(got, "Content preview: "+strings.Repeat("á", 500)+"...\n") {
		t.Error("本文が先頭500文字に切り詰められていません")
	}
	if strings.Contains(got, strings.Repeat("á", 501)) {
		t.Error("501文字目以降が含まれています")
	}
}
