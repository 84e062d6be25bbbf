package contextcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"
)

const (
	DefaultTTL      = time.Hour
	DefaultFile     = ".cache/gemini_cache.json"
	displayName     = "autopost-last-post"
	currentRecordID = "current"
)

// Record はローカルに保存するコンテキストキャッシュのメタデータです。
// サーバー側で先に期限切れになった場合、このファイルとは食い違うことがあります。
type Record struct {
	Name   string    `json:"name"`
	Model  string    `json:"model"`
	Expiry time.Time `json:"expiry"`
}

// CacheService は genai.Caches のうち利用するメソッドです。
type CacheService interface {
	Create(ctx context.Context, model string, config *genai.CreateCachedContentConfig) (*genai.CachedContent, error)
	Delete(ctx context.Context, name string, config *genai.DeleteCachedContentConfig) (*genai.DeleteCachedContentResponse, error)
}

// Manager は直前の生成結果をサーバー側キャッシュとして保持し、次回の生成で再利用できるようにします。
type Manager struct {
	service           CacheService
	path              string
	ttl               time.Duration
	systemInstruction string
	memory            *cache.Cache
	now               func() time.Time
}

// NewManager は Manager を初期化します。
func NewManager(service CacheService, path string, ttl time.Duration, systemInstruction string) *Manager {
	if path == "" {
		path = DefaultFile
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		service:           service,
		path:              path,
		ttl:               ttl,
		systemInstruction: systemInstruction,
		memory:            cache.New(ttl, 10*time.Minute),
		now:               time.Now,
	}
}

// Current は期限内のレコードを返します。ない場合は nil です。
func (m *Manager) Current() (*Record, error) {
	if v, ok := m.memory.Get(currentRecordID); ok {
		rec := v.(Record)
		return &rec, nil
	}

	rec, err := m.readRecord()
	if err != nil || rec == nil {
		return nil, err
	}
	if !rec.Expiry.After(m.now()) {
		return nil, nil
	}
	m.remember(*rec)
	return rec, nil
}

// Lookup は model と一致する期限内のキャッシュ名を返します。
func (m *Manager) Lookup(ctx context.Context, model string) string {
	rec, err := m.Current()
	if err != nil {
		slog.WarnContext(ctx, "キャッシュ情報の読み込みに失敗しました", "path", m.path, "error", err)
		return ""
	}
	if rec == nil || rec.Model != model {
		return ""
	}
	return rec.Name
}

// Refresh は text を内容とする新しいキャッシュを作成し、以前のキャッシュを削除します。
// どの段階の失敗も記録するだけで呼び出し元には返しません。
func (m *Manager) Refresh(ctx context.Context, model, text string) {
	previous, err := m.readRecord()
	if err != nil {
		slog.WarnContext(ctx, "以前のキャッシュ情報を読み込めません", "path", m.path, "error", err)
	}

	createConfig := &genai.CreateCachedContentConfig{
		TTL:         m.ttl,
		DisplayName: displayName,
		Contents:    []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
	}
	if m.systemInstruction != "" {
		createConfig.SystemInstruction = genai.NewContentFromText(m.systemInstruction, genai.RoleUser)
	}

	created, err := m.service.Create(ctx, model, createConfig)
	if err != nil {
		slog.WarnContext(ctx, "コンテキストキャッシュの作成に失敗しました", "model", model, "error", err)
		return
	}

	rec := Record{Name: created.Name, Model: model, Expiry: created.ExpireTime}
	if rec.Expiry.IsZero() {
		rec.Expiry = m.now().Add(m.ttl)
	}
	if err := m.writeRecord(rec); err != nil {
		slog.WarnContext(ctx, "キャッシュ情報の保存に失敗しました", "path", m.path, "error", err)
	}
	m.remember(rec)
	slog.InfoContext(ctx, "コンテキストキャッシュを作成しました", "cache", rec.Name, "expiry", rec.Expiry)

	if previous != nil && previous.Name != "" && previous.Name != rec.Name {
		if _, err := m.service.Delete(ctx, previous.Name, nil); err != nil {
			slog.WarnContext(ctx, "古いコンテキストキャッシュの削除に失敗しました", "cache", previous.Name, "error", err)
		}
	}
}

func (m *Manager) remember(rec Record) {
	if d := rec.Expiry.Sub(m.now()); d > 0 {
		m.memory.Set(currentRecordID, rec, d)
	}
}

func (m *Manager) readRecord() (*Record, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("キャッシュ情報の読み込みに失敗しました: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("キャッシュ情報のデコードに失敗しました: %w", err)
	}
	return &rec, nil
}

func (m *Manager) writeRecord(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}
