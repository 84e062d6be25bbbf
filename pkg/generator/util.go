package generator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// newLimiter は interval ごとに1リクエストを許可するリミッターを返します。interval が 0 以下なら nil です。
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
	}
	return nil
}

// truncateString は s を先頭 maxLen 文字までに切り詰めます。
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// preview は s の先頭 maxLen 文字を返します。
func preview(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
