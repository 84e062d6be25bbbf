package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shouni/go-autopost/pkg/domain"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

// Policy は失敗しうる処理を指数バックオフで再試行するポリシーです。
// n 回目の失敗の後は baseDelay * 2^(n-1) だけ待機し、maxAttempts 回失敗した時点で最後のエラーをそのまま返します。
type Policy struct {
	name        string
	maxAttempts int
	baseDelay   time.Duration
	newTimer    func() backoff.Timer
}

// Option は Policy の任意設定です。
type Option func(*Policy)

// WithName はログに出力する処理名を設定します。
func WithName(name string) Option {
	return func(p *Policy) {
		p.name = name
	}
}

// WithTimer は待機に使うタイマーを差し替えます。
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(p *Policy) {
		p.newTimer = newTimer
	}
}

// New は Policy を生成します。0 以下の値には既定値が使われます。
func New(maxAttempts int, baseDelay time.Duration, opts ...Option) *Policy {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	p := &Policy{
		name:        "operation",
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxAttempts は試行回数の上限を返します。
func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

// Do は op を成功するか試行回数の上限に達するまで実行します。
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue は値を返す op を再試行付きで実行します。
// ConfigurationError は再試行せずに即座に返します。
func DoValue[T any](ctx context.Context, p *Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "処理に失敗したため再試行します",
			"name", p.name,
			"attempt", attempt,
			"max_attempts", p.maxAttempts,
			"wait", wait,
			"error", err,
		)
	}

	var timer backoff.Timer
	if p.newTimer != nil {
		timer = p.newTimer()
	}

	res, err := backoff.RetryNotifyWithTimerAndData(operation, p.backOff(ctx), notify, timer)
	if err != nil && attempt >= p.maxAttempts {
		slog.ErrorContext(ctx, "再試行の上限に達しました",
			"name", p.name,
			"attempts", attempt,
			"error", err,
		)
	}
	return res, err
}

func (p *Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.baseDelay),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(time.Duration(math.MaxInt64)),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.maxAttempts-1)), ctx)
}
