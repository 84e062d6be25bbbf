package domain

import (
	"errors"
	"fmt"
)

// ErrMissingCredential は必須の認証情報が設定されていないことを表します。
var ErrMissingCredential = errors.New("認証情報が設定されていません")

// ConfigurationError は必須の設定値が欠けていることを表します。再試行の対象にはなりません。
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("設定エラー: %s が設定されていません", e.Key)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingCredential
}

// ExternalServiceError は外部 API の失敗ステータスや想定外のレスポンス形式を表します。
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	msg := fmt.Sprintf("%s の呼び出しに失敗しました", e.Service)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError はファイルへの書き込み失敗を表します。
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s の保存に失敗しました: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
