package common

import (
	"errors"
	"fmt"
)

// エラーメッセージの絵文字定数
const (
	ErrorIcon   = "❌"
	WarningIcon = "⚠️"
)

// エラーメッセージフォーマット定数
const (
	// 一覧取得エラー
	ListErrorFormat = "%s %s一覧の取得に失敗: %w"
	// 取得エラー
	GetErrorFormat = "%s %s の取得に失敗: %w"
)

// FormatListError はリスト取得エラーを統一フォーマットで返す
func FormatListError(resource string, err error) error {
	return fmt.Errorf(ListErrorFormat, ErrorIcon, resource, err)
}

// FormatGetError は取得エラーを統一フォーマットで返す
func FormatGetError(resource string, err error) error {
	return fmt.Errorf(GetErrorFormat, ErrorIcon, resource, err)
}

// ExitError はメッセージ表示済みで終了コードのみを伝えるエラー
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode はエラーに対応するプロセス終了コードを返します
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
