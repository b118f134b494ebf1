package cloudfront

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	ErrInvalidPath      = errors.New("無効なパスです")
	ErrTooManyPaths     = errors.New("パス数が上限を超えています")
	ErrUnexpectedStatus = errors.New("想定外の無効化ステータスです")
	ErrNoDistribution   = errors.New("ディストリビューションIDが指定されていません")
)

// CloudFrontのエラーコード
const (
	CodeTooManyInvalidations = "TooManyInvalidationsInProgress"
	CodeAccessDenied         = "AccessDenied"
	CodeNoSuchDistribution   = "NoSuchDistribution"
	CodeNoSuchInvalidation   = "NoSuchInvalidation"
	CodeInvalidArgument      = "InvalidArgument"
)

// SubmitError は無効化リクエストの送信失敗を表す（リトライしない）
type SubmitError struct {
	DistributionId string
	Err            error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("ディストリビューション %s への無効化リクエストに失敗: %v", e.DistributionId, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Code はプロバイダのエラーコードを返します（不明な場合は空文字）
func (e *SubmitError) Code() string {
	return ErrorCode(e.Err)
}

// ErrorCode はsmithy APIエラーからエラーコードを取り出します
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// IsTooManyInvalidations は同時実行中の無効化数上限エラーかどうかを判定します
func IsTooManyInvalidations(err error) bool {
	return ErrorCode(err) == CodeTooManyInvalidations
}

// IsAccessDenied は認可エラーかどうかを判定します
func IsAccessDenied(err error) bool {
	code := ErrorCode(err)
	return code == CodeAccessDenied || code == "AccessDeniedException"
}

// IsPermanentQueryError は再試行しても成功しない問い合わせエラーかどうかを判定します
func IsPermanentQueryError(err error) bool {
	if IsAccessDenied(err) {
		return true
	}
	code := ErrorCode(err)
	return code == CodeNoSuchInvalidation || code == CodeNoSuchDistribution
}

// QueryError はステータスの問い合わせが拒否されたことを表す
type QueryError struct {
	Id  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("無効化 %s のステータス取得が拒否されました: %v", e.Id, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// UnexpectedStatusError はポーリング中に未知のステータスを受け取ったことを表す
type UnexpectedStatusError struct {
	Id     string
	Status Status
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("無効化 %s のステータス '%s' は想定外です", e.Id, e.Status)
}

func (e *UnexpectedStatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
