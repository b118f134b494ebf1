package cloudfront

import "time"

// Status はCloudFront無効化のステータス
type Status string

const (
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed" // 終端ステータス
)

// Known はCloudFrontが返す既知のステータスかどうかを返します
func (s Status) Known() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// Terminal は以降遷移しないステータスかどうかを返します
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Request は無効化リクエスト（送信後は変更しない）
type Request struct {
	Paths           []string
	CallerReference string
}

// Invalidation はプロバイダ側の無効化状態のスナップショット
type Invalidation struct {
	Id         string
	Status     Status
	CreateTime time.Time
	Paths      []string // GetInvalidationでのみ設定される
}

// Outcome はワークフローの最終結果
type Outcome string

const (
	OutcomeSubmitted        Outcome = "submitted" // 待機なしで送信のみ
	OutcomeCompleted        Outcome = "completed"
	OutcomeTimedOut         Outcome = "timed_out"
	OutcomeUnexpectedStatus Outcome = "unexpected_status"
	OutcomeQueryFailed      Outcome = "query_failed"
	OutcomeSubmitFailed     Outcome = "submit_failed"
	OutcomeInterrupted      Outcome = "interrupted"
	OutcomeConfigError      Outcome = "config_error"
)

// ポーリングのデフォルト値と上限
const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 30
	MaxPollTimeout      = 20 * time.Minute
)

// PollOptions はステータスポーリングの設定
type PollOptions struct {
	Interval    time.Duration // ポーリング間隔
	MaxAttempts int           // 最大問い合わせ回数
	Timeout     time.Duration // 0の場合は時間上限なし（MaxAttemptsのみ）
}

// withDefaults はゼロ値をデフォルト値で埋めたPollOptionsを返します
func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Timeout > MaxPollTimeout {
		o.Timeout = MaxPollTimeout
	}
	return o
}

// PollResult はポーリング終了時の結果
type PollResult struct {
	Invalidation    Invalidation
	Outcome         Outcome
	Attempts        int
	TransientErrors int
	LastError       error
	Elapsed         time.Duration
}

// DistributionInfo はCloudFrontディストリビューションの情報を保持する構造体
type DistributionInfo struct {
	Id         string
	DomainName string
	Comment    string
	Enabled    bool
}
