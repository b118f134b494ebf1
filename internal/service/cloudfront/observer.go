package cloudfront

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Observer はポーリングの進捗を受け取る
type Observer interface {
	OnStart(id string, opts PollOptions)
	OnPoll(attempt int, inv Invalidation, elapsed time.Duration)
	OnPollError(attempt int, err error)
	OnFinish(result PollResult)
}

// NopObserver は何もしないObserver
type NopObserver struct{}

func (NopObserver) OnStart(string, PollOptions)             {}
func (NopObserver) OnPoll(int, Invalidation, time.Duration) {}
func (NopObserver) OnPollError(int, error)                  {}
func (NopObserver) OnFinish(PollResult)                     {}

// LogObserver はタイムスタンプ付きの進捗行をzerologで出力する
type LogObserver struct {
	Logger zerolog.Logger
}

func (o LogObserver) OnStart(id string, opts PollOptions) {
	o.Logger.Info().
		Str("id", id).
		Dur("interval", opts.Interval).
		Int("maxAttempts", opts.MaxAttempts).
		Msg("⏳ 無効化の完了を待機しています...")
}

func (o LogObserver) OnPoll(attempt int, inv Invalidation, elapsed time.Duration) {
	o.Logger.Info().
		Int("attempt", attempt).
		Str("elapsed", elapsed.Round(time.Second).String()).
		Msgf("   現在のステータス: %s", inv.Status)
}

func (o LogObserver) OnPollError(attempt int, err error) {
	o.Logger.Warn().
		Int("attempt", attempt).
		Err(err).
		Msg("⚠️ ステータス取得に失敗しました（次の周期で再確認します）")
}

func (o LogObserver) OnFinish(result PollResult) {
	o.Logger.Debug().
		Str("outcome", string(result.Outcome)).
		Int("attempts", result.Attempts).
		Int("transientErrors", result.TransientErrors).
		Msg("ポーリング終了")
}

// ProgressObserver は問い合わせ回数をプログレスバーで表示する
type ProgressObserver struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressObserver はProgressObserverを作成します
func NewProgressObserver(out io.Writer) *ProgressObserver {
	return &ProgressObserver{out: out}
}

func (o *ProgressObserver) OnStart(id string, opts PollOptions) {
	o.bar = progressbar.NewOptions(opts.MaxAttempts,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("無効化 %s を待機中...", id)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}

func (o *ProgressObserver) OnPoll(attempt int, inv Invalidation, elapsed time.Duration) {
	if o.bar == nil {
		return
	}
	o.bar.Describe(fmt.Sprintf("無効化 %s: %s", inv.Id, inv.Status))
	_ = o.bar.Set(attempt)
}

func (o *ProgressObserver) OnPollError(attempt int, err error) {
	if o.bar == nil {
		return
	}
	_ = o.bar.Set(attempt)
}

func (o *ProgressObserver) OnFinish(result PollResult) {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	fmt.Fprintln(o.out)
}

// MultiObserver は複数のObserverへ通知を転送する
type MultiObserver []Observer

func (m MultiObserver) OnStart(id string, opts PollOptions) {
	for _, o := range m {
		o.OnStart(id, opts)
	}
}

func (m MultiObserver) OnPoll(attempt int, inv Invalidation, elapsed time.Duration) {
	for _, o := range m {
		o.OnPoll(attempt, inv, elapsed)
	}
}

func (m MultiObserver) OnPollError(attempt int, err error) {
	for _, o := range m {
		o.OnPollError(attempt, err)
	}
}

func (m MultiObserver) OnFinish(result PollResult) {
	for _, o := range m {
		o.OnFinish(result)
	}
}
