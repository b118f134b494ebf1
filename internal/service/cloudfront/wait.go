package cloudfront

import (
	"context"
	"time"
)

// Poller は無効化が完了するまでステータスを問い合わせる
type Poller struct {
	provider       Provider
	distributionId string
	opts           PollOptions
	observer       Observer

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPoller はPollerを作成します（observerがnilの場合は何も出力しない）
func NewPoller(provider Provider, distributionId string, opts PollOptions, observer Observer) *Poller {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Poller{
		provider:       provider,
		distributionId: distributionId,
		opts:           opts.withDefaults(),
		observer:       observer,
		sleep:          sleepContext,
		now:            time.Now,
	}
}

// Options はデフォルト値適用後のポーリング設定を返します
func (p *Poller) Options() PollOptions {
	return p.opts
}

// Wait は無効化が Completed になるか、問い合わせ回数・時間の上限に達するまで待機します
//
// 問い合わせエラーは一時的なものとして記録し次の周期へ進む。
// 認可エラーや存在しない無効化は OutcomeQueryFailed と QueryError を返す。
// 上限到達は OutcomeTimedOut としてエラーなしで返す。
// 未知のステータスを受け取った場合は OutcomeUnexpectedStatus と ErrUnexpectedStatus を返す。
func (p *Poller) Wait(ctx context.Context, id string) (PollResult, error) {
	start := p.now()
	var deadline time.Time
	if p.opts.Timeout > 0 {
		deadline = start.Add(p.opts.Timeout)
	}

	result := PollResult{
		Invalidation: Invalidation{Id: id},
		Outcome:      OutcomeTimedOut,
	}
	p.observer.OnStart(id, p.opts)

	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		result.Attempts = attempt

		inv, err := p.provider.GetInvalidation(ctx, p.distributionId, id)
		elapsed := p.now().Sub(start)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return p.finish(result, OutcomeInterrupted, start), ctx.Err()
			}
			result.LastError = err
			if IsPermanentQueryError(err) {
				return p.finish(result, OutcomeQueryFailed, start), &QueryError{Id: id, Err: err}
			}
			result.TransientErrors++
			p.observer.OnPollError(attempt, err)
		case !inv.Status.Known():
			result.Invalidation = inv
			p.observer.OnPoll(attempt, inv, elapsed)
			return p.finish(result, OutcomeUnexpectedStatus, start), &UnexpectedStatusError{Id: id, Status: inv.Status}
		default:
			result.Invalidation = inv
			p.observer.OnPoll(attempt, inv, elapsed)
			if inv.Status.Terminal() {
				return p.finish(result, OutcomeCompleted, start), nil
			}
		}

		if attempt == p.opts.MaxAttempts {
			break
		}
		// 次の問い合わせが時間上限を超える場合はここで打ち切る
		if !deadline.IsZero() && p.now().Add(p.opts.Interval).After(deadline) {
			break
		}
		if err := p.sleep(ctx, p.opts.Interval); err != nil {
			return p.finish(result, OutcomeInterrupted, start), err
		}
	}

	return p.finish(result, OutcomeTimedOut, start), nil
}

func (p *Poller) finish(result PollResult, outcome Outcome, start time.Time) PollResult {
	result.Outcome = outcome
	result.Elapsed = p.now().Sub(start)
	p.observer.OnFinish(result)
	return result
}

// sleepContext はdだけ待機します（ctxがキャンセルされた場合は即座に戻る）
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
