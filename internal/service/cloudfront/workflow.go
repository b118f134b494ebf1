package cloudfront

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Workflow は 送信 → (任意で)ポーリング → 結果 の一連の処理
type Workflow struct {
	Submitter *Submitter
	Poller    *Poller
	Wait      bool
	Logger    zerolog.Logger
}

// Run はキャッシュ無効化を送信し、Waitが有効なら完了まで待機してSummaryを返します
// 送信に失敗した場合はポーリングしない
func (w *Workflow) Run(ctx context.Context, paths []string) Summary {
	start := time.Now()
	summary := Summary{
		DistributionId: w.Submitter.DistributionId(),
		Paths:          paths,
	}

	req, inv, err := w.Submitter.Submit(ctx, paths)
	if len(req.Paths) > 0 {
		summary.Paths = req.Paths
	}
	if err != nil {
		summary.Err = err
		summary.Outcome = OutcomeSubmitFailed
		if isConfigError(err) {
			summary.Outcome = OutcomeConfigError
		}
		summary.Elapsed = time.Since(start)
		return summary
	}

	summary.InvalidationId = inv.Id
	summary.Status = inv.Status
	w.Logger.Info().
		Str("id", inv.Id).
		Str("callerReference", req.CallerReference).
		Msgf("✅ キャッシュ無効化を開始しました (ID: %s)", inv.Id)

	switch {
	case !w.Wait:
		summary.Outcome = OutcomeSubmitted
	case inv.Status.Terminal():
		summary.Outcome = OutcomeCompleted
	case !inv.Status.Known():
		summary.Outcome = OutcomeUnexpectedStatus
		summary.Err = &UnexpectedStatusError{Id: inv.Id, Status: inv.Status}
	default:
		result, err := w.Poller.Wait(ctx, inv.Id)
		applyPollResult(&summary, result, err)
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// Track は既存の無効化IDを再度追跡します（プロセス再起動後の再確認用）
func Track(ctx context.Context, poller *Poller, id string) Summary {
	summary := Summary{
		DistributionId: poller.distributionId,
		InvalidationId: id,
	}
	result, err := poller.Wait(ctx, id)
	applyPollResult(&summary, result, err)
	summary.Elapsed = result.Elapsed
	return summary
}

func applyPollResult(summary *Summary, result PollResult, err error) {
	summary.Outcome = result.Outcome
	if result.Invalidation.Status != "" {
		summary.Status = result.Invalidation.Status
	}
	summary.Attempts = result.Attempts
	summary.TransientErrors = result.TransientErrors
	if len(result.Invalidation.Paths) > 0 && len(summary.Paths) == 0 {
		summary.Paths = result.Invalidation.Paths
	}
	summary.Err = err
}

// isConfigError は送信前に検出した設定・入力エラーかどうかを判定します
func isConfigError(err error) bool {
	return errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, ErrTooManyPaths) ||
		errors.Is(err, ErrNoDistribution)
}
