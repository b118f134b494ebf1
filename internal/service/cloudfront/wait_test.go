package cloudfront

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_Wait(t *testing.T) {
	tests := []struct {
		name          string
		steps         []pollStep
		opts          PollOptions
		wantOutcome   Outcome
		wantStatus    Status
		wantPolls     int
		wantSleeps    int
		wantTransient int
		wantErr       error
		wantExitCode  int
	}{
		{
			name:         "InProgress2回の後Completedで3回目に成功",
			steps:        []pollStep{inProgress(), inProgress(), completed()},
			opts:         PollOptions{Interval: 10 * time.Second, MaxAttempts: 30},
			wantOutcome:  OutcomeCompleted,
			wantStatus:   StatusCompleted,
			wantPolls:    3,
			wantSleeps:   2,
			wantExitCode: 0,
		},
		{
			name:         "常にInProgressなら最大回数ちょうどで打ち切る",
			steps:        []pollStep{inProgress()},
			opts:         PollOptions{Interval: 10 * time.Second, MaxAttempts: 5},
			wantOutcome:  OutcomeTimedOut,
			wantStatus:   StatusInProgress,
			wantPolls:    5,
			wantSleeps:   4,
			wantExitCode: 1,
		},
		{
			name:         "時間上限を超える問い合わせは行わない",
			steps:        []pollStep{inProgress()},
			opts:         PollOptions{Interval: 10 * time.Second, MaxAttempts: 30, Timeout: 35 * time.Second},
			wantOutcome:  OutcomeTimedOut,
			wantStatus:   StatusInProgress,
			wantPolls:    4,
			wantSleeps:   3,
			wantExitCode: 1,
		},
		{
			name: "5回中2回目の一時エラーは無視して成功",
			steps: []pollStep{
				inProgress(),
				{err: errors.New("connection reset by peer")},
				completed(),
			},
			opts:          PollOptions{Interval: time.Second, MaxAttempts: 5},
			wantOutcome:   OutcomeCompleted,
			wantStatus:    StatusCompleted,
			wantPolls:     3,
			wantSleeps:    2,
			wantTransient: 1,
			wantExitCode:  0,
		},
		{
			name:         "未知のステータスで即座に中止",
			steps:        []pollStep{inProgress(), {status: Status("Failed")}},
			opts:         PollOptions{Interval: time.Second, MaxAttempts: 10},
			wantOutcome:  OutcomeUnexpectedStatus,
			wantStatus:   Status("Failed"),
			wantPolls:    2,
			wantSleeps:   1,
			wantErr:      ErrUnexpectedStatus,
			wantExitCode: 1,
		},
		{
			name:          "全て一時エラーでも上限で終了する",
			steps:         []pollStep{{err: apiError("ServiceUnavailable")}},
			opts:          PollOptions{Interval: time.Second, MaxAttempts: 3},
			wantOutcome:   OutcomeTimedOut,
			wantStatus:    "",
			wantPolls:     3,
			wantSleeps:    2,
			wantTransient: 3,
			wantExitCode:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{steps: tt.steps}
			observer := &recordingObserver{}
			poller, clock := newTestPoller(provider, tt.opts, observer)

			result, err := poller.Wait(context.Background(), "I123")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantStatus, result.Invalidation.Status)
			assert.Equal(t, tt.wantPolls, provider.getCalls)
			assert.Equal(t, tt.wantPolls, result.Attempts)
			assert.Len(t, clock.sleeps, tt.wantSleeps)
			assert.Equal(t, tt.wantTransient, result.TransientErrors)
			assert.Equal(t, 1, observer.started)
			assert.Len(t, observer.finished, 1)

			report := BuildReport(Summary{InvalidationId: "I123", Outcome: result.Outcome, Status: result.Invalidation.Status})
			assert.Equal(t, tt.wantExitCode, report.ExitCode)
		})
	}
}

func TestPoller_Wait_PermanentQueryError(t *testing.T) {
	tests := []struct {
		name       string
		steps      []pollStep
		wantCode   string
		wantStatus Status
		wantPolls  int
	}{
		{
			name:      "認可エラーで即座に中止",
			steps:     []pollStep{{err: apiError(CodeAccessDenied)}},
			wantCode:  CodeAccessDenied,
			wantPolls: 1,
		},
		{
			name:       "存在しない無効化で中止",
			steps:      []pollStep{inProgress(), {err: apiError(CodeNoSuchInvalidation)}},
			wantCode:   CodeNoSuchInvalidation,
			wantStatus: StatusInProgress,
			wantPolls:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{steps: tt.steps}
			observer := &recordingObserver{}
			poller, clock := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 10}, observer)

			result, err := poller.Wait(context.Background(), "I123")

			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.wantCode, ErrorCode(err))
			assert.Equal(t, OutcomeQueryFailed, result.Outcome)
			assert.Equal(t, tt.wantStatus, result.Invalidation.Status)
			assert.Equal(t, tt.wantPolls, provider.getCalls)
			assert.Len(t, clock.sleeps, tt.wantPolls-1)
			assert.Equal(t, 0, result.TransientErrors)
			assert.Empty(t, observer.errors)

			report := BuildReport(Summary{InvalidationId: "I123", Outcome: result.Outcome, Err: err})
			assert.Equal(t, 1, report.ExitCode)
			assert.NotContains(t, report.Title, "待機上限")
		})
	}
}

func TestPoller_Wait_NoStatusWithoutSuccessfulQuery(t *testing.T) {
	provider := &fakeProvider{steps: []pollStep{{err: errors.New("timeout")}}}
	poller, _ := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 2}, nil)

	summary := Track(context.Background(), poller, "I123")

	assert.Equal(t, OutcomeTimedOut, summary.Outcome)
	assert.Empty(t, summary.Status)
	report := BuildReport(summary)
	assert.NotContains(t, strings.Join(report.Lines, "\n"), "最終ステータス")
}

func TestPoller_Wait_StopsAtFirstCompleted(t *testing.T) {
	provider := &fakeProvider{steps: []pollStep{completed(), inProgress()}}
	poller, clock := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 10}, nil)

	result, err := poller.Wait(context.Background(), "I123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 1, provider.getCalls)
	assert.Empty(t, clock.sleeps)
}

func TestPoller_Wait_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := &fakeProvider{steps: []pollStep{inProgress()}}
	poller, _ := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 10}, nil)
	poller.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result, err := poller.Wait(ctx, "I123")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Equal(t, 1, provider.getCalls)
}

func TestPoller_Wait_ErrorAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &fakeProvider{steps: []pollStep{{err: context.Canceled}}}
	poller, _ := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 10}, nil)

	result, err := poller.Wait(ctx, "I123")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Equal(t, 0, result.TransientErrors)
}

func TestPoller_Wait_ObserverSeesEveryPoll(t *testing.T) {
	provider := &fakeProvider{steps: []pollStep{inProgress(), {err: errors.New("timeout")}, inProgress(), completed()}}
	observer := &recordingObserver{}
	poller, _ := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 10}, observer)

	_, err := poller.Wait(context.Background(), "I123")

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusInProgress, StatusInProgress, StatusCompleted}, observer.polls)
	assert.Equal(t, []int{2}, observer.errors)
}

func TestPollOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   PollOptions
		want PollOptions
	}{
		{
			name: "ゼロ値はデフォルト",
			in:   PollOptions{},
			want: PollOptions{Interval: DefaultPollInterval, MaxAttempts: DefaultMaxAttempts},
		},
		{
			name: "時間上限は20分まで",
			in:   PollOptions{Interval: time.Second, MaxAttempts: 3, Timeout: time.Hour},
			want: PollOptions{Interval: time.Second, MaxAttempts: 3, Timeout: MaxPollTimeout},
		},
		{
			name: "指定値はそのまま",
			in:   PollOptions{Interval: 5 * time.Second, MaxAttempts: 12, Timeout: time.Minute},
			want: PollOptions{Interval: 5 * time.Second, MaxAttempts: 12, Timeout: time.Minute},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.withDefaults())
		})
	}
}

// 任意の空でないパス列で送信直後に1回問い合わせたステータスは既知の値になる
func TestSubmitThenPollOnce_StatusIsKnown(t *testing.T) {
	pathSets := [][]string{
		{"/*"},
		{"/index.html"},
		{"/blog", "/blog/*"},
		{"images/logo.png", "/images/*", "/images/*"},
		{"/", "/about*", "/contact*", "/sitemap.xml"},
	}

	for seed := int64(0); seed < 20; seed++ {
		provider := NewSimulatedProvider(rand.New(rand.NewSource(seed)))
		for _, paths := range pathSets {
			submitter := NewSubmitter(provider, "EDIST123")
			_, inv, err := submitter.Submit(context.Background(), paths)
			require.NoError(t, err)
			assert.True(t, inv.Status.Known(), "submit status %q", inv.Status)

			poller, _ := newTestPoller(provider, PollOptions{Interval: time.Second, MaxAttempts: 1}, nil)
			result, err := poller.Wait(context.Background(), inv.Id)
			require.NoError(t, err)
			assert.True(t, result.Invalidation.Status.Known(), "poll status %q", result.Invalidation.Status)
			assert.Contains(t, []Outcome{OutcomeCompleted, OutcomeTimedOut}, result.Outcome)
		}
	}
}
