package cloudfront

import (
	"context"
	"time"

	"github.com/aws/smithy-go"
)

// pollStep はfakeProviderが1回の問い合わせで返す結果
type pollStep struct {
	status Status
	err    error
}

// fakeProvider は送信結果と問い合わせ結果を順番に返すProvider
type fakeProvider struct {
	createFn func(ctx context.Context, distributionId string, req Request) (Invalidation, error)
	steps    []pollStep

	createCalls int
	getCalls    int
	lastRequest Request
}

func (f *fakeProvider) CreateInvalidation(ctx context.Context, distributionId string, req Request) (Invalidation, error) {
	f.createCalls++
	f.lastRequest = req
	if f.createFn != nil {
		return f.createFn(ctx, distributionId, req)
	}
	return Invalidation{Id: "I123", Status: StatusInProgress}, nil
}

func (f *fakeProvider) GetInvalidation(ctx context.Context, distributionId, id string) (Invalidation, error) {
	f.getCalls++
	if len(f.steps) == 0 {
		return Invalidation{Id: id, Status: StatusInProgress}, nil
	}
	idx := f.getCalls - 1
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	step := f.steps[idx]
	if step.err != nil {
		return Invalidation{}, step.err
	}
	return Invalidation{Id: id, Status: step.status, Paths: []string{"/*"}}, nil
}

// fakeClock はsleepで時刻が進む擬似時計
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func newTestPoller(p Provider, opts PollOptions, observer Observer) (*Poller, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	poller := NewPoller(p, "EDIST123", opts, observer)
	poller.sleep = clock.sleep
	poller.now = clock.now
	return poller, clock
}

// recordingObserver はObserverの呼び出しを記録する
type recordingObserver struct {
	started  int
	polls    []Status
	errors   []int
	finished []PollResult
}

func (r *recordingObserver) OnStart(string, PollOptions) { r.started++ }

func (r *recordingObserver) OnPoll(_ int, inv Invalidation, _ time.Duration) {
	r.polls = append(r.polls, inv.Status)
}

func (r *recordingObserver) OnPollError(attempt int, _ error) {
	r.errors = append(r.errors, attempt)
}

func (r *recordingObserver) OnFinish(result PollResult) {
	r.finished = append(r.finished, result)
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code + " message", Fault: smithy.FaultClient}
}

func inProgress() pollStep { return pollStep{status: StatusInProgress} }
func completed() pollStep  { return pollStep{status: StatusCompleted} }
