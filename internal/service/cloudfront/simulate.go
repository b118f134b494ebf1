package cloudfront

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/aws/smithy-go"
)

// SimulatedProvider はAWSを呼ばずに無効化の状態遷移を再現するProvider
// 各無効化は MinPolls〜MaxPolls 回の問い合わせ後に Completed になる
type SimulatedProvider struct {
	MinPolls int
	MaxPolls int

	mu            sync.Mutex
	rnd           *rand.Rand
	now           func() time.Time
	seq           int
	invalidations map[simulatedKey]*simulatedInvalidation
	references    map[simulatedKey]string // (ディストリビューション, CallerReference) → Id
}

type simulatedKey struct {
	distributionId string
	name           string
}

type simulatedInvalidation struct {
	inv       Invalidation
	remaining int
}

// snapshot は保持している状態と記憶を共有しないコピーを返す
func (e *simulatedInvalidation) snapshot() Invalidation {
	inv := e.inv
	inv.Paths = append([]string(nil), e.inv.Paths...)
	return inv
}

// NewSimulatedProvider はSimulatedProviderを作成します（rndがnilの場合は現在時刻でシード）
func NewSimulatedProvider(rnd *rand.Rand) *SimulatedProvider {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedProvider{
		MinPolls:      1,
		MaxPolls:      4,
		rnd:           rnd,
		now:           time.Now,
		invalidations: make(map[simulatedKey]*simulatedInvalidation),
		references:    make(map[simulatedKey]string),
	}
}

// CreateInvalidation は疑似的な無効化を作成します
// 同じCallerReferenceで再送された場合は既存の無効化を返す
func (p *SimulatedProvider) CreateInvalidation(_ context.Context, distributionId string, req Request) (Invalidation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ref := simulatedKey{distributionId: distributionId, name: req.CallerReference}
	if id, ok := p.references[ref]; ok {
		return p.invalidations[simulatedKey{distributionId: distributionId, name: id}].snapshot(), nil
	}

	p.seq++
	id := fmt.Sprintf("SIM%010d", p.seq)

	polls := p.MinPolls
	if p.MaxPolls > p.MinPolls {
		polls += p.rnd.Intn(p.MaxPolls - p.MinPolls + 1)
	}

	entry := &simulatedInvalidation{
		inv: Invalidation{
			Id:         id,
			Status:     StatusInProgress,
			CreateTime: p.now().UTC(),
			Paths:      append([]string(nil), req.Paths...),
		},
		remaining: polls,
	}
	p.invalidations[simulatedKey{distributionId: distributionId, name: id}] = entry
	p.references[ref] = id

	return entry.snapshot(), nil
}

// GetInvalidation は問い合わせごとに残り回数を減らし、0になったらCompletedにします
func (p *SimulatedProvider) GetInvalidation(_ context.Context, distributionId, id string) (Invalidation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.invalidations[simulatedKey{distributionId: distributionId, name: id}]
	if !ok {
		return Invalidation{}, &smithy.GenericAPIError{
			Code:    CodeNoSuchInvalidation,
			Message: fmt.Sprintf("無効化 %s はディストリビューション %s に存在しません", id, distributionId),
			Fault:   smithy.FaultClient,
		}
	}

	if entry.remaining > 0 {
		entry.remaining--
	}
	if entry.remaining == 0 {
		entry.inv.Status = StatusCompleted
	}
	return entry.snapshot(), nil
}

// ListInvalidations はディストリビューションの疑似無効化を新しい順に返します
func (p *SimulatedProvider) ListInvalidations(_ context.Context, distributionId string, maxItems int32) ([]Invalidation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]Invalidation, 0, len(p.invalidations))
	for key, entry := range p.invalidations {
		if key.distributionId != distributionId {
			continue
		}
		result = append(result, entry.snapshot())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Id > result[j].Id
	})
	if maxItems > 0 && len(result) > int(maxItems) {
		result = result[:maxItems]
	}
	return result, nil
}
