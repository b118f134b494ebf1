package cloudfront

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CallerReferencePrefix はCallerReferenceの接頭辞
const CallerReferencePrefix = "siteops"

// NewCallerReference はプロセス内で一意なCallerReferenceを生成します
// 形式: siteops-<UnixNano>-<16進8桁>
func NewCallerReference() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", CallerReferencePrefix, time.Now().UnixNano(), token)
}

// Submitter は無効化リクエストを送信する
type Submitter struct {
	provider       Provider
	distributionId string
	newRef         func() string
}

// NewSubmitter はSubmitterを作成します
func NewSubmitter(provider Provider, distributionId string) *Submitter {
	return &Submitter{
		provider:       provider,
		distributionId: distributionId,
		newRef:         NewCallerReference,
	}
}

// DistributionId は送信先のディストリビューションIDを返します
func (s *Submitter) DistributionId() string {
	return s.distributionId
}

// Submit はパスを正規化して無効化リクエストを1回だけ送信します
// 送信エラーは *SubmitError に包んで返し、リトライはしない
func (s *Submitter) Submit(ctx context.Context, paths []string) (Request, Invalidation, error) {
	if s.distributionId == "" {
		return Request{}, Invalidation{}, ErrNoDistribution
	}

	normalized, err := NormalizePaths(paths)
	if err != nil {
		return Request{}, Invalidation{}, err
	}

	req := Request{
		Paths:           normalized,
		CallerReference: s.newRef(),
	}

	inv, err := s.provider.CreateInvalidation(ctx, s.distributionId, req)
	if err != nil {
		return req, Invalidation{}, &SubmitError{DistributionId: s.distributionId, Err: err}
	}
	if len(inv.Paths) == 0 {
		inv.Paths = req.Paths
	}
	return req, inv, nil
}
