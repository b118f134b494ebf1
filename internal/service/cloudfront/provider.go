package cloudfront

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
)

// Provider はCDN無効化APIの抽象（実クライアントとテスト用ダブルを注入で切り替える）
type Provider interface {
	CreateInvalidation(ctx context.Context, distributionId string, req Request) (Invalidation, error)
	GetInvalidation(ctx context.Context, distributionId, id string) (Invalidation, error)
}

// Lister は最近の無効化一覧を取得できるプロバイダ
type Lister interface {
	ListInvalidations(ctx context.Context, distributionId string, maxItems int32) ([]Invalidation, error)
}

// API はSDKProviderが利用するCloudFrontクライアントのメソッド
type API interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
	GetInvalidation(ctx context.Context, params *cloudfront.GetInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.GetInvalidationOutput, error)
	ListInvalidations(ctx context.Context, params *cloudfront.ListInvalidationsInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListInvalidationsOutput, error)
}

// SDKProvider はaws-sdk-go-v2のCloudFrontクライアントを使うProvider
type SDKProvider struct {
	client API
}

// NewSDKProvider はSDKProviderを作成します
func NewSDKProvider(client API) *SDKProvider {
	return &SDKProvider{client: client}
}

// CreateInvalidation はCloudFrontディストリビューションのキャッシュを無効化します
func (p *SDKProvider) CreateInvalidation(ctx context.Context, distributionId string, req Request) (Invalidation, error) {
	items := append([]string(nil), req.Paths...)

	input := &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionId),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(req.CallerReference),
			Paths: &types.Paths{
				Quantity: aws.Int32(int32(len(items))),
				Items:    items,
			},
		},
	}

	// 送信失敗はSDK側でもリトライしない
	result, err := p.client.CreateInvalidation(ctx, input, func(o *cloudfront.Options) {
		o.RetryMaxAttempts = 1
	})
	if err != nil {
		return Invalidation{}, err
	}

	return fromSDKInvalidation(result.Invalidation), nil
}

// GetInvalidation は無効化の現在のステータスを取得します
func (p *SDKProvider) GetInvalidation(ctx context.Context, distributionId, id string) (Invalidation, error) {
	result, err := p.client.GetInvalidation(ctx, &cloudfront.GetInvalidationInput{
		DistributionId: aws.String(distributionId),
		Id:             aws.String(id),
	})
	if err != nil {
		return Invalidation{}, err
	}

	return fromSDKInvalidation(result.Invalidation), nil
}

// ListInvalidations は最近の無効化を新しい順に最大maxItems件取得します
func (p *SDKProvider) ListInvalidations(ctx context.Context, distributionId string, maxItems int32) ([]Invalidation, error) {
	input := &cloudfront.ListInvalidationsInput{
		DistributionId: aws.String(distributionId),
	}
	if maxItems > 0 {
		input.MaxItems = aws.Int32(maxItems)
	}

	result, err := p.client.ListInvalidations(ctx, input)
	if err != nil {
		return nil, err
	}
	if result.InvalidationList == nil {
		return nil, nil
	}

	invalidations := make([]Invalidation, 0, len(result.InvalidationList.Items))
	for _, item := range result.InvalidationList.Items {
		invalidations = append(invalidations, Invalidation{
			Id:         aws.ToString(item.Id),
			Status:     Status(aws.ToString(item.Status)),
			CreateTime: aws.ToTime(item.CreateTime),
		})
	}
	return invalidations, nil
}

// fromSDKInvalidation はSDKの型をInvalidationに変換します
func fromSDKInvalidation(inv *types.Invalidation) Invalidation {
	if inv == nil {
		return Invalidation{}
	}

	result := Invalidation{
		Id:     aws.ToString(inv.Id),
		Status: Status(aws.ToString(inv.Status)),
	}
	if inv.CreateTime != nil {
		result.CreateTime = inv.CreateTime.In(time.UTC)
	}
	if inv.InvalidationBatch != nil && inv.InvalidationBatch.Paths != nil {
		result.Paths = append([]string(nil), inv.InvalidationBatch.Paths.Items...)
	}
	return result
}
