package cloudfront

import (
	"context"
	"fmt"
	"io"
)

// StackLookup はCloudFormationスタックからディストリビューションIDを取得する関数
type StackLookup func(ctx context.Context, stackName string) ([]string, error)

// ResolveOptions はディストリビューションID解決の入力
type ResolveOptions struct {
	DistributionId string // 指定があれば最優先
	StackName      string // DistributionId未指定時に使用
	Lookup         StackLookup
	Describe       DistributionAPI // 複数候補の表示用（nilの場合は選択不可）
	In             io.Reader
	Out            io.Writer
}

// ResolveDistributionId はディストリビューションIDを解決します
func ResolveDistributionId(ctx context.Context, opts ResolveOptions) (string, error) {
	// 既にディストリビューションIDが指定されている場合
	if opts.DistributionId != "" {
		return opts.DistributionId, nil
	}

	// スタック名が指定されていない場合
	if opts.StackName == "" || opts.Lookup == nil {
		return "", fmt.Errorf("%w: -d / CLOUDFRONT_DISTRIBUTION_ID またはスタック名 (-S) を指定してください", ErrNoDistribution)
	}

	distributions, err := opts.Lookup(ctx, opts.StackName)
	if err != nil {
		return "", fmt.Errorf("CloudFormationスタックからディストリビューションの取得に失敗: %w", err)
	}

	switch len(distributions) {
	case 0:
		return "", fmt.Errorf("%w: スタック '%s' にCloudFrontディストリビューションが見つかりませんでした", ErrNoDistribution, opts.StackName)
	case 1:
		fmt.Fprintf(opts.Out, "✅ CloudFormationスタック '%s' からCloudFrontディストリビューション '%s' を検出しました\n", opts.StackName, distributions[0])
		return distributions[0], nil
	}

	if opts.Describe == nil || opts.In == nil {
		return "", fmt.Errorf("スタック '%s' に複数のディストリビューションがあります。-d で指定してください: %v", opts.StackName, distributions)
	}
	// 複数のディストリビューションがある場合は選択
	return SelectDistribution(ctx, opts.Describe, distributions, opts.In, opts.Out)
}
