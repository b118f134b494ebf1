package cfn

import (
	"context"
	"fmt"
	"io"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// リソースタイプ
const (
	ResourceTypeDistribution = "AWS::CloudFront::Distribution"
	ResourceTypeBucket       = "AWS::S3::Bucket"
)

// StackResourcesAPI はスタックリソース取得に使うメソッド
type StackResourcesAPI interface {
	DescribeStackResources(ctx context.Context, params *cloudformation.DescribeStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackResourcesOutput, error)
}

// GetStackResources はスタックからリソース一覧を取得する関数
func GetStackResources(ctx context.Context, cfnClient StackResourcesAPI, stackName string, out io.Writer) ([]types.StackResource, error) {
	fmt.Fprintf(out, "🔍 スタック '%s' からリソースを検索中...\n", stackName)
	resp, err := cfnClient.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("CloudFormationスタックのリソース取得に失敗: %w", err)
	}

	// スタック存在確認
	if len(resp.StackResources) == 0 {
		return nil, fmt.Errorf("スタック '%s' にリソースが見つかりませんでした", stackName)
	}

	return resp.StackResources, nil
}

// GetAllCloudFrontFromStack はCloudFormationスタックからすべてのCloudFrontディストリビューションIDを取得します
func GetAllCloudFrontFromStack(ctx context.Context, cfnClient StackResourcesAPI, stackName string, out io.Writer) ([]string, error) {
	return physicalIdsOfType(ctx, cfnClient, stackName, ResourceTypeDistribution, "CloudFrontディストリビューション", out)
}

// GetAllS3FromStack はCloudFormationスタックからすべてのS3バケット名を取得します
func GetAllS3FromStack(ctx context.Context, cfnClient StackResourcesAPI, stackName string, out io.Writer) ([]string, error) {
	return physicalIdsOfType(ctx, cfnClient, stackName, ResourceTypeBucket, "S3バケット", out)
}

func physicalIdsOfType(ctx context.Context, cfnClient StackResourcesAPI, stackName, resourceType, label string, out io.Writer) ([]string, error) {
	stackResources, err := GetStackResources(ctx, cfnClient, stackName, out)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, resource := range stackResources {
		if awssdk.ToString(resource.ResourceType) != resourceType || awssdk.ToString(resource.PhysicalResourceId) == "" {
			continue
		}
		ids = append(ids, *resource.PhysicalResourceId)
		fmt.Fprintf(out, "🔍 検出された%s: %s\n", label, *resource.PhysicalResourceId)
	}
	return ids, nil
}
