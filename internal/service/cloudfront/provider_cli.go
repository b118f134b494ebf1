package cloudfront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"siteops/internal/cli"

	"github.com/aws/smithy-go"
)

// CLIProvider はAWS CLIを呼び出すProvider（SDKが使えない環境向け）
type CLIProvider struct {
	runner cli.Runner
}

// NewCLIProvider はCLIProviderを作成します
func NewCLIProvider(runner cli.Runner) *CLIProvider {
	return &CLIProvider{runner: runner}
}

type cliInvalidation struct {
	Id                string    `json:"Id"`
	Status            string    `json:"Status"`
	CreateTime        time.Time `json:"CreateTime"`
	InvalidationBatch *struct {
		Paths struct {
			Items []string `json:"Items"`
		} `json:"Paths"`
	} `json:"InvalidationBatch,omitempty"`
}

type cliInvalidationOutput struct {
	Invalidation cliInvalidation `json:"Invalidation"`
}

type cliListOutput struct {
	InvalidationList struct {
		Items []cliInvalidation `json:"Items"`
	} `json:"InvalidationList"`
}

type cliBatch struct {
	Paths struct {
		Quantity int      `json:"Quantity"`
		Items    []string `json:"Items"`
	} `json:"Paths"`
	CallerReference string `json:"CallerReference"`
}

// CreateInvalidation は `aws cloudfront create-invalidation` を実行します
func (p *CLIProvider) CreateInvalidation(ctx context.Context, distributionId string, req Request) (Invalidation, error) {
	var batch cliBatch
	batch.Paths.Quantity = len(req.Paths)
	batch.Paths.Items = req.Paths
	batch.CallerReference = req.CallerReference

	body, err := json.Marshal(batch)
	if err != nil {
		return Invalidation{}, err
	}

	out, err := p.runner.Output(ctx, "cloudfront", "create-invalidation",
		"--distribution-id", distributionId,
		"--invalidation-batch", string(body),
		"--output", "json",
	)
	if err != nil {
		return Invalidation{}, toAPIError(err)
	}

	var result cliInvalidationOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return Invalidation{}, fmt.Errorf("create-invalidationの出力を解析できません: %w", err)
	}
	return result.Invalidation.toInvalidation(), nil
}

// GetInvalidation は `aws cloudfront get-invalidation` を実行します
func (p *CLIProvider) GetInvalidation(ctx context.Context, distributionId, id string) (Invalidation, error) {
	out, err := p.runner.Output(ctx, "cloudfront", "get-invalidation",
		"--distribution-id", distributionId,
		"--id", id,
		"--output", "json",
	)
	if err != nil {
		return Invalidation{}, toAPIError(err)
	}

	var result cliInvalidationOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return Invalidation{}, fmt.Errorf("get-invalidationの出力を解析できません: %w", err)
	}
	return result.Invalidation.toInvalidation(), nil
}

// ListInvalidations は `aws cloudfront list-invalidations` を実行します
func (p *CLIProvider) ListInvalidations(ctx context.Context, distributionId string, maxItems int32) ([]Invalidation, error) {
	args := []string{"cloudfront", "list-invalidations",
		"--distribution-id", distributionId,
		"--output", "json",
	}
	if maxItems > 0 {
		args = append(args, "--max-items", strconv.Itoa(int(maxItems)))
	}

	out, err := p.runner.Output(ctx, args...)
	if err != nil {
		return nil, toAPIError(err)
	}

	var result cliListOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("list-invalidationsの出力を解析できません: %w", err)
	}

	invalidations := make([]Invalidation, 0, len(result.InvalidationList.Items))
	for _, item := range result.InvalidationList.Items {
		invalidations = append(invalidations, item.toInvalidation())
	}
	return invalidations, nil
}

func (c cliInvalidation) toInvalidation() Invalidation {
	inv := Invalidation{
		Id:         c.Id,
		Status:     Status(c.Status),
		CreateTime: c.CreateTime.UTC(),
	}
	if c.InvalidationBatch != nil {
		inv.Paths = c.InvalidationBatch.Paths.Items
	}
	return inv
}

// 例: An error occurred (AccessDenied) when calling the CreateInvalidation operation: User is not authorized
var cliErrorPattern = regexp.MustCompile(`An error occurred \(([A-Za-z0-9.]+)\) when calling the \w+ operation: (.*)`)

// toAPIError はCLIのエラー出力をsmithy.APIErrorに変換します
func toAPIError(err error) error {
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}

	m := cliErrorPattern.FindStringSubmatch(cmdErr.Stderr)
	if m == nil {
		return err
	}
	return &smithy.GenericAPIError{
		Code:    m[1],
		Message: strings.TrimSpace(m[2]),
		Fault:   smithy.FaultClient,
	}
}
