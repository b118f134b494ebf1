package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	awsinternal "siteops/internal/aws"
	"siteops/internal/cli"
	"siteops/internal/config"
	"siteops/internal/service/cfn"
	cfsvc "siteops/internal/service/cloudfront"

	"github.com/spf13/cobra"
)

// simulatedDistributionId は --simulate 時にID未指定の場合に使う疑似ID
const simulatedDistributionId = "ESIMULATED"

// cfDeps はcfサブコマンドが使う依存関係
type cfDeps struct {
	provider       cfsvc.Provider
	lister         cfsvc.Lister
	clients        *awsinternal.Clients // --simulate 時はnil
	distributionId string
}

// applyCfFlags はcfサブコマンドのフラグで設定を上書きする
func applyCfFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("distribution") {
		cfg.DistributionId, _ = flags.GetString("distribution")
	}
	if flags.Changed("stack") {
		cfg.StackName, _ = flags.GetString("stack")
	}
	if flags.Changed("presets") {
		cfg.PresetsFile, _ = flags.GetString("presets")
	}
	if flags.Changed("bucket") {
		cfg.Bucket, _ = flags.GetString("bucket")
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("interval") {
		cfg.PollInterval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
}

// pollOptions は設定からポーリング設定を作成する
func pollOptions(cfg *config.Config) cfsvc.PollOptions {
	return cfsvc.PollOptions{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.MaxAttempts,
		Timeout:     cfg.Timeout,
	}
}

// buildCfDeps はプロバイダを選択し、ディストリビューションIDを解決する
func buildCfDeps(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*cfDeps, error) {
	simulate, _ := cmd.Flags().GetBool("simulate")
	viaCli, _ := cmd.Flags().GetBool("via-cli")

	if simulate {
		provider := cfsvc.NewSimulatedProvider(nil)
		distributionId := cfg.DistributionId
		if distributionId == "" {
			distributionId = simulatedDistributionId
		}
		fmt.Println("🧪 シミュレーションモード: AWSへのリクエストは送信しません")
		return &cfDeps{provider: provider, lister: provider, distributionId: distributionId}, nil
	}

	if err := cfg.RequireDistribution(); err != nil {
		return nil, err
	}

	awsCtx := &awsinternal.Context{Profile: cfg.Profile, Region: cfg.Region}
	clients, err := awsinternal.NewAwsClients(ctx, awsCtx)
	if err != nil {
		return nil, &config.ConfigError{Field: "AWS", Reason: err.Error()}
	}
	if err := awsinternal.CheckCredentials(ctx, clients.Config()); err != nil {
		return nil, &config.ConfigError{Field: "AWS credentials", Reason: err.Error()}
	}

	distributionId, err := cfsvc.ResolveDistributionId(ctx, cfsvc.ResolveOptions{
		DistributionId: cfg.DistributionId,
		StackName:      cfg.StackName,
		Lookup: func(ctx context.Context, stackName string) ([]string, error) {
			return cfn.GetAllCloudFrontFromStack(ctx, clients.Cfn(), stackName, os.Stdout)
		},
		Describe: clients.CloudFront(),
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	deps := &cfDeps{clients: clients, distributionId: distributionId}
	if viaCli {
		provider := cfsvc.NewCLIProvider(cli.AwsRunner{Profile: cfg.Profile, Region: cfg.Region})
		deps.provider, deps.lister = provider, provider
	} else {
		provider := cfsvc.NewSDKProvider(clients.CloudFront())
		deps.provider, deps.lister = provider, provider
	}
	return deps, nil
}

// parseSince は "1h" のような期間または RFC3339 の時刻を解釈する
func parseSince(value string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--since は期間 (例: 30m) または RFC3339 の時刻で指定してください: %s", value)
	}
	return t, nil
}
