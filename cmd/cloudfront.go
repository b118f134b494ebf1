package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"siteops/internal/config"
	"siteops/internal/metrics"
	cfsvc "siteops/internal/service/cloudfront"
	"siteops/internal/service/cfn"
	"siteops/internal/service/common"
	s3svc "siteops/internal/service/s3"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CfCmd represents the cf command
var CfCmd = &cobra.Command{
	Use:          "cf",
	Short:        "CloudFrontキャッシュ無効化コマンド",
	SilenceUsage: true,
}

// cfInvalidateCmd represents the invalidate command
var cfInvalidateCmd = &cobra.Command{
	Use:   "invalidate <deployment|content <type>|custom <path...>|changed>",
	Short: "CloudFrontのキャッシュを無効化するコマンド",
	Long: `CloudFrontディストリビューションのキャッシュを無効化します。
無効化するパスはパスセットで指定します。

【パスセット】
  deployment            デプロイ後の全体無効化
  content <type>        コンテンツ種別ごとのパス（` + AppName + ` cf presets で一覧表示）
  custom <path...>      任意のパス
  changed               S3で --since 以降に更新されたオブジェクトのパス

【使い方】
  ` + AppName + ` cf invalidate deployment -w                    # 全体を無効化して完了まで待機
  ` + AppName + ` cf invalidate content blog                     # ブログ配下を無効化
  ` + AppName + ` cf invalidate custom /images/* /index.html     # 任意のパスを無効化
  ` + AppName + ` cf invalidate changed --since 30m -w           # 直近30分の更新分を無効化
  ` + AppName + ` cf invalidate deployment -S my-stack -w        # スタックから自動検出

【終了コード】
  0  完了を確認（-w なしの場合は送信成功）
  1  設定エラー・送信失敗・待機上限到達・想定外のステータス`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		ctx := cmdCobra.Context()
		cfg := appConfig
		wait, _ := cmdCobra.Flags().GetBool("wait")

		presets, err := cfsvc.LoadPathPresets(cfg.PresetsFile)
		if err != nil {
			return err
		}

		kind, rest := args[0], args[1:]
		var paths []string
		if kind != cfsvc.PathSetChanged {
			// AWSに接続する前にパスを検証する
			paths, err = cfsvc.ResolvePathSet(presets, kind, rest)
			if err != nil {
				return &config.ConfigError{Field: "paths", Reason: err.Error()}
			}
		}

		deps, err := buildCfDeps(ctx, cmdCobra, cfg)
		if err != nil {
			return err
		}

		if kind == cfsvc.PathSetChanged {
			changed, err := changedPaths(ctx, cmdCobra, cfg, deps)
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Println("✅ 更新されたオブジェクトはありません。無効化は不要です")
				return nil
			}
			paths, err = cfsvc.ResolvePathSet(presets, kind, changed)
			if err != nil {
				return &config.ConfigError{Field: "paths", Reason: err.Error()}
			}
		}

		fmt.Printf("🚀 CloudFrontディストリビューション (%s) のキャッシュを無効化します...\n", deps.distributionId)
		fmt.Printf("   対象パス: %v\n", paths)

		workflow := &cfsvc.Workflow{
			Submitter: cfsvc.NewSubmitter(deps.provider, deps.distributionId),
			Poller:    cfsvc.NewPoller(deps.provider, deps.distributionId, pollOptions(cfg), newObserver(cmdCobra)),
			Wait:      wait,
			Logger:    log.Logger,
		}
		return finishInvalidation(workflow.Run(ctx, paths), cfg)
	},
}

// cfStatusCmd represents the status command
var cfStatusCmd = &cobra.Command{
	Use:   "status <invalidation-id>",
	Short: "無効化のステータスを確認するコマンド",
	Long: `無効化IDのステータスを確認します。-w を指定すると完了まで待機します。
プロセスが中断された後でも、同じIDで再確認できます。

【使い方】
  ` + AppName + ` cf status I2J0I21PCUYOIK                    # 現在のステータスを表示
  ` + AppName + ` cf status I2J0I21PCUYOIK -w                 # 完了まで待機
  ` + AppName + ` cf status I2J0I21PCUYOIK --check /blog/a    # パスが無効化対象か確認`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		ctx := cmdCobra.Context()
		cfg := appConfig
		id := args[0]
		wait, _ := cmdCobra.Flags().GetBool("wait")
		check, _ := cmdCobra.Flags().GetString("check")

		deps, err := buildCfDeps(ctx, cmdCobra, cfg)
		if err != nil {
			return err
		}

		inv, err := deps.provider.GetInvalidation(ctx, deps.distributionId, id)
		if err != nil {
			return common.FormatGetError("無効化 "+id, err)
		}
		printInvalidation(inv)

		covered := true
		if check != "" {
			covered = cfsvc.Covers(inv.Paths, check)
			if covered {
				fmt.Printf("✅ パス %s はこの無効化の対象です\n", check)
			} else {
				fmt.Printf("❌ パス %s はこの無効化の対象ではありません\n", check)
			}
		}

		if !inv.Status.Known() {
			return &cfsvc.UnexpectedStatusError{Id: id, Status: inv.Status}
		}

		if wait && !inv.Status.Terminal() {
			poller := cfsvc.NewPoller(deps.provider, deps.distributionId, pollOptions(cfg), newObserver(cmdCobra))
			summary := cfsvc.Track(ctx, poller, id)
			if err := finishInvalidation(summary, cfg); err != nil {
				return err
			}
		} else if !inv.Status.Terminal() {
			fmt.Println("⏳ 無効化はまだ完了していません")
			return &common.ExitError{Code: 1}
		}

		if !covered {
			return &common.ExitError{Code: 1}
		}
		return nil
	},
}

// cfLsCmd represents the ls command
var cfLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "最近の無効化一覧を表示するコマンド",
	Args:  cobra.NoArgs,
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		ctx := cmdCobra.Context()
		limit, _ := cmdCobra.Flags().GetInt32("limit")

		deps, err := buildCfDeps(ctx, cmdCobra, appConfig)
		if err != nil {
			return err
		}
		return cfsvc.ListRecentInvalidations(ctx, os.Stdout, deps.lister, deps.distributionId, limit)
	},
}

// cfPresetsCmd represents the presets command
var cfPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "パスセットの一覧を表示するコマンド",
	Args:  cobra.NoArgs,
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		presets, err := cfsvc.LoadPathPresets(appConfig.PresetsFile)
		if err != nil {
			return err
		}
		cfsvc.PrintPathPresets(os.Stdout, presets)
		return nil
	},
}

// newObserver は --progress に応じて進捗表示を切り替える
func newObserver(cmd *cobra.Command) cfsvc.Observer {
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		// 一時エラーの警告はプログレスバーと併せて出力する
		return cfsvc.MultiObserver{
			cfsvc.NewProgressObserver(os.Stderr),
			cfsvc.LogObserver{Logger: log.Logger.Level(zerolog.WarnLevel)},
		}
	}
	return cfsvc.LogObserver{Logger: log.Logger}
}

// finishInvalidation は結果表示・メトリクス出力を行い、終了コードを返す
func finishInvalidation(summary cfsvc.Summary, cfg *config.Config) error {
	report := cfsvc.BuildReport(summary)
	cfsvc.PrintReport(os.Stdout, report)

	metrics.RecordInvalidation(string(summary.Outcome), summary.Elapsed, summary.Attempts, summary.TransientErrors)
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn().Err(err).Str("file", cfg.MetricsFile).Msg("⚠️ メトリクスの書き出しに失敗しました")
	}

	if report.ExitCode != 0 {
		return &common.ExitError{Code: report.ExitCode}
	}
	return nil
}

// changedPaths はS3で更新されたオブジェクトから無効化パスを求める
func changedPaths(ctx context.Context, cmd *cobra.Command, cfg *config.Config, deps *cfDeps) ([]string, error) {
	if deps.clients == nil {
		return nil, &config.ConfigError{Field: "changed", Reason: "--simulate では changed を使用できません"}
	}

	sinceValue, _ := cmd.Flags().GetString("since")
	maxPaths, _ := cmd.Flags().GetInt("max-paths")
	since, err := parseSince(sinceValue, time.Now())
	if err != nil {
		return nil, &config.ConfigError{Field: "since", Reason: err.Error()}
	}

	bucketURL := cfg.Bucket
	if bucketURL == "" && cfg.StackName != "" {
		buckets, err := cfn.GetAllS3FromStack(ctx, deps.clients.Cfn(), cfg.StackName, os.Stdout)
		if err != nil {
			return nil, err
		}
		if len(buckets) != 1 {
			return nil, &config.ConfigError{Field: "DEPLOY_BUCKET", Reason: fmt.Sprintf("スタック '%s' のS3バケットを特定できません: %v", cfg.StackName, buckets)}
		}
		bucketURL = buckets[0]
	}
	if bucketURL == "" {
		return nil, &config.ConfigError{Field: "DEPLOY_BUCKET", Reason: "--bucket / DEPLOY_BUCKET またはスタック名を指定してください"}
	}

	bucket, prefix, err := s3svc.ParseBucketURL(bucketURL)
	if err != nil {
		return nil, &config.ConfigError{Field: "DEPLOY_BUCKET", Reason: err.Error()}
	}

	fmt.Printf("🔍 s3://%s/%s で %s 以降に更新されたオブジェクトを検索中...\n", bucket, prefix, common.FormatTime(since))
	objects, err := s3svc.ListChangedObjects(ctx, deps.clients.S3(), bucket, prefix, since)
	if err != nil {
		return nil, err
	}
	fmt.Printf("   更新されたオブジェクト: %d件\n", len(objects))

	paths := s3svc.ObjectKeysToPaths(s3svc.ObjectKeys(objects), prefix)
	collapsed := cfsvc.CollapsePaths(paths, maxPaths)
	if len(collapsed) != len(paths) {
		fmt.Printf("%s パス数が %d件を超えたため %s にまとめます\n", common.WarningIcon, maxPaths, strings.Join(collapsed, " "))
	}
	common.PrintSimpleList(os.Stdout, common.ListOutput{
		Title:        "無効化対象パス",
		Items:        collapsed,
		ResourceName: "パス",
		ShowCount:    true,
	})
	return collapsed, nil
}

// printInvalidation は無効化の詳細を表示する
func printInvalidation(inv cfsvc.Invalidation) {
	fmt.Printf("📋 無効化ID: %s\n", inv.Id)
	fmt.Printf("   ステータス: %s\n", inv.Status)
	fmt.Printf("   作成日時: %s\n", common.FormatTime(inv.CreateTime))
	if len(inv.Paths) > 0 {
		fmt.Printf("   対象パス: %s\n", strings.Join(inv.Paths, ", "))
	}
}

func init() {
	RootCmd.AddCommand(CfCmd)
	CfCmd.AddCommand(cfInvalidateCmd)
	CfCmd.AddCommand(cfStatusCmd)
	CfCmd.AddCommand(cfLsCmd)
	CfCmd.AddCommand(cfPresetsCmd)

	// cf 共通フラグ
	CfCmd.PersistentFlags().StringP("distribution", "d", "", "ディストリビューションID（デフォルト: CLOUDFRONT_DISTRIBUTION_ID）")
	CfCmd.PersistentFlags().StringP("stack", "S", "", "CloudFormationスタック名（デフォルト: AWS_STACK_NAME）")
	CfCmd.PersistentFlags().String("presets", "", "パスセット定義のYAMLファイル")
	CfCmd.PersistentFlags().Bool("simulate", false, "AWSを呼ばずに無効化をシミュレーション")
	CfCmd.PersistentFlags().Bool("via-cli", false, "SDKの代わりにAWS CLIを使用")

	// 待機関連フラグ（invalidate / status）
	for _, c := range []*cobra.Command{cfInvalidateCmd, cfStatusCmd} {
		c.Flags().BoolP("wait", "w", false, "無効化完了まで待機")
		c.Flags().Duration("interval", cfsvc.DefaultPollInterval, "ステータス確認間隔")
		c.Flags().Int("max-attempts", cfsvc.DefaultMaxAttempts, "ステータス確認の最大回数")
		c.Flags().Duration("timeout", 0, "待機時間の上限（最大20分、0は回数のみ）")
		c.Flags().Bool("progress", false, "プログレスバーで進捗を表示")
		c.Flags().String("metrics-file", "", "Prometheusテキストファイルの出力先")
	}

	// invalidate フラグ
	cfInvalidateCmd.Flags().String("bucket", "", "changed で参照するS3バケット（s3://bucket/prefix/ 形式の場合、prefixはオリジンパスとしてURLから除く）")
	cfInvalidateCmd.Flags().String("since", "1h", "changed で対象とする更新時刻（期間またはRFC3339）")
	cfInvalidateCmd.Flags().Int("max-paths", 100, "changed のパス数がこれを超えたら /* にまとめる")

	// status フラグ
	cfStatusCmd.Flags().String("check", "", "指定したURLパスが無効化対象か確認")

	// ls フラグ
	cfLsCmd.Flags().Int32P("limit", "n", cfsvc.DefaultListLimit, "表示件数")
}
