package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"siteops/internal/config"
	"siteops/internal/logger"
	"siteops/internal/service/common"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// AppName はコマンド名
const AppName = "siteops"

var region string
var profile string
var debug bool
var envFile string

// appConfig はPersistentPreRunEで一度だけ組み立てる設定
var appConfig *config.Config

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "静的サイト運用ツール（CloudFrontキャッシュ無効化）",
	Long: `S3/CloudFrontでホストしている静的サイトの運用コマンド群です。
デプロイ後のCloudFrontキャッシュ無効化を送信し、完了までステータスを確認します。

設定は環境変数（または作業ディレクトリの .env）とフラグから読み込みます。
  CLOUDFRONT_DISTRIBUTION_ID  無効化対象のディストリビューションID
  AWS_REGION / AWS_PROFILE    AWS接続設定
  AWS_STACK_NAME              ディストリビューションを検出するスタック名`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *common.ExitError
	if !errors.As(err, &exitErr) {
		msg := err.Error()
		if !strings.HasPrefix(msg, common.ErrorIcon) {
			msg = common.ErrorIcon + " " + msg
		}
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(common.ExitCode(err))
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "", "AWSリージョン（デフォルト: AWS_REGION または us-east-1）")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル（デフォルト: AWS_PROFILE）")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "デバッグログを出力")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "読み込む.envファイル（存在しない場合は無視）")

	// コマンド実行前に共通で設定の読み込みを行う
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// ヘルプ・バージョンは設定不要
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return loadAppConfig(cmd)
	}
}

// loadAppConfig は環境変数から設定を読み込み、フラグで上書きする
func loadAppConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = region
	}
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}

	logger.Setup(os.Stderr, cfg.Debug)

	applyCfFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Profile != "" && !flags.Changed("profile") {
		log.Debug().Msgf("🔍 環境変数 AWS_PROFILE の値 '%s' を使用します", cfg.Profile)
	}
	log.Debug().Interface("config", cfg.Redacted()).Msg("設定を読み込みました")

	appConfig = cfg
	return nil
}
