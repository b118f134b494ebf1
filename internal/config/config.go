package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultEnvFile は存在すれば読み込む.envファイル
const DefaultEnvFile = ".env"

// MaxTimeout はポーリング時間上限の最大値
const MaxTimeout = 20 * time.Minute

// Config はプロセス開始時に一度だけ組み立てる実行設定
// 本番のディストリビューションIDやバケット名をデフォルト値として持たない
type Config struct {
	DistributionId string        `env:"CLOUDFRONT_DISTRIBUTION_ID" env-description:"CloudFrontディストリビューションID"`
	Region         string        `env:"AWS_REGION" env-default:"us-east-1" env-description:"AWSリージョン"`
	Profile        string        `env:"AWS_PROFILE" env-description:"AWSプロファイル"`
	StackName      string        `env:"AWS_STACK_NAME" env-description:"CloudFormationスタック名"`
	Bucket         string        `env:"DEPLOY_BUCKET" env-description:"サイトのデプロイ先S3バケット"`
	PollInterval   time.Duration `env:"INVALIDATION_POLL_INTERVAL" env-default:"10s" env-description:"ステータス確認間隔"`
	MaxAttempts    int           `env:"INVALIDATION_MAX_ATTEMPTS" env-default:"30" env-description:"ステータス確認の最大回数"`
	Timeout        time.Duration `env:"INVALIDATION_TIMEOUT" env-default:"0s" env-description:"待機時間の上限（0は回数のみで判定）"`
	PresetsFile    string        `env:"INVALIDATION_PRESETS_FILE" env-description:"パスセット定義のYAMLファイル"`
	MetricsFile    string        `env:"INVALIDATION_METRICS_FILE" env-description:"Prometheusテキストファイルの出力先"`
	Debug          bool          `env:"DEBUG" env-default:"false" env-description:"デバッグログを出力"`
}

// ConfigError は送信前に検出する設定エラー
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("設定エラー (%s): %s", e.Field, e.Reason)
}

// IsConfigError はerrが設定エラーかどうかを判定します
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// Load は.envファイル（存在する場合のみ）と環境変数から設定を読み込みます
// 既に設定されている環境変数は.envの値で上書きされない
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf(".envファイルの読み込みに失敗 (%s): %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, &ConfigError{Field: "env", Reason: err.Error()}
	}
	return &cfg, nil
}

// Validate はポーリング設定の妥当性を確認します
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return &ConfigError{Field: "INVALIDATION_POLL_INTERVAL", Reason: "0より大きい値を指定してください"}
	}
	if c.MaxAttempts <= 0 {
		return &ConfigError{Field: "INVALIDATION_MAX_ATTEMPTS", Reason: "1以上を指定してください"}
	}
	if c.Timeout < 0 || c.Timeout > MaxTimeout {
		return &ConfigError{Field: "INVALIDATION_TIMEOUT", Reason: fmt.Sprintf("0〜%sの範囲で指定してください", MaxTimeout)}
	}
	return nil
}

// RequireDistribution はディストリビューションの指定方法があるか確認します
func (c *Config) RequireDistribution() error {
	if c.DistributionId == "" && c.StackName == "" {
		return &ConfigError{
			Field:  "CLOUDFRONT_DISTRIBUTION_ID",
			Reason: "-d / CLOUDFRONT_DISTRIBUTION_ID またはスタック名 (-S / AWS_STACK_NAME) を指定してください",
		}
	}
	return nil
}

// Redacted はログ出力用の設定ビューを返します
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"distributionId": c.DistributionId,
		"region":         c.Region,
		"profile":        c.Profile,
		"stackName":      c.StackName,
		"bucket":         c.Bucket,
		"pollInterval":   c.PollInterval.String(),
		"maxAttempts":    c.MaxAttempts,
		"timeout":        c.Timeout.String(),
		"presetsFile":    c.PresetsFile,
		"metricsFile":    c.MetricsFile,
	}
}

// Usage は環境変数の説明を返します
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
