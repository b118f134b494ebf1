package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv はテスト対象の環境変数を未設定にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CLOUDFRONT_DISTRIBUTION_ID", "AWS_REGION", "AWS_PROFILE", "AWS_STACK_NAME", "DEPLOY_BUCKET",
		"INVALIDATION_POLL_INTERVAL", "INVALIDATION_MAX_ATTEMPTS", "INVALIDATION_TIMEOUT",
		"INVALIDATION_PRESETS_FILE", "INVALIDATION_METRICS_FILE", "DEBUG",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DistributionId)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 30, cfg.MaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.False(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLOUDFRONT_DISTRIBUTION_ID", "E2ABCDEF123456")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("INVALIDATION_POLL_INTERVAL", "5s")
	t.Setenv("INVALIDATION_MAX_ATTEMPTS", "12")
	t.Setenv("INVALIDATION_TIMEOUT", "2m")
	t.Setenv("DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "E2ABCDEF123456", cfg.DistributionId)
	assert.Equal(t, "ap-northeast-1", cfg.Region)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 12, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_STACK_NAME", "from-env")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("CLOUDFRONT_DISTRIBUTION_ID=EFROMFILE\nAWS_STACK_NAME=from-file\n"), 0644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "EFROMFILE", cfg.DistributionId)
	// 既存の環境変数が優先される
	assert.Equal(t, "from-env", cfg.StackName)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVALIDATION_MAX_ATTEMPTS", "many")

	_, err := Load("")
	assert.True(t, IsConfigError(err))
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{PollInterval: time.Second, MaxAttempts: 1}
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "有効", modify: func(c *Config) {}},
		{name: "上限ちょうど", modify: func(c *Config) { c.Timeout = MaxTimeout }},
		{name: "間隔0", modify: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "回数0", modify: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "負の上限", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "20分超", modify: func(c *Config) { c.Timeout = MaxTimeout + time.Second }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, IsConfigError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_RequireDistribution(t *testing.T) {
	assert.True(t, IsConfigError((&Config{}).RequireDistribution()))
	assert.NoError(t, (&Config{DistributionId: "E1"}).RequireDistribution())
	assert.NoError(t, (&Config{StackName: "site"}).RequireDistribution())
}

func TestUsage(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "CLOUDFRONT_DISTRIBUTION_ID")
	assert.Contains(t, usage, "INVALIDATION_POLL_INTERVAL")
}
