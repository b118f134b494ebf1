package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner はAWS CLIを実行して標準出力を返すインターフェース
type Runner interface {
	Output(ctx context.Context, args ...string) ([]byte, error)
}

// AwsRunner は `aws` コマンドを実行するRunner
type AwsRunner struct {
	Profile string
	Region  string
}

// CommandError はAWS CLIが非ゼロで終了したことを表す
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("aws %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Output はAWS CLIコマンドを実行する共通関数
func (r AwsRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	fullArgs := append([]string(nil), args...)
	if r.Profile != "" {
		fullArgs = append(fullArgs, "--profile", r.Profile)
	}
	if r.Region != "" {
		fullArgs = append(fullArgs, "--region", r.Region)
	}

	cmd := exec.CommandContext(ctx, "aws", fullArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}
