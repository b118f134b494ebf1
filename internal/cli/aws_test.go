package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "標準エラー出力を表示",
			err:  &CommandError{Args: []string{"cloudfront", "get-invalidation"}, Stderr: "\nAn error occurred (AccessDenied)\n", Err: errors.New("exit status 254")},
			want: "aws cloudfront get-invalidation: An error occurred (AccessDenied)",
		},
		{
			name: "標準エラー出力がない場合は終了理由",
			err:  &CommandError{Args: []string{"cloudfront"}, Err: errors.New("exit status 1")},
			want: "aws cloudfront: exit status 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.err.Err)
		})
	}
}
