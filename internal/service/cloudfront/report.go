package cloudfront

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Summary はワークフローの最終状態
type Summary struct {
	DistributionId  string
	InvalidationId  string
	Outcome         Outcome
	Status          Status
	Paths           []string
	Elapsed         time.Duration
	Attempts        int
	TransientErrors int
	Err             error
}

// Report はSummaryから組み立てた表示内容と終了コード
type Report struct {
	Title    string
	Lines    []string
	ExitCode int
	Success  bool
}

// BuildReport はSummaryを人間向けの結果表示と終了コードに変換します（副作用なし）
func BuildReport(s Summary) Report {
	r := Report{ExitCode: 1}

	switch s.Outcome {
	case OutcomeCompleted:
		r.Title = "✅ キャッシュ無効化が完了しました"
		r.ExitCode = 0
		r.Success = true
	case OutcomeSubmitted:
		r.Title = "✅ キャッシュ無効化を開始しました（完了は待機していません）"
		r.ExitCode = 0
		r.Success = true
	case OutcomeTimedOut:
		r.Title = "⚠️ 待機上限に達しました: 完了を確認できていません（CloudFront側で処理が継続している可能性があります）"
	case OutcomeUnexpectedStatus:
		r.Title = fmt.Sprintf("❌ 想定外のステータス '%s' を受け取ったため待機を中止しました", s.Status)
	case OutcomeQueryFailed:
		r.Title = "❌ ステータスの取得が拒否されたため待機を中止しました"
	case OutcomeSubmitFailed:
		r.Title = "❌ キャッシュ無効化リクエストが拒否されました"
	case OutcomeInterrupted:
		r.Title = "⚠️ 待機を中断しました（無効化はCloudFront側で継続します）"
	case OutcomeConfigError:
		r.Title = "❌ 設定エラーのため実行できません"
	default:
		r.Title = fmt.Sprintf("❌ 不明な結果です: %s", s.Outcome)
	}

	if s.DistributionId != "" {
		r.Lines = append(r.Lines, fmt.Sprintf("ディストリビューション: %s", s.DistributionId))
	}
	if s.InvalidationId != "" {
		r.Lines = append(r.Lines, fmt.Sprintf("無効化ID: %s", s.InvalidationId))
	}
	if s.Status != "" {
		r.Lines = append(r.Lines, fmt.Sprintf("最終ステータス: %s", s.Status))
	}
	if len(s.Paths) > 0 {
		r.Lines = append(r.Lines, fmt.Sprintf("対象パス: %s", strings.Join(s.Paths, ", ")))
	}
	if s.Attempts > 0 {
		r.Lines = append(r.Lines, fmt.Sprintf("問い合わせ回数: %d (一時エラー %d回)", s.Attempts, s.TransientErrors))
	}
	if s.Elapsed > 0 {
		r.Lines = append(r.Lines, fmt.Sprintf("経過時間: %s", s.Elapsed.Round(time.Second)))
	}
	if s.Err != nil {
		r.Lines = append(r.Lines, fmt.Sprintf("エラー: %v", s.Err))
		if IsTooManyInvalidations(s.Err) {
			r.Lines = append(r.Lines, "ヒント: 同時に実行できる無効化数の上限に達しています。実行中の無効化の完了を待ってから再実行してください")
		}
	}
	if s.Outcome == OutcomeTimedOut && s.InvalidationId != "" {
		r.Lines = append(r.Lines, fmt.Sprintf("ヒント: `cf status %s -w` で後から確認できます", s.InvalidationId))
	}
	return r
}

// PrintReport はReportを出力します
func PrintReport(w io.Writer, r Report) {
	title := color.New(color.FgRed, color.Bold)
	switch {
	case r.Success:
		title = color.New(color.FgGreen, color.Bold)
	case r.ExitCode != 0 && strings.HasPrefix(r.Title, "⚠️"):
		title = color.New(color.FgYellow, color.Bold)
	}

	fmt.Fprintln(w)
	title.Fprintln(w, r.Title)
	for _, line := range r.Lines {
		fmt.Fprintf(w, "   %s\n", line)
	}
}
