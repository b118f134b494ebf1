package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// ===== フォーマット関数 =====

// FormatTime は時刻をローカルタイムで表示用にフォーマットする関数
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "不明"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// ===== 低レベル表示関数 =====

// PrintSimpleList はシンプルな箇条書きリストを表示
func PrintSimpleList(w io.Writer, output ListOutput) {
	fmt.Fprintf(w, "%s:\n", output.Title)

	if len(output.Items) == 0 {
		fmt.Fprintf(w, "該当する%sはありませんでした\n", output.ResourceName)
		return
	}

	for _, item := range output.Items {
		fmt.Fprintf(w, "  - %s\n", item)
	}

	if output.ShowCount {
		fmt.Fprintf(w, "\n合計: %d個の%s\n", len(output.Items), output.ResourceName)
	}
}

// PrintTable はテーブル形式でデータを表示する
// 列幅は表示幅で計算する（全角文字を含むヘッダーでも揃う）
func PrintTable(w io.Writer, title string, columns []TableColumn, data [][]string) {
	if title != "" {
		fmt.Fprintf(w, "\n%s:\n", title)
	}

	// 各列の最大幅を計算（ヘッダーとデータの中で最大値を取得）
	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = runewidth.StringWidth(col.Header)
	}
	for _, row := range data {
		for i, cell := range row {
			if i < len(colWidths) {
				if width := runewidth.StringWidth(cell); width > colWidths[i] {
					colWidths[i] = width
				}
			}
		}
	}

	// ヘッダー表示
	for i, col := range columns {
		fmt.Fprintf(w, "%s ", runewidth.FillRight(col.Header, colWidths[i]))
	}
	fmt.Fprintln(w)

	// 区切り線
	for i := range columns {
		fmt.Fprintf(w, "%s ", strings.Repeat("-", colWidths[i]))
	}
	fmt.Fprintln(w)

	// データ行
	for _, row := range data {
		for i, cell := range row {
			if i < len(columns) {
				fmt.Fprintf(w, "%s ", runewidth.FillRight(cell, colWidths[i]))
			}
		}
		fmt.Fprintln(w)
	}
}

// ===== 高レベル表示関数 =====

// DisplayList は汎用的なリスト表示関数
func DisplayList[T any](
	w io.Writer,
	items []T,
	title string,
	toTableData func([]T) ([]TableColumn, [][]string),
	opts *DisplayOptions,
) {
	if opts == nil {
		opts = &DisplayOptions{}
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = "リソースが見つかりませんでした"
	}

	if len(items) == 0 {
		fmt.Fprintln(w, opts.EmptyMessage)
		return
	}

	columns, data := toTableData(items)
	PrintTable(w, title, columns, data)

	if opts.ShowCount {
		fmt.Fprintf(w, "\n合計: %d件\n", len(items))
	}
}
