package common

// ListOutput はリスト表示の共通構造体
type ListOutput struct {
	Title        string   // 例: "コンテンツ種別一覧"
	Items        []string // 表示するアイテムのリスト
	ResourceName string   // 例: "無効化", "パス"
	ShowCount    bool     // 合計数を表示するか
}

// TableColumn はテーブルの列定義
type TableColumn struct {
	Header string
}

// DisplayOptions はリスト表示のオプション
type DisplayOptions struct {
	ShowCount    bool   // 件数を表示するか
	EmptyMessage string // 空の場合のメッセージ（デフォルト: "リソースが見つかりませんでした"）
}
