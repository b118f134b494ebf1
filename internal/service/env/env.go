package env

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Variable は環境変数の情報を表す構造体
type Variable struct {
	Name        string // 環境変数名 (e.g., CLOUDFRONT_DISTRIBUTION_ID)
	ShortName   string // 短縮名 (e.g., distribution)
	Description string
	Order       int
}

// SupportedVariables はサポートされている環境変数のマップ
var SupportedVariables = map[string]Variable{
	"distribution": {Name: "CLOUDFRONT_DISTRIBUTION_ID", ShortName: "distribution", Description: "ディストリビューションID", Order: 1},
	"stack":        {Name: "AWS_STACK_NAME", ShortName: "stack", Description: "スタック名", Order: 2},
	"bucket":       {Name: "DEPLOY_BUCKET", ShortName: "bucket", Description: "デプロイ先バケット", Order: 3},
	"profile":      {Name: "AWS_PROFILE", ShortName: "profile", Description: "プロファイル", Order: 4},
	"region":       {Name: "AWS_REGION", ShortName: "region", Description: "リージョン", Order: 5},
}

// ValidateVariable は変数名が有効かチェック
func ValidateVariable(variable string) error {
	if _, ok := SupportedVariables[variable]; !ok {
		return fmt.Errorf("'%s' はサポートされていない変数です", variable)
	}
	return nil
}

// GetExportCommand は環境変数をエクスポートするコマンドを返す
func GetExportCommand(variable, value string) (string, error) {
	if err := ValidateVariable(variable); err != nil {
		return "", err
	}
	return fmt.Sprintf("export %s=%s", SupportedVariables[variable].Name, value), nil
}

// GetUnsetCommand は環境変数を削除するコマンドを返す
func GetUnsetCommand(variable string) (string, error) {
	if err := ValidateVariable(variable); err != nil {
		return "", err
	}
	return fmt.Sprintf("unset %s", SupportedVariables[variable].Name), nil
}

// OrderedVariables は表示順に並べた変数を返す
func OrderedVariables() []Variable {
	vars := make([]Variable, 0, len(SupportedVariables))
	for _, v := range SupportedVariables {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Order < vars[j].Order })
	return vars
}

// ShowAllVariables はすべてのサポートされている環境変数を表示
func ShowAllVariables(w io.Writer, lookup func(string) string) {
	if lookup == nil {
		lookup = os.Getenv
	}
	fmt.Fprintln(w, "📋 サイト運用関連の環境変数の状態:")
	fmt.Fprintln(w)
	for _, v := range OrderedVariables() {
		value := lookup(v.Name)
		if value == "" {
			value = "未設定"
		}
		fmt.Fprintf(w, "  %s (%s): %s\n", v.Description, v.Name, value)
	}
}
