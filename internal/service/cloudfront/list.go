package cloudfront

import (
	"context"
	"io"
	"strings"

	"siteops/internal/service/common"
)

// DefaultListLimit は一覧表示のデフォルト件数
const DefaultListLimit = 10

// ListRecentInvalidations は最近の無効化一覧を表示します
func ListRecentInvalidations(ctx context.Context, w io.Writer, lister Lister, distributionId string, limit int32) error {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	invalidations, err := lister.ListInvalidations(ctx, distributionId, limit)
	if err != nil {
		return common.FormatListError("無効化", err)
	}

	common.DisplayList(w, invalidations, "無効化一覧 ("+distributionId+")", invalidationsToTable, &common.DisplayOptions{
		ShowCount:    true,
		EmptyMessage: "無効化が見つかりませんでした",
	})
	return nil
}

func invalidationsToTable(invalidations []Invalidation) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "無効化ID"},
		{Header: "ステータス"},
		{Header: "作成日時"},
	}
	data := make([][]string, len(invalidations))
	for i, inv := range invalidations {
		data[i] = []string{inv.Id, string(inv.Status), common.FormatTime(inv.CreateTime)}
	}
	return columns, data
}

// PrintPathPresets はパスセットの一覧を表示します
func PrintPathPresets(w io.Writer, presets PathPresets) {
	type row struct {
		name  string
		paths []string
	}

	rows := []row{{name: PathSetDeployment, paths: presets.Deployment}}
	for _, name := range presets.ContentTypes() {
		rows = append(rows, row{name: PathSetContent + " " + name, paths: presets.Content[name]})
	}

	common.DisplayList(w, rows, "パスセット一覧", func(rows []row) ([]common.TableColumn, [][]string) {
		columns := []common.TableColumn{{Header: "パスセット"}, {Header: "無効化パス"}}
		data := make([][]string, len(rows))
		for i, r := range rows {
			data[i] = []string{r.name, strings.Join(r.paths, " ")}
		}
		return columns, data
	}, nil)
}
