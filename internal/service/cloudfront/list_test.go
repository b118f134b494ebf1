package cloudfront

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	items    []Invalidation
	err      error
	gotLimit int32
}

func (m *mockLister) ListInvalidations(_ context.Context, _ string, maxItems int32) ([]Invalidation, error) {
	m.gotLimit = maxItems
	return m.items, m.err
}

func TestListRecentInvalidations(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		lister    *mockLister
		limit     int32
		wantLimit int32
		wantOut   []string
		wantErr   bool
	}{
		{
			name: "一覧表示",
			lister: &mockLister{items: []Invalidation{
				{Id: "I2", Status: StatusInProgress, CreateTime: created},
				{Id: "I1", Status: StatusCompleted, CreateTime: created.Add(-time.Hour)},
			}},
			limit:     5,
			wantLimit: 5,
			wantOut:   []string{"無効化一覧 (EDIST123)", "無効化ID", "I2", "InProgress", "Completed", "合計: 2件"},
		},
		{
			name:      "件数未指定はデフォルト",
			lister:    &mockLister{},
			wantLimit: DefaultListLimit,
			wantOut:   []string{"無効化が見つかりませんでした"},
		},
		{
			name:    "取得エラー",
			lister:  &mockLister{err: errors.New("denied")},
			limit:   1,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := ListRecentInvalidations(context.Background(), &buf, tt.lister, "EDIST123", tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, tt.lister.gotLimit)
			for _, s := range tt.wantOut {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintPathPresets(t *testing.T) {
	var buf bytes.Buffer
	PrintPathPresets(&buf, DefaultPathPresets())

	out := buf.String()
	assert.Contains(t, out, "パスセット一覧")
	assert.Contains(t, out, "deployment")
	assert.Contains(t, out, "content blog")
	assert.Contains(t, out, "/blog /blog/*")
	assert.Contains(t, out, "content seo")
}
