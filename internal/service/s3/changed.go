package s3

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ListChangedObjects はsince以降に更新されたオブジェクトを取得します
func ListChangedObjects(ctx context.Context, s3Client s3.ListObjectsV2APIClient, bucketName, prefix string, since time.Time) ([]S3Object, error) {
	var objects []S3Object

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(s3Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("S3オブジェクト一覧取得エラー: %w", err)
		}

		for _, obj := range page.Contents {
			modified := aws.ToTime(obj.LastModified)
			if modified.Before(since) {
				continue
			}
			objects = append(objects, S3Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: modified,
			})
		}
	}

	return objects, nil
}

// ObjectKeysToPaths はS3オブジェクトキーをCloudFrontの無効化パスに変換します
// a/index.html は /a/index.html に加えて /a/ と /a も対象にする（ルートの index.html は /）
// prefixはオリジンパスとして扱い、キーから取り除く
func ObjectKeysToPaths(keys []string, prefix string) []string {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	for _, key := range sorted {
		key = strings.TrimPrefix(key, "/")
		key = strings.TrimPrefix(key, strings.TrimPrefix(prefix, "/"))
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}
		add("/" + escapeKey(key))

		if path.Base(key) == "index.html" {
			dir := path.Dir(key)
			if dir == "." {
				add("/")
				continue
			}
			add("/" + escapeKey(dir) + "/")
			add("/" + escapeKey(dir))
		}
	}
	return paths
}

// escapeKey はキーをセグメントごとにURLエンコードします（* も %2A にする）
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = strings.ReplaceAll(url.PathEscape(segment), "*", "%2A")
	}
	return strings.Join(segments, "/")
}

// ObjectKeys はS3Objectのキー一覧を返します
func ObjectKeys(objects []S3Object) []string {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys
}
