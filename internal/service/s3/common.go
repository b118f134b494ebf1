package s3

import (
	"fmt"
	"strings"
)

// ParseBucketURL は "bucket" または "s3://bucket/prefix/" 形式を分解します
func ParseBucketURL(s3url string) (bucket, prefix string, err error) {
	noPrefix := strings.TrimPrefix(s3url, "s3://")
	parts := strings.SplitN(noPrefix, "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return "", "", fmt.Errorf("⚠️ バケット名が空です: %q", s3url)
	}
	if len(parts) > 1 {
		prefix = parts[1]
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}
