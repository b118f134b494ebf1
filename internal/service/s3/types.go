package s3

import "time"

// S3Object はS3オブジェクトの情報を格納する構造体
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}
