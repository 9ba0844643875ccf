// Package storage wraps the external object store that hosts post images.
// The implementation targets MinIO and works against any S3-compatible
// provider. The adapter is stateless; callers may share one instance across
// concurrent requests.
package storage

import "context"

// Uploader 接收内存中的字节，流式上传，成功返回公开可访问 URL。
// 不做重试，失败与否由调用方决定怎么处理。
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
