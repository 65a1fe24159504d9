// Package blob stores uploaded files such as item images and avatars.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Buckets used by the application.
const (
	BucketItems   = "item-images"
	BucketAvatars = "avatars"
)

// Storage uploads objects and resolves their public URLs.
type Storage interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) error
	PublicURL(bucket, objectPath string) string
}

// CleanPath normalizes an object path and rejects paths that escape the bucket.
func CleanPath(objectPath string) (string, error) {
	p := path.Clean("/" + strings.TrimSpace(objectPath))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("empty object path")
	}
	if strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return p, nil
}
