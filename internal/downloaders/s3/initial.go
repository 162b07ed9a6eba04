package s3

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "s3://"

func IsS3URL(url string) bool {
	return strings.HasPrefix(url, scheme)
}

// ParseS3URL splits s3://bucket/key. Keys ending in "/" name a prefix, not an
// object, and are rejected.
func ParseS3URL(url string) (string, string, error) {
	if !IsS3URL(url) {
		return "", "", fmt.Errorf("not an S3 URL: %s", url)
	}
	parts := strings.SplitN(strings.TrimPrefix(url, scheme), "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	if len(parts) < 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", fmt.Errorf("S3 URL must name an object: %s", url)
	}
	return parts[0], parts[1], nil
}

// ObjectName is the default local file name for an object key.
func ObjectName(key string) string {
	return path.Base(key)
}
