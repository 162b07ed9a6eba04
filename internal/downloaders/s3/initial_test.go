package s3

import "testing"

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url         string
		bucket, key string
		wantErr     bool
	}{
		{url: "s3://bucket/file.bin", bucket: "bucket", key: "file.bin"},
		{url: "s3://bucket/deep/path/file.tar.gz", bucket: "bucket", key: "deep/path/file.tar.gz"},
		{url: "s3://bucket", wantErr: true},
		{url: "s3://bucket/prefix/", wantErr: true},
		{url: "s3:///key", wantErr: true},
		{url: "https://bucket/key", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseS3URL(%q): expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseS3URL(%q): %v", tt.url, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URL(%q) = %q, %q; want %q, %q", tt.url, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName("deep/path/file.tar.gz"); got != "file.tar.gz" {
		t.Errorf("expected file.tar.gz, got %q", got)
	}
}
