package utils

import "time"

type HTTPClientConfig struct {
	Timeout       time.Duration // dial and proxy connect timeout
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	BearerToken   string
	Headers       map[string]string
}

type DownloadEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
}
