package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const DefaultExpiry = 15 * time.Minute

// Presigner turns s3:// object URLs into time-limited HTTPS URLs so the
// regular HTTP download path can fetch them.
type Presigner struct {
	client  *s3.PresignClient
	expires time.Duration
}

func NewPresigner(ctx context.Context, profile string, expires time.Duration) (*Presigner, error) {
	opts := []func(*config.LoadOptions) error{config.WithRetryMode("adaptive")}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	if expires <= 0 {
		expires = DefaultExpiry
	}
	return &Presigner{
		client:  s3.NewPresignClient(s3.NewFromConfig(cfg)),
		expires: expires,
	}, nil
}

func (p *Presigner) Presign(ctx context.Context, url string) (string, error) {
	bucket, key, err := ParseS3URL(url)
	if err != nil {
		return "", err
	}
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expires))
	if err != nil {
		return "", fmt.Errorf("error presigning s3://%s/%s: %w", bucket, key, err)
	}
	log.Debug().Str("op", "s3/presign").Msgf("presigned s3://%s/%s for %s", bucket, key, p.expires)
	return req.URL, nil
}
