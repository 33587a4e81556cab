package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ossgrants/grantgraph/backend/internal/util"
)

// ArchiveStore keeps dated dataset snapshots in an S3-compatible bucket so a
// bad refresh can be rolled back from any earlier snapshot.
type ArchiveStore struct {
	client *s3.Client
	bucket string
}

// NewArchiveStore builds the store from AWS_* environment variables. Returns
// nil when no bucket is configured; archiving is optional.
func NewArchiveStore(ctx context.Context) *ArchiveStore {
	bucket := util.GetEnvString("AWS_BUCKET", "")
	if bucket == "" {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &ArchiveStore{client: client, bucket: bucket}
}

func (a *ArchiveStore) ArchiveSnapshot(ctx context.Context, key string, body io.Reader) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot %s: %w", key, err)
	}
	return nil
}

// GetSnapshot fetches an archived snapshot by key.
func (a *ArchiveStore) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// ListSnapshots returns all archived snapshot keys under the given prefix.
func (a *ArchiveStore) ListSnapshots(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	}

	for {
		output, err := a.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots with prefix %s: %w", prefix, err)
		}
		for _, obj := range output.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if output.IsTruncated != nil && *output.IsTruncated {
			input.ContinuationToken = output.NextContinuationToken
		} else {
			break
		}
	}

	return keys, nil
}
