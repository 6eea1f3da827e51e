package objectstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// expiresAtMetadataKey names the object metadata header carrying the expiry
// as Unix seconds. The other backends keep milliseconds; this backend stays
// on seconds so objects written by existing deployments remain readable.
const expiresAtMetadataKey = "expires-at"

// deleteBatchSize is the S3 DeleteObjects limit.
const deleteBatchSize = 1000

// Backend stores each entry as one object at <prefix>/<sha256(key)>, with
// the raw value as the payload and the expiry in object metadata.
type Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

// Open initializes the backend for one registry. Recognized options:
//
//	bucket   — object store bucket, required
//	prefix   — object key prefix; defaults to the registry name
//	region   — AWS region; ambient configuration applies when unset
//	endpoint — custom endpoint for S3-compatible stores (path-style)
func Open(ctx context.Context, registry string, options map[string]string) (ports.Backend, error) {
	bucket := options["bucket"]
	if bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket option is required")
	}
	prefix := options["prefix"]
	if prefix == "" {
		prefix = registry
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{}
	if region := options["region"]; region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := options["endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Backend{client: client, bucket: bucket, prefix: prefix}, nil
}

func (b *Backend) objectKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return b.prefix + "/" + hex.EncodeToString(sum[:])
}

func (b *Backend) Get(ctx context.Context, key string) (cache.Lookup, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return cache.Lookup{Status: cache.StatusNotFound}, nil
		}
		return cache.Lookup{}, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	value, err := io.ReadAll(out.Body)
	if err != nil {
		return cache.Lookup{}, fmt.Errorf("failed to read object body: %w", err)
	}

	if expiredMetadata(out.Metadata, time.Now()) {
		return cache.Lookup{Status: cache.StatusFoundExpired, Value: value}, nil
	}
	return cache.Lookup{Status: cache.StatusFound, Value: value}, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
		Body:   bytes.NewReader(value),
		Metadata: map[string]string{
			expiresAtMetadataKey: strconv.FormatInt(expiresAt, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	return b.deleteWhere(ctx, func(context.Context, string) (bool, error) {
		return true, nil
	})
}

func (b *Backend) Cleanup(ctx context.Context) error {
	now := time.Now()
	return b.deleteWhere(ctx, func(ctx context.Context, objectKey string) (bool, error) {
		head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			return false, fmt.Errorf("failed to head object %s: %w", objectKey, err)
		}
		return expiredMetadata(head.Metadata, now), nil
	})
}

func (b *Backend) Close() error { return nil }

// deleteWhere walks every object under the registry prefix and batch-deletes
// those the predicate selects.
func (b *Backend) deleteWhere(ctx context.Context, match func(ctx context.Context, objectKey string) (bool, error)) error {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix + "/"),
	})

	var batch []s3types.ObjectIdentifier
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &s3types.Delete{Objects: batch, Quiet: aws.Bool(true)},
		})
		batch = batch[:0]
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		return nil
	}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			selected, err := match(ctx, aws.ToString(obj.Key))
			if err != nil {
				return err
			}
			if !selected {
				continue
			}
			batch = append(batch, s3types.ObjectIdentifier{Key: obj.Key})
			if len(batch) == deleteBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

// expiredMetadata reads the expires-at header (Unix seconds). Objects with
// no header, an unparsable header, or the 0 sentinel never expire.
func expiredMetadata(metadata map[string]string, now time.Time) bool {
	raw, ok := metadata[expiresAtMetadataKey]
	if !ok {
		return false
	}
	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || expiresAt == 0 {
		return false
	}
	return expiresAt < now.Unix()
}

var _ ports.Backend = (*Backend)(nil)
