package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/tilematch/blobstore"
	tmminio "github.com/hupe1980/tilematch/blobstore/minio"
	tms3 "github.com/hupe1980/tilematch/blobstore/s3"
)

const defaultCacheMaxBytes = 1 << 30

// openStore builds the blob store named by cfg.Kind. Remote stores are
// wrapped in a disk cache when cfg.CacheDir is set.
func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	store, err := openBaseStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Kind == "local" || cfg.CacheDir == "" {
		return store, nil
	}

	maxBytes := cfg.CacheMaxBytes
	if maxBytes == 0 {
		maxBytes = defaultCacheMaxBytes
	}
	c, err := blobstore.NewDiskCache(cfg.CacheDir, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return blobstore.NewCachingStore(store, c), nil
}

func openBaseStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Kind {
	case "local":
		return blobstore.NewLocalStore(cfg.Root), nil

	case "minio":
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return tmminio.NewStore(client, cfg.Bucket, cfg.Prefix), nil

	case "s3":
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		if cfg.AccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				awscreds.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return tms3.NewStore(client, cfg.Bucket, cfg.Prefix), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreKind, cfg.Kind)
	}
}
