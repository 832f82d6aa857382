package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opst/knitlabel/pkg/blob"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type Config struct {
	// "http(s)://host:port" or "host:port"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool

	// lifetime of access/upload links
	LinkExpiry time.Duration
}

type store struct {
	client *minio.Client
	region string
	expiry time.Duration

	mux     sync.Mutex
	buckets map[string]struct{}
}

// New creates a blob.Store backed by MinIO or S3.
//
// Each organization has a bucket named by its id.
func New(cfg Config) (blob.Store, error) {
	if cfg.Endpoint == "" {
		return nil, xe.New("endpoint is required")
	}
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		useSSL = useSSL || u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}

	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	return &store{
		client:  client,
		region:  cfg.Region,
		expiry:  expiry,
		buckets: map[string]struct{}{},
	}, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return xe.WrapWithNote(err.Error(), blob.ErrNotFound)
	}
	if strings.Contains(strings.ToLower(err.Error()), "key does not exist") {
		return xe.WrapWithNote(err.Error(), blob.ErrNotFound)
	}
	return xe.Wrap(err)
}

func (s *store) ensureBucket(ctx context.Context, bucket string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.buckets[bucket]; ok {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return xe.Wrap(err)
	}
	if !exists {
		if err := s.client.MakeBucket(
			ctx, bucket, minio.MakeBucketOptions{Region: s.region},
		); err != nil {
			if code := minio.ToErrorResponse(err).Code; code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
				return xe.Wrap(err)
			}
		}
	}
	s.buckets[bucket] = struct{}{}
	return nil
}

func (s *store) Put(ctx context.Context, organization string, key string, data []byte) error {
	if err := s.ensureBucket(ctx, organization); err != nil {
		return err
	}
	_, err := s.client.PutObject(
		ctx, organization, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	return classify(err)
}

func (s *store) Get(ctx context.Context, organization string, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, organization, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

func (s *store) Delete(ctx context.Context, organization string, key string) error {
	err := s.client.RemoveObject(ctx, organization, key, minio.RemoveObjectOptions{})
	if err := classify(err); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return err
	}
	return nil
}

func (s *store) Exists(ctx context.Context, organization string, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, organization, key, minio.StatObjectOptions{})
	if err := classify(err); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *store) AccessLink(ctx context.Context, organization string, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, organization, key, s.expiry, url.Values{})
	if err != nil {
		return "", classify(err)
	}
	return u.String(), nil
}

func (s *store) UploadLink(ctx context.Context, organization string, key string) (string, error) {
	if err := s.ensureBucket(ctx, organization); err != nil {
		return "", err
	}
	u, err := s.client.PresignedPutObject(ctx, organization, key, s.expiry)
	if err != nil {
		return "", classify(err)
	}
	return u.String(), nil
}
