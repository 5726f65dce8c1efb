package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

const aliyunThumbnail = "?x-oss-process=image/resize,w_200"

// AliyunStore: бэкенд на Aliyun OSS.
type AliyunStore struct {
	bucket *oss.Bucket
	base   string
}

// NewAliyunStore создаёт клиент OSS и получает бакет.
func NewAliyunStore(cfg Config) (*AliyunStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required for aliyun storage")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}
	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", cfg.Bucket, err)
	}

	base := cfg.PublicURL
	if base == "" && cfg.Domain != "" {
		base = "https://" + cfg.Domain
	}
	if base == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		base = fmt.Sprintf("https://%s.%s", cfg.Bucket, host)
	}
	return &AliyunStore{bucket: bucket, base: base}, nil
}

func (s *AliyunStore) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	key := ObjectKey(in.Folder, in.FileName)
	options := []oss.Option{oss.WithContext(ctx)}
	if in.ContentType != "" {
		options = append(options, oss.ContentType(in.ContentType))
	}
	if err := s.bucket.PutObject(key, in.Body, options...); err != nil {
		return nil, fmt.Errorf("failed to upload file to aliyun oss: %w", err)
	}
	res := &UploadResult{ID: key, Name: path.Base(key), URL: joinURL(s.base, key), Path: "/" + key}
	return withThumbnail(res, in.ContentType, aliyunThumbnail), nil
}

func (s *AliyunStore) Find(ctx context.Context, prefix, name string) ([]Object, error) {
	var out []Object
	marker := ""
	for {
		lsRes, err := s.bucket.ListObjects(oss.Prefix(prefix), oss.Marker(marker), oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list files from aliyun oss: %w", err)
		}
		for _, object := range lsRes.Objects {
			if matches(object.Key, prefix, name) {
				out = append(out, Object{ID: object.Key, Name: name, Path: "/" + object.Key})
			}
		}
		if !lsRes.IsTruncated {
			return out, nil
		}
		marker = lsRes.NextMarker
	}
}

func (s *AliyunStore) Delete(ctx context.Context, id string) error {
	if err := s.bucket.DeleteObject(id, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete file from aliyun oss: %w", err)
	}
	return nil
}
