package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/tencentyun/cos-go-sdk-v5"
)

const tencentThumbnail = "?imageMogr2/thumbnail/200x"

// TencentStore: бэкенд на Tencent COS.
type TencentStore struct {
	client *cos.Client
	base   string
}

// NewTencentStore создаёт клиент COS для бакета.
func NewTencentStore(cfg Config) (*TencentStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required for tencent storage")
	}
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		bucketURL = cfg.Endpoint
	}
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	base := cfg.PublicURL
	if base == "" {
		base = u.String()
	}
	return &TencentStore{client: client, base: base}, nil
}

func (s *TencentStore) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	key := ObjectKey(in.Folder, in.FileName)
	opts := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   in.ContentType,
			ContentLength: in.Size,
		},
	}
	if _, err := s.client.Object.Put(ctx, key, in.Body, opts); err != nil {
		return nil, fmt.Errorf("failed to upload file to tencent cos: %w", err)
	}
	res := &UploadResult{ID: key, Name: path.Base(key), URL: joinURL(s.base, key), Path: "/" + key}
	return withThumbnail(res, in.ContentType, tencentThumbnail), nil
}

func (s *TencentStore) Find(ctx context.Context, prefix, name string) ([]Object, error) {
	var out []Object
	marker := ""
	for {
		result, _, err := s.client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix:  prefix,
			Marker:  marker,
			MaxKeys: 1000,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list files from tencent cos: %w", err)
		}
		for _, object := range result.Contents {
			if matches(object.Key, prefix, name) {
				out = append(out, Object{ID: object.Key, Name: name, Path: "/" + object.Key})
			}
		}
		if !result.IsTruncated {
			return out, nil
		}
		marker = result.NextMarker
	}
}

func (s *TencentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Object.Delete(ctx, id); err != nil {
		if cos.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete file from tencent cos: %w", err)
	}
	return nil
}
