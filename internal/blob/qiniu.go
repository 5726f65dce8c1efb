package blob

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
)

const qiniuThumbnail = "?imageView2/2/w/200"

// QiniuStore: бэкенд на Qiniu Kodo. Публичный домен бакета обязателен.
type QiniuStore struct {
	mac     *qbox.Mac
	bucket  string
	domain  string
	manager *storage.BucketManager
	region  *storage.Region
}

// NewQiniuStore определяет регион бакета и готовит менеджер.
func NewQiniuStore(cfg Config) (*QiniuStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required for qiniu storage")
	}
	if cfg.Domain == "" {
		return nil, errors.New("domain is required for qiniu storage")
	}
	mac := qbox.NewMac(cfg.AccessKey, cfg.SecretKey)
	region, err := storage.GetRegion(cfg.AccessKey, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get qiniu region: %w", err)
	}
	manager := storage.NewBucketManager(mac, &storage.Config{Region: region, UseHTTPS: true})
	return &QiniuStore{
		mac:     mac,
		bucket:  cfg.Bucket,
		domain:  cfg.Domain,
		manager: manager,
		region:  region,
	}, nil
}

func (s *QiniuStore) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	key := ObjectKey(in.Folder, in.FileName)
	putPolicy := storage.PutPolicy{Scope: fmt.Sprintf("%s:%s", s.bucket, key)}
	upToken := putPolicy.UploadToken(s.mac)

	uploader := storage.NewFormUploader(&storage.Config{Region: s.region, UseHTTPS: true})
	ret := storage.PutRet{}
	putExtra := storage.PutExtra{MimeType: in.ContentType}
	size := in.Size
	if size <= 0 {
		size = -1
	}
	if err := uploader.Put(ctx, &ret, upToken, key, in.Body, size, &putExtra); err != nil {
		return nil, fmt.Errorf("failed to upload file to qiniu kodo: %w", err)
	}
	res := &UploadResult{
		ID:   key,
		Name: path.Base(key),
		URL:  storage.MakePublicURLv2(s.domain, key),
		Path: "/" + key,
	}
	return withThumbnail(res, in.ContentType, qiniuThumbnail), nil
}

func (s *QiniuStore) Find(ctx context.Context, prefix, name string) ([]Object, error) {
	var out []Object
	marker := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, _, next, hasNext, err := s.manager.ListFiles(s.bucket, prefix, "", marker, 1000)
		if err != nil {
			return nil, fmt.Errorf("failed to list files from qiniu kodo: %w", err)
		}
		for _, entry := range entries {
			if matches(entry.Key, prefix, name) {
				out = append(out, Object{ID: entry.Key, Name: name, Path: "/" + entry.Key})
			}
		}
		if !hasNext {
			return out, nil
		}
		marker = next
	}
}

func (s *QiniuStore) Delete(ctx context.Context, id string) error {
	if err := s.manager.Delete(s.bucket, id); err != nil {
		return fmt.Errorf("failed to delete file from qiniu kodo: %w", err)
	}
	return nil
}
