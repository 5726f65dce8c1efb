// Package blob — хранилище содержимого файлов. Метаданные живут в БД,
// здесь только байты: загрузка, поиск объекта по имени и удаление.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound: объект с таким идентификатором отсутствует.
var ErrNotFound = errors.New("blob not found")

// UploadInput описывает загружаемый объект.
type UploadInput struct {
	Folder      string // например "/gophbox/<userID>"
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult: ответ хранилища после загрузки.
type UploadResult struct {
	ID           string  `json:"fileId"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Path         string  `json:"filePath"`
}

// Object: найденный в хранилище объект.
type Object struct {
	ID   string
	Name string
	Path string
}

// Store: контракт внешнего хранилища.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	// Find ищет объекты с ключом под prefix, у которых последний сегмент совпадает с name.
	// Объекты вне prefix не возвращаются.
	Find(ctx context.Context, prefix, name string) ([]Object, error)
	// Delete удаляет объект по идентификатору (ключу).
	Delete(ctx context.Context, id string) error
}

// Type: тип бэкенда хранилища.
type Type string

const (
	TypeLocal   Type = "local"
	TypeS3      Type = "s3"
	TypeAliyun  Type = "aliyun"
	TypeTencent Type = "tencent"
	TypeQiniu   Type = "qiniu"
)

// Config: настройки хранилища, общие для всех бэкендов.
type Config struct {
	Type      Type
	LocalPath string
	PublicURL string // база для URL файлов; для local обязательна
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Domain    string // CDN/публичный домен (qiniu, опционально aliyun)
}

// NewStore создаёт хранилище по конфигурации.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStore(cfg.LocalPath, cfg.PublicURL)
	case TypeS3:
		return NewS3Store(ctx, cfg)
	case TypeAliyun:
		return NewAliyunStore(cfg)
	case TypeTencent:
		return NewTencentStore(cfg)
	case TypeQiniu:
		return NewQiniuStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// ObjectKey собирает ключ объекта без ведущего слеша.
func ObjectKey(folder, fileName string) string {
	return strings.TrimPrefix(path.Join("/", folder, fileName), "/")
}

// IsImage сообщает, стоит ли строить превью для типа содержимого.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func withThumbnail(res *UploadResult, contentType, query string) *UploadResult {
	if IsImage(contentType) {
		t := res.URL + query
		res.ThumbnailURL = &t
	}
	return res
}

// matches отбирает ключи строго под prefix с последним сегментом name.
func matches(key, prefix, name string) bool {
	return strings.HasPrefix(key, prefix) && path.Base(key) == name
}
