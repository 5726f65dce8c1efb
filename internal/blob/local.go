package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore хранит объекты в каталоге на диске.
type LocalStore struct {
	basePath  string
	publicURL string
}

// NewLocalStore создаёт каталог хранилища, если его ещё нет.
func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "./storage/files"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath, publicURL: publicURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	key := ObjectKey(in.Folder, in.FileName)
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, in.Body); err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return &UploadResult{
		ID:   key,
		Name: path.Base(key),
		URL:  joinURL(s.publicURL, key),
		Path: "/" + key,
	}, nil
}

func (s *LocalStore) Find(ctx context.Context, prefix, name string) ([]Object, error) {
	root, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}
	var out []Object
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if matches(key, prefix, name) {
			out = append(out, Object{ID: key, Name: d.Name(), Path: "/" + key})
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		// у владельца ещё нет ни одного объекта
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan storage: %w", err)
	}
	return out, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	fullPath, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Handler отдаёт содержимое хранилища по HTTP (для URL вида <publicURL>/<key>).
func (s *LocalStore) Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.basePath)))
}

// resolve не выпускает ключ за пределы базового каталога.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(key, "/"))
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}
