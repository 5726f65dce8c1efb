package service

import (
	"GophBox/internal/cli/api"
	"GophBox/internal/cli/model"
	"GophBox/internal/cli/repo"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnauthorized: сервер отверг токен.
var ErrUnauthorized = errors.New("unauthorized, run login again")

// FileService: клиент файловых эндпоинтов сервера.
type FileService struct {
	baseURL string
	tokens  repo.TokenStore
}

// NewFileService создаёт клиент для сервера baseURL.
func NewFileService(baseURL string, tokens repo.TokenStore) *FileService {
	return &FileService{baseURL: strings.TrimRight(baseURL, "/"), tokens: tokens}
}

// List возвращает содержимое папки; пустой parentID — корень.
func (s *FileService) List(ctx context.Context, parentID string) ([]model.Entry, error) {
	endpoint := s.baseURL + "/api/files"
	if parentID != "" {
		endpoint += "?parentId=" + url.QueryEscape(parentID)
	}
	var out []model.Entry
	if err := s.call(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrash возвращает записи из корзины.
func (s *FileService) ListTrash(ctx context.Context) ([]model.Entry, error) {
	var out []model.Entry
	if err := s.call(ctx, http.MethodGet, s.baseURL+"/api/files/trash", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Mkdir создаёт папку.
func (s *FileService) Mkdir(ctx context.Context, name, parentID string) (*model.Entry, error) {
	req := struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}{Name: name, ParentID: optional(parentID)}
	var resp struct {
		Folder model.Entry `json:"folder"`
	}
	if err := s.call(ctx, http.MethodPost, s.baseURL+"/api/folders", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Folder, nil
}

// Upload отправляет локальный файл через /api/files/upload.
func (s *FileService) Upload(ctx context.Context, path, parentID string) (*model.Entry, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ct, body, err := sniffContentType(f, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	resp, raw, err := api.PostMultipart(ctx, s.baseURL+"/api/files/upload",
		map[string]string{"parentId": parentID},
		api.File{Name: filepath.Base(path), ContentType: ct, Body: body}, token)
	if err != nil {
		return nil, err
	}
	var out model.Entry
	if err := decodeResponse(resp, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleTrash перемещает запись в корзину или возвращает её оттуда.
func (s *FileService) ToggleTrash(ctx context.Context, id string) (*model.Entry, error) {
	var out model.Entry
	if err := s.call(ctx, http.MethodPatch, s.entryURL(id, "trash"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleStar ставит или снимает отметку «избранное».
func (s *FileService) ToggleStar(ctx context.Context, id string) (*model.Entry, error) {
	var out model.Entry
	if err := s.call(ctx, http.MethodPatch, s.entryURL(id, "star"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Move переносит запись; пустой parentID — в корень.
func (s *FileService) Move(ctx context.Context, id, parentID string) (*model.Entry, error) {
	req := struct {
		ParentID *string `json:"parentId"`
	}{ParentID: optional(parentID)}
	var out model.Entry
	if err := s.call(ctx, http.MethodPatch, s.entryURL(id, "move"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmptyTrash окончательно удаляет содержимое корзины.
func (s *FileService) EmptyTrash(ctx context.Context) (*model.TrashResult, error) {
	var out model.TrashResult
	if err := s.call(ctx, http.MethodDelete, s.baseURL+"/api/files/trash", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FileService) entryURL(id, action string) string {
	return s.baseURL + "/api/files/" + url.PathEscape(id) + "/" + action
}

func (s *FileService) token() (string, error) {
	token, err := s.tokens.Load()
	if err != nil || token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func (s *FileService) call(ctx context.Context, method, endpoint string, payload, out any) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	resp, body, err := api.DoJSON(ctx, method, endpoint, payload, token)
	if err != nil {
		return err
	}
	return decodeResponse(resp, body, out)
}

func decodeResponse(resp *http.Response, body []byte, out any) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("server status %d: %s", resp.StatusCode, api.ErrorMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// sniffContentType определяет тип по расширению, иначе по первым байтам файла.
func sniffContentType(r io.Reader, ext string) (string, io.Reader, error) {
	if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
		return ct, r, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
