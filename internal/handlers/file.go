package handlers

import (
	"GophBox/internal/config"
	"GophBox/internal/middleware"
	"GophBox/internal/model"
	"GophBox/internal/service"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 50 << 20
	// запас на служебные части multipart-формы
	multipartOverhead = 1 << 20
)

// FileHandler: HTTP-обёртка над FileService.
type FileHandler struct {
	FileService *service.FileService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewFileHandler(fileService *service.FileService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, Logger: logger, Config: cfg}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId"`
}

type createFolderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Folder  interface{} `json:"folder"`
}

type registerUploadRequest struct {
	ImageKit *service.UploadedBlob `json:"imagekit"`
	Blob     *service.UploadedBlob `json:"blob"`
	UserID   string                `json:"userId"`
}

type moveRequest struct {
	ParentID *string `json:"parentId"`
}

type emptyTrashResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Deleted int64               `json:"deleted"`
	Blobs   service.BlobSummary `json:"blobs"`
}

// List GET /api/files?userId=&parentId=
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var parentID *string
	if p := q.Get("parentId"); p != "" {
		parentID = &p
	}
	entries, err := h.FileService.List(r.Context(), h.caller(r, q.Get("userId")), parentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []model.FileEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ListTrash GET /api/files/trash
func (h *FileHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	entries, err := h.FileService.ListTrash(r.Context(), h.caller(r, ""))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []model.FileEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// CreateFolder POST /api/folders
func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	folder, err := h.FileService.CreateFolder(r.Context(), h.caller(r, req.UserID), req.Name, req.ParentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createFolderResponse{
		Success: true,
		Message: "Folder created successfully",
		Folder:  folder,
	})
}

// RegisterUpload POST /api/upload — метаданные файла, уже загруженного клиентом в хранилище.
func (h *FileHandler) RegisterUpload(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req registerUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	up := req.ImageKit
	if up == nil {
		up = req.Blob
	}
	entry, err := h.FileService.RegisterUpload(r.Context(), h.caller(r, req.UserID), up)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Upload POST /api/files/upload — multipart {file, userId, parentId}.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// анонимный запрос отклоняется до чтения multipart-тела
	if !requireUser(w, r) {
		return
	}
	limit := h.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	caller := h.caller(r, r.FormValue("userId"))
	var parentID *string
	if p := r.FormValue("parentId"); p != "" {
		parentID = &p
	}

	var upload *service.UploadFile
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		if header.Size > limit {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		upload = &service.UploadFile{
			FileName:    header.Filename,
			ContentType: contentTypeOf(header),
			Size:        header.Size,
			Body:        file,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.Logger.Warnw("Upload: failed to read file part", "error", err)
	}

	entry, err := h.FileService.Upload(r.Context(), caller, upload, parentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// EmptyTrash DELETE /api/files/trash
func (h *FileHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	report, err := h.FileService.EmptyTrash(r.Context(), h.caller(r, ""))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	msg := "Trash emptied successfully"
	if report.Deleted == 0 {
		msg = "Trash is already empty"
	}
	writeJSON(w, http.StatusOK, emptyTrashResponse{
		Success: true,
		Message: msg,
		Deleted: report.Deleted,
		Blobs:   report.Blobs,
	})
}

// ToggleStar PATCH /api/files/{id}/star
func (h *FileHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	entry, err := h.FileService.ToggleStar(r.Context(), h.caller(r, ""), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ToggleTrash PATCH /api/files/{id}/trash
func (h *FileHandler) ToggleTrash(w http.ResponseWriter, r *http.Request) {
	entry, err := h.FileService.ToggleTrash(r.Context(), h.caller(r, ""), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Move PATCH /api/files/{id}/move
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry, err := h.FileService.Move(r.Context(), h.caller(r, ""), chi.URLParam(r, "id"), req.ParentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// requireUser отвечает 401, если в контексте нет пользователя.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

func (h *FileHandler) caller(r *http.Request, claimed string) service.Caller {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	return service.Caller{UserID: userID, Claimed: claimed}
}

func (h *FileHandler) maxUploadBytes() int64 {
	if h.Config == nil || h.Config.MaxUploadBytes() <= 0 {
		return defaultMaxUploadBytes
	}
	return h.Config.MaxUploadBytes()
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
