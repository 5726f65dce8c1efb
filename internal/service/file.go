package service

import (
	"GophBox/internal/blob"
	"GophBox/internal/model"
	"GophBox/internal/repo"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	defaultTrashWorkers = 8
	untitledName        = "Untitled"
	defaultUploadType   = "application/octet-stream"
)

// FileService: операции над деревом файлов и папок пользователя.
type FileService struct {
	repo     repo.FileRepository
	store    blob.Store
	logger   *zap.SugaredLogger
	workers  int
	maxDepth int
}

// Option настраивает FileService.
type Option func(*FileService)

// WithTrashWorkers ограничивает число параллельных удалений из хранилища при очистке корзины.
func WithTrashWorkers(n int) Option {
	return func(s *FileService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxDepth задаёт предельную глубину вложенности папок.
func WithMaxDepth(n int) Option {
	return func(s *FileService) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

func NewFileService(r repo.FileRepository, store blob.Store, logger *zap.SugaredLogger, opts ...Option) *FileService {
	s := &FileService{
		repo:     r,
		store:    store,
		logger:   logger,
		workers:  defaultTrashWorkers,
		maxDepth: repo.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает записи владельца в папке parentID (nil — корень).
func (s *FileService) List(ctx context.Context, caller Caller, parentID *string) ([]model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByParent(ctx, userID, parentID)
	if err != nil {
		return nil, s.internal("list files", err, "user_id", userID)
	}
	return entries, nil
}

// ListTrash возвращает все записи владельца в корзине.
func (s *FileService) ListTrash(ctx context.Context, caller Caller) ([]model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListTrashed(ctx, userID)
	if err != nil {
		return nil, s.internal("list trash", err, "user_id", userID)
	}
	return entries, nil
}

// CreateFolder создаёт папку. Проверка родителя и вставка идут в одной транзакции.
func (s *FileService) CreateFolder(ctx context.Context, caller Caller, name string, parentID *string) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(ErrInvalidArgument, "Folder name is required")
	}

	id := uuid.NewString()
	folder := &model.FileEntry{
		ID:       id,
		Name:     name,
		Path:     fmt.Sprintf("/folders/%s/%s", userID, id),
		Size:     0,
		Type:     model.FolderType,
		UserID:   userID,
		ParentID: nonEmpty(parentID),
		IsFolder: true,
	}
	if err := s.repo.Create(ctx, folder, s.maxDepth); err != nil {
		return nil, s.mapRepoError("create folder", err, "user_id", userID, "parent_id", parentID)
	}
	return folder, nil
}

// UploadedBlob: результат загрузки, которую клиент выполнил в хранилище сам.
type UploadedBlob struct {
	URL          string  `json:"url"`
	Name         string  `json:"name"`
	FilePath     string  `json:"filePath"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Size         int64   `json:"size"`
	FileType     string  `json:"fileType"`
}

// RegisterUpload сохраняет метаданные уже загруженного файла. Запись всегда в корне.
func (s *FileService) RegisterUpload(ctx context.Context, caller Caller, up *UploadedBlob) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	if up == nil || strings.TrimSpace(up.URL) == "" {
		return nil, newError(ErrInvalidArgument, "Upload result with url is required")
	}

	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = untitledName
	}
	p := up.FilePath
	if p == "" {
		p = fmt.Sprintf("/files/%s/%s", userID, name)
	}
	typ := up.FileType
	if typ == "" {
		typ = defaultUploadType
	}
	size := up.Size
	if size < 0 {
		size = 0
	}

	entry := &model.FileEntry{
		ID:           uuid.NewString(),
		Name:         name,
		Path:         p,
		Size:         size,
		Type:         typ,
		FileURL:      up.URL,
		ThumbnailURL: up.ThumbnailURL,
		UserID:       userID,
	}
	if err := s.repo.Create(ctx, entry, s.maxDepth); err != nil {
		return nil, s.mapRepoError("register upload", err, "user_id", userID)
	}
	return entry, nil
}

// UploadFile: входной файл для Upload.
type UploadFile struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload загружает файл в хранилище и регистрирует его. parentID nil — корень.
func (s *FileService) Upload(ctx context.Context, caller Caller, file *UploadFile, parentID *string) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, newError(ErrInvalidArgument, "No file provided")
	}
	parentID = nonEmpty(parentID)
	if parentID != nil {
		if err := s.checkParent(ctx, userID, *parentID); err != nil {
			return nil, err
		}
	}
	if !allowedUploadType(file.ContentType) {
		return nil, newError(ErrInvalidArgument, "Only images and PDF files are supported")
	}

	storedName := uuid.NewString() + extensionFor(file.FileName, file.ContentType)
	folder := "/" + strings.TrimSuffix(ownerPrefix(userID), "/")
	if parentID != nil {
		folder = folder + "/folders/" + *parentID
	}

	res, err := s.store.Upload(ctx, blob.UploadInput{
		Folder:      folder,
		FileName:    storedName,
		ContentType: file.ContentType,
		Size:        file.Size,
		Body:        file.Body,
	})
	if err != nil {
		return nil, s.internal("upload to storage", err, "user_id", userID, "file", file.FileName)
	}

	entry := &model.FileEntry{
		ID:           uuid.NewString(),
		Name:         file.FileName,
		Path:         res.Path,
		Size:         file.Size,
		Type:         file.ContentType,
		FileURL:      res.URL,
		ThumbnailURL: res.ThumbnailURL,
		UserID:       userID,
		ParentID:     parentID,
	}
	if err := s.repo.Create(ctx, entry, s.maxDepth); err != nil {
		// запись не создана — загруженный объект никому не нужен
		if delErr := s.store.Delete(ctx, res.ID); delErr != nil {
			s.logger.Warnw("failed to remove orphaned blob", "blob_id", res.ID, "error", delErr)
		}
		if errors.Is(err, repo.ErrParentNotFound) {
			return nil, newError(ErrNotFound, "Parent folder not found")
		}
		return nil, s.internal("register uploaded file", err, "user_id", userID, "blob_id", res.ID)
	}
	return entry, nil
}

// ToggleStar переключает отметку «избранное».
func (s *FileService) ToggleStar(ctx context.Context, caller Caller, id string) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapRepoError("get entry", err, "user_id", userID, "id", id)
	}
	out, err := s.repo.SetStarred(ctx, userID, id, !cur.IsStarred)
	if err != nil {
		return nil, s.mapRepoError("toggle star", err, "user_id", userID, "id", id)
	}
	return out, nil
}

// ToggleTrash перемещает запись в корзину или восстанавливает её вместе с потомками.
func (s *FileService) ToggleTrash(ctx context.Context, caller Caller, id string) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapRepoError("get entry", err, "user_id", userID, "id", id)
	}
	out, err := s.repo.SetTrashed(ctx, userID, id, !cur.IsTrash)
	if err != nil {
		return nil, s.mapRepoError("toggle trash", err, "user_id", userID, "id", id)
	}
	return out, nil
}

// Move переносит запись в папку parentID (nil — в корень).
func (s *FileService) Move(ctx context.Context, caller Caller, id string, parentID *string) (*model.FileEntry, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Move(ctx, userID, id, nonEmpty(parentID), s.maxDepth)
	if err != nil {
		return nil, s.mapRepoError("move entry", err, "user_id", userID, "id", id, "parent_id", parentID)
	}
	return out, nil
}

// Статусы удаления объекта из хранилища при очистке корзины.
const (
	BlobSucceeded = "succeeded"
	BlobFailed    = "failed"
	BlobSkipped   = "skipped"
)

// BlobOutcome: итог попытки удалить объект одной записи.
type BlobOutcome struct {
	EntryID string `json:"entryId"`
	BlobID  string `json:"blobId,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"-"`
}

// BlobSummary: сводка по удалениям из хранилища.
type BlobSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// TrashReport: результат очистки корзины.
type TrashReport struct {
	Deleted  int64
	Blobs    BlobSummary
	Outcomes []BlobOutcome
}

// EmptyTrash удаляет объекты записей из корзины (по возможности) и затем сами записи.
// Ошибки хранилища не прерывают очистку: они попадают в отчёт и в лог.
func (s *FileService) EmptyTrash(ctx context.Context, caller Caller) (*TrashReport, error) {
	userID, err := caller.owner()
	if err != nil {
		return nil, err
	}
	trashed, err := s.repo.ListTrashed(ctx, userID)
	if err != nil {
		return nil, s.internal("list trash", err, "user_id", userID)
	}
	if len(trashed) == 0 {
		return &TrashReport{}, nil
	}

	outcomes := make([]BlobOutcome, len(trashed))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range trashed {
		i := i
		entry := trashed[i]
		g.Go(func() error {
			outcomes[i] = s.deleteBlob(ctx, userID, entry)
			return nil
		})
	}
	_ = g.Wait()

	report := &TrashReport{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case BlobSucceeded:
			report.Blobs.Succeeded++
		case BlobFailed:
			report.Blobs.Failed++
		default:
			report.Blobs.Skipped++
		}
	}

	deleted, err := s.repo.DeleteTrashed(ctx, userID)
	if err != nil {
		return nil, s.internal("delete trashed entries", err, "user_id", userID)
	}
	report.Deleted = deleted

	s.logger.Infow("trash emptied",
		"user_id", userID,
		"deleted", deleted,
		"blobs_succeeded", report.Blobs.Succeeded,
		"blobs_failed", report.Blobs.Failed,
		"blobs_skipped", report.Blobs.Skipped,
	)
	return report, nil
}

func (s *FileService) deleteBlob(ctx context.Context, userID string, entry model.FileEntry) BlobOutcome {
	out := BlobOutcome{EntryID: entry.ID, Status: BlobSkipped}
	if entry.IsFolder {
		return out
	}
	name := blobNameFor(entry)
	if name == "" {
		return out
	}

	// удаляем только объекты под префиксом владельца
	prefix := ownerPrefix(userID)
	var target string
	found, err := s.store.Find(ctx, prefix, name)
	switch {
	case err != nil:
		s.logger.Warnw("blob lookup failed", "entry_id", entry.ID, "blob", name, "error", err)
		target = ownedKey(entry.Path, prefix)
		if target == "" {
			out.Status = BlobFailed
			out.Error = err.Error()
			return out
		}
	case len(found) > 0 && strings.HasPrefix(found[0].ID, prefix):
		target = found[0].ID
	default:
		target = ownedKey(entry.Path, prefix)
	}
	if target == "" {
		s.logger.Infow("no owned blob for trashed entry", "entry_id", entry.ID, "blob", name)
		return out
	}
	out.BlobID = target

	if err := s.store.Delete(ctx, target); err != nil {
		s.logger.Warnw("failed to delete blob", "entry_id", entry.ID, "blob_id", target, "error", err)
		out.Status = BlobFailed
		out.Error = err.Error()
		return out
	}
	out.Status = BlobSucceeded
	return out
}

// checkParent: предварительная проверка родителя до загрузки в хранилище.
func (s *FileService) checkParent(ctx context.Context, userID, parentID string) error {
	parent, err := s.repo.GetByID(ctx, userID, parentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "Parent folder not found")
	}
	if err != nil {
		return s.internal("get parent folder", err, "user_id", userID, "parent_id", parentID)
	}
	if !parent.IsFolder || parent.IsTrash {
		return newError(ErrNotFound, "Parent folder not found")
	}
	return nil
}

func (s *FileService) mapRepoError(op string, err error, kv ...any) error {
	switch {
	case errors.Is(err, repo.ErrParentNotFound):
		return newError(ErrNotFound, "Parent folder not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(ErrNotFound, "File not found")
	case errors.Is(err, repo.ErrCycle):
		return newError(ErrInvalidArgument, "Cannot move a folder into itself")
	case errors.Is(err, repo.ErrTooDeep):
		return newError(ErrInvalidArgument, "Folder nesting is too deep")
	default:
		return s.internal(op, err, kv...)
	}
}

// internal логирует подробности и отдаёт наружу только класс ошибки.
func (s *FileService) internal(op string, err error, kv ...any) error {
	s.logger.Errorw(op+" failed", append(kv, "error", err)...)
	return &Error{Kind: ErrInternal, Msg: "Internal server error"}
}

func allowedUploadType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	return strings.HasPrefix(mt, "image/") || mt == "application/pdf"
}

// extensionFor сохраняет расширение исходного имени; без него подбирает по типу.
func extensionFor(fileName, contentType string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// blobNameFor выводит имя объекта из URL (без query) или, если не вышло, из пути.
func blobNameFor(entry model.FileEntry) string {
	if entry.FileURL != "" {
		if u, err := url.Parse(entry.FileURL); err == nil {
			if name := lastSegment(u.Path); name != "" {
				return name
			}
		}
	}
	return lastSegment(entry.Path)
}

// ownerPrefix: ключи объектов пользователя в хранилище.
func ownerPrefix(userID string) string {
	return "gophbox/" + userID + "/"
}

// ownedKey превращает сохранённый путь в ключ, если он лежит под prefix.
func ownedKey(p, prefix string) string {
	key := strings.TrimPrefix(path.Clean("/"+p), "/")
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	return key
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

func nonEmpty(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
