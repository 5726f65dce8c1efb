package handlers

import (
	"GophBox/internal/config"
	"GophBox/internal/middleware"
	"GophBox/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlobsPrefix: маршрут, под которым отдаются файлы локального хранилища.
const BlobsPrefix = "/blobs"

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров. blobs может быть nil, если хранилище внешнее.
func NewHandler(
	userService *service.UserService,
	fileService *service.FileService,
	logger *zap.SugaredLogger,
	config *config.Config,
	blobs http.Handler,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	fileHandler := NewFileHandler(fileService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)

	// File routes
	r.Get("/api/files", fileHandler.List)
	r.Post("/api/folders", fileHandler.CreateFolder)
	r.Post("/api/upload", fileHandler.RegisterUpload)
	r.Post("/api/files/upload", fileHandler.Upload)
	r.Get("/api/files/trash", fileHandler.ListTrash)
	r.Delete("/api/files/trash", fileHandler.EmptyTrash)
	r.Patch("/api/files/{id}/star", fileHandler.ToggleStar)
	r.Patch("/api/files/{id}/trash", fileHandler.ToggleTrash)
	r.Patch("/api/files/{id}/move", fileHandler.Move)

	if blobs != nil {
		r.Handle(BlobsPrefix+"/*", blobs)
	}

	return &Handler{Router: r}
}
