package commands

import (
	fsrepo "GophBox/internal/cli/repo/fs"
	"GophBox/internal/cli/service"
	"GophBox/internal/config"
)

func authStore(cfg *config.Config) fsrepo.AuthFSStore {
	return fsrepo.AuthFSStore{Dir: cfg.TokenDir}
}

func authService(cfg *config.Config) *service.RemoteAuthService {
	return service.NewRemoteAuthService(cfg.ServerURL, authStore(cfg))
}

func fileService(cfg *config.Config) *service.FileService {
	return service.NewFileService(cfg.ServerURL, authStore(cfg))
}
