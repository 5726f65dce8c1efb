package service

import (
	"GophBox/internal/cli/api"
	"GophBox/internal/cli/repo"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrLoginTaken: сервер ответил 409 на регистрацию.
	ErrLoginTaken = errors.New("login already in use")
	// ErrInvalidCredentials: сервер ответил 401 на вход.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrNotLoggedIn: локально нет сохранённого токена.
	ErrNotLoggedIn = errors.New("not logged in, run login first")
)

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Login логирование пользователя.
	Login(login, password string) error

	// Register создаёт учётную запись и сразу входит в неё.
	Register(login, password string) error

	// Logout очищает локальный контекст аутентификации.
	Logout() error

	// CurrentUser возвращает логин текущего пользователя, если он установлен.
	CurrentUser() (string, error)
}

// LocalAuthStore: то, что клиент хранит между запусками.
type LocalAuthStore interface {
	repo.TokenStore
	repo.UserContextStore
}

// RemoteAuthService ходит на /api/user/* и сохраняет полученный cookie локально.
type RemoteAuthService struct {
	baseURL string
	store   LocalAuthStore
}

// NewRemoteAuthService создаёт сервис для сервера baseURL.
func NewRemoteAuthService(baseURL string, store LocalAuthStore) *RemoteAuthService {
	return &RemoteAuthService{baseURL: strings.TrimRight(baseURL, "/"), store: store}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *RemoteAuthService) Login(login, password string) error {
	return s.authenticate("/api/user/login", login, password)
}

func (s *RemoteAuthService) Register(login, password string) error {
	return s.authenticate("/api/user/register", login, password)
}

func (s *RemoteAuthService) authenticate(path, login, password string) error {
	resp, body, err := api.PostJSON(s.baseURL+path, credentials{Login: login, Password: password}, "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusConflict:
		return ErrLoginTaken
	default:
		return fmt.Errorf("server error: %s", api.ErrorMessage(body))
	}
	if err := api.PersistAuthFromResponse(resp, s.store); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := s.store.SaveLogin(login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	return nil
}

func (s *RemoteAuthService) Logout() error {
	return s.store.Clear()
}

func (s *RemoteAuthService) CurrentUser() (string, error) {
	if _, err := s.store.Load(); err != nil {
		return "", ErrNotLoggedIn
	}
	login, err := s.store.LoadLogin()
	if err != nil {
		return "", ErrNotLoggedIn
	}
	return login, nil
}
