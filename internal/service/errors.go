package service

import "errors"

// Классы ошибок сервисного слоя. Хендлеры сопоставляют их со статусами через errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
)

// Error: ошибка с безопасным для клиента сообщением.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Caller: идентичность запроса.
type Caller struct {
	// UserID: пользователь из токена; пусто — аноним.
	UserID string
	// Claimed: userId, переданный клиентом в запросе; пусто — не передан.
	Claimed string
}

// owner возвращает владельца операции или ErrUnauthorized.
func (c Caller) owner() (string, error) {
	if c.UserID == "" {
		return "", newError(ErrUnauthorized, "Unauthorized")
	}
	if c.Claimed != "" && c.Claimed != c.UserID {
		return "", newError(ErrUnauthorized, "Unauthorized")
	}
	return c.UserID, nil
}
