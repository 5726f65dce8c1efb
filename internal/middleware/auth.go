package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName: имя cookie с токеном авторизации.
const CookieName = "auth_token"

// TokenTTL: срок жизни выданного токена.
const TokenTTL = 24 * time.Hour

type ctxKey struct{}

var userIDKey = ctxKey{}

// Claims: полезная нагрузка JWT; идентификатор пользователя хранится в subject.
type Claims struct {
	jwt.RegisteredClaims
}

// NewToken подписывает токен для пользователя (HS256).
func NewToken(userID, secret string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия, возвращает идентификатор пользователя.
func ParseToken(tokenStr, secret string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// SetLoginCookie выдаёт токен и кладёт его в cookie ответа.
func SetLoginCookie(w http.ResponseWriter, userID, secret string) error {
	token, err := NewToken(userID, secret)
	if err != nil {
		return err
	}
	SetTokenCookie(w, token)
	return nil
}

// SetTokenCookie кладёт уже выданный токен в cookie ответа.
func SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(TokenTTL),
	})
}

// WithAuth кладёт user_id в контекст, если запрос несёт валидный токен
// (cookie auth_token или заголовок Authorization: Bearer). Без токена запрос
// проходит анонимно: решение об отказе принимает хендлер.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr != "" {
				if uid, err := ParseToken(tokenStr, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
				} else if log != nil {
					log.Debugw("rejected auth token", "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext возвращает идентификатор аутентифицированного пользователя.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

// WithUserID кладёт user_id в контекст напрямую. Используется в тестах хендлеров.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
