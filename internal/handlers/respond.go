package handlers

import (
	"GophBox/internal/service"
	"encoding/json"
	"errors"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ. Подробности внутренних ошибок наружу не уходят.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	msg := ""
	if errors.As(err, &svcErr) {
		msg = svcErr.Msg
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, orDefault(msg, "Invalid request"))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, orDefault(msg, "Not found"))
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
