package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/wordkeeper/internal/server/middleware"
	"github.com/iudanet/wordkeeper/internal/validation"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 16 << 20

type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.sendJSON(w, r, api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

// decode читает JSON тело запроса; при ошибке ответ уже отправлен
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, r, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// identity извлекает пользователя, выставленного middleware.Auth
func (h responder) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user ID not found in context")
		h.sendError(w, r, "missing identity", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// clientID извлекает и проверяет {clientId} из пути
func (h responder) clientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	clientID := r.PathValue("clientId")
	if err := validation.ValidateClientID(clientID); err != nil {
		h.sendError(w, r, fmt.Sprintf("invalid client id: %v", err), http.StatusBadRequest)
		return "", false
	}
	return clientID, true
}
