package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/wordkeeper/internal/crypto"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
	"github.com/iudanet/wordkeeper/internal/validation"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// TokenIssuer выпускает access токены
type TokenIssuer interface {
	Issue(userID, username string) (string, int64, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	users  storage.UserStorage
	tokens TokenIssuer
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		users:     users,
		tokens:    tokens,
	}
}

// Signup обрабатывает POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			h.sendError(w, r, "username already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user signed up",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.sendJSON(w, r, api.SignupResponse{
		UserID:  user.ID,
		Message: "User registered successfully",
	}, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		h.sendError(w, r, "password is required", http.StatusBadRequest)
		return
	}

	user, err := h.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, crypto.ErrPasswordMismatch) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username), slog.Any("error", err))
			h.sendError(w, r, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to authenticate user", slog.Any("error", err))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
		return
	}

	token, expiresIn, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.sendJSON(w, r, api.TokenResponse{
		AccessToken: token,
		UserID:      user.ID,
		ExpiresIn:   expiresIn,
	}, http.StatusOK)
}

func (h *AuthHandler) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := h.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}
