package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/sync"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// SyncService серверный движок синхронизации
type SyncService interface {
	ServerTime() models.Timestamp
	Register(ctx context.Context, userID, clientID string) error
	Reregister(ctx context.Context, userID, clientID string) error
	Status(ctx context.Context, userID, clientID string) (*models.SyncCursor, error)
	Pull(ctx context.Context, userID, clientID string, claimedLastPull models.Timestamp) (*sync.ChangeSet, error)
	Push(ctx context.Context, userID, clientID string, batch *models.Batch, overwriteIDs []string) (*sync.PushResult, error)
	PullConflicts(ctx context.Context, userID, clientID string, claimedLastPush models.Timestamp) ([]*models.ConflictLog, error)
	PushConflicts(ctx context.Context, userID, clientID string, entries []*models.ConflictLog) (map[string]string, error)
	ListConflicts(ctx context.Context, userID string) ([]*models.ConflictLog, error)
}

var _ SyncService = (*sync.Service)(nil)

// SyncHandler handles synchronization requests
type SyncHandler struct {
	responder
	service SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, service SyncService) *SyncHandler {
	return &SyncHandler{
		responder: responder{logger: logger},
		service:   service,
	}
}

// sendServiceError отображает ошибки движка синхронизации в HTTP статусы
func (h *SyncHandler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pce *sync.PersistenceConflictError
	switch {
	case errors.Is(err, sync.ErrClientUnknown):
		h.sendError(w, r, err.Error(), http.StatusNotFound)
	case errors.Is(err, sync.ErrClientExists):
		h.sendError(w, r, err.Error(), http.StatusConflict)
	case errors.As(err, &pce):
		h.sendJSON(w, r, api.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "batch rejected: persistence conflict",
			Details: pce.Failures,
		}, http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.WarnContext(r.Context(), "request cancelled", slog.Any("error", err))
		h.sendError(w, r, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(r.Context(), "sync operation failed", slog.Any("error", err))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// ServerTime обрабатывает GET /api/v1/syncs/server-time
func (h *SyncHandler) ServerTime(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, r, api.ServerTimeResponse{ServerTime: h.service.ServerTime()}, http.StatusOK)
}

// Register обрабатывает POST /api/v1/clients/{clientId}/register
func (h *SyncHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	if err := h.service.Register(r.Context(), userID, clientID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.SyncStatusResponse{ClientID: clientID}, http.StatusCreated)
}

// Reregister обрабатывает POST /api/v1/clients/{clientId}/reregister
func (h *SyncHandler) Reregister(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	if err := h.service.Reregister(r.Context(), userID, clientID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.SyncStatusResponse{ClientID: clientID}, http.StatusOK)
}

// Status обрабатывает GET /api/v1/syncs/{clientId}/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	cursor, err := h.service.Status(r.Context(), userID, clientID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.SyncStatusResponse{
		ClientID: cursor.ClientID,
		LastPull: cursor.LastPull,
		LastPush: cursor.LastPush,
	}, http.StatusOK)
}

// Pull обрабатывает POST /api/v1/syncs/{clientId}/pull
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req api.PullRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes, err := h.service.Pull(r.Context(), userID, clientID, req.LastPull)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, api.PullResponse{
		Languages:     changes.Reference.Languages,
		Dictionaries:  changes.Reference.Dictionaries,
		Translations:  changes.Reference.Translations,
		TagCategories: changes.Records.TagCategories,
		Tags:          changes.Records.Tags,
		Phrases:       changes.Records.Phrases,
		PhraseTags:    changes.Records.PhraseTags,
		Bookmarks:     changes.Records.Bookmarks,
		BookmarkTags:  changes.Records.BookmarkTags,
		ServerTime:    changes.ServerTime,
	}, http.StatusOK)
}

// Push обрабатывает POST /api/v1/syncs/{clientId}/push
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req api.PushRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Push(r.Context(), userID, clientID, &req.Batch, req.OverwriteIDs)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, api.PushResponse{
		Failures:  result.Failures,
		Stale:     result.Stale,
		Applied:   result.Applied,
		PushStart: result.PushStart,
	}, http.StatusOK)
}

// PullConflicts обрабатывает POST /api/v1/syncs/{clientId}/conflicts/pull
func (h *SyncHandler) PullConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req api.ConflictsPullRequest
	if !h.decode(w, r, &req) {
		return
	}

	entries, err := h.service.PullConflicts(r.Context(), userID, clientID, req.LastPush)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.ConflictsPullResponse{Entries: entries}, http.StatusOK)
}

// PushConflicts обрабатывает POST /api/v1/syncs/{clientId}/conflicts/push
func (h *SyncHandler) PushConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req api.ConflictsPushRequest
	if !h.decode(w, r, &req) {
		return
	}

	failures, err := h.service.PushConflicts(r.Context(), userID, clientID, req.Entries)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.ConflictsPushResponse{Failures: failures}, http.StatusOK)
}

// ListConflicts обрабатывает GET /api/v1/conflicts
func (h *SyncHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListConflicts(r.Context(), userID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, r, api.ConflictsPullResponse{Entries: entries}, http.StatusOK)
}
