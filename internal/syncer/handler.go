package syncer

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botica-pos/botica/internal/platform/httpx"
	"github.com/botica-pos/botica/internal/shared"
)

// Handler exposes the sync endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// MountRoutes registers the sync routes on r. The caller wraps r with the
// authentication middleware; every handler here expects an identity in the
// request context.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/push", h.push)
	r.Get("/pull", h.pull)
	r.Post("/audit", h.audit)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req PushRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", "request body is not valid JSON")
		return
	}

	resp, err := h.svc.Push(r.Context(), caller, req)
	if err != nil {
		if errors.Is(err, ErrBatchTooLarge) {
			httpx.Problem(w, http.StatusBadRequest, "Batch Too Large", err.Error())
			return
		}
		h.logger.Error("push failed", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("lastSyncAt"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Watermark", "lastSyncAt must be RFC3339")
			return
		}
		since = &t
	}

	resp, err := h.svc.Pull(r.Context(), caller, since)
	if err != nil {
		h.logger.Error("pull failed", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req AuditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", "request body is not valid JSON")
		return
	}

	resp, err := h.svc.Audit(r.Context(), caller, req)
	if err != nil {
		h.logger.Error("audit failed", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}
