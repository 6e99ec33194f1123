package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stackwise/internal/inventory/models"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/httputil"
)

// Store is the read side of the inventory.
type Store interface {
	ListApplications(ctx context.Context) ([]models.Application, error)
	ListGrants(ctx context.Context) ([]models.Grant, error)
}

// ApplicationSummary is an application with the number of users holding access.
type ApplicationSummary struct {
	models.Application
	UserCount int `json:"userCount"`
}

type ApplicationListResponse struct {
	Applications []ApplicationSummary `json:"applications"`
}

// Handler serves inventory reads.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts inventory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/applications", h.HandleListApplications)
}

// HandleListApplications handles GET /api/applications.
func (h *Handler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.store.ListApplications(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list applications", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications"))
		return
	}
	grants, err := h.store.ListGrants(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list grants", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants"))
		return
	}

	counts := make(map[string]int, len(apps))
	for _, g := range grants {
		counts[g.ApplicationID.String()]++
	}
	out := make([]ApplicationSummary, 0, len(apps))
	for _, a := range apps {
		out = append(out, ApplicationSummary{Application: a, UserCount: counts[a.ID.String()]})
	}
	httputil.WriteJSON(w, http.StatusOK, ApplicationListResponse{Applications: out})
}
