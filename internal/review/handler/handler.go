package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stackwise/internal/review/models"
	"stackwise/internal/review/service"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/httputil"
	"stackwise/pkg/requestcontext"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200

	msgDecisionFailed = "Failed to record decision"
	msgBulkFailed     = "Bulk decision failed"
)

// Service defines the review operations exposed over HTTP.
type Service interface {
	ListCampaigns(ctx context.Context, status models.CampaignStatus) ([]models.CampaignStats, error)
	GetCampaign(ctx context.Context, id domain.CampaignID) (*models.CampaignStats, error)
	CreateCampaign(ctx context.Context, actor audit.Actor, req service.CreateCampaignRequest) (*models.CampaignStats, error)
	UpdateCampaignStatus(ctx context.Context, actor audit.Actor, id domain.CampaignID, status models.CampaignStatus) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, actor audit.Actor, id domain.CampaignID) error
	ScopeCampaign(ctx context.Context, actor audit.Actor, id domain.CampaignID) (int, error)
	ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error)
	MakeDecision(ctx context.Context, actor audit.Actor, id domain.DecisionID, state models.DecisionState, rationale *string) (*models.Decision, error)
	BulkDecision(ctx context.Context, actor audit.Actor, ids []domain.DecisionID, state models.DecisionState) (models.BulkResult, error)
	RecordExport(ctx context.Context, actor audit.Actor, objectType string, recordCount int, filters map[string]string)
}

// Handler wires campaign, decision, export and audit endpoints.
type Handler struct {
	service Service
	audit   audit.Reader
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a review handler. auditReader backs GET /api/audit.
func New(service Service, auditReader audit.Reader, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		audit:   auditReader,
		logger:  logger,
		now:     time.Now,
	}
}

// Register mounts review endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/campaigns", func(r chi.Router) {
		r.Get("/", h.HandleListCampaigns)
		r.Post("/", h.HandleCreateCampaign)
		r.Get("/{id}", h.HandleGetCampaign)
		r.Delete("/{id}", h.HandleDeleteCampaign)
		r.Patch("/{id}/status", h.HandleUpdateStatus)
		r.Post("/{id}/scope", h.HandleScopeCampaign)
		r.Get("/{id}/decisions", h.HandleListDecisions)
	})
	r.Post("/api/decisions/bulk", h.HandleBulkDecision)
	r.Post("/api/decisions/{id}", h.HandleMakeDecision)
	r.Get("/api/export/campaigns", h.HandleExportCampaigns)
	r.Get("/api/export/campaigns/{id}/decisions", h.HandleExportDecisions)
	r.Get("/api/audit", h.HandleListAudit)
}

func actorFrom(ctx context.Context) audit.Actor {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		return audit.SystemContext()
	}
	return audit.UserContext(userID, requestcontext.Email(ctx))
}

// prepare decodes, normalizes and validates a mutation body.
func prepare(r *http.Request, req httputil.Preparable) error {
	if err := httputil.DecodeJSON(r, req); err != nil {
		return err
	}
	req.Normalize()
	return req.Validate()
}

// writeFailure writes the mutation envelope for err. Internal causes are
// replaced by fallback.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), fallback,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
	httputil.WriteJSON(w, dErrors.ToHTTPStatus(code), Envelope{Success: false, Error: publicMessage(err, fallback)})
}

// HandleListCampaigns handles GET /api/campaigns.
func (h *Handler) HandleListCampaigns(w http.ResponseWriter, r *http.Request) {
	status := models.CampaignStatus(r.URL.Query().Get("status"))
	campaigns, err := h.service.ListCampaigns(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CampaignListResponse{Campaigns: campaigns})
}

// HandleGetCampaign handles GET /api/campaigns/{id}.
func (h *Handler) HandleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.GetCampaign(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// HandleCreateCampaign handles POST /api/campaigns.
func (h *Handler) HandleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := prepare(r, &req); err != nil {
		h.writeFailure(w, r, err, "Failed to create campaign")
		return
	}
	c, err := h.service.CreateCampaign(r.Context(), actorFrom(r.Context()), service.CreateCampaignRequest{
		Name:    req.Name,
		DueDate: req.ParsedDueDate(),
		Scope:   req.Scope,
	})
	if err != nil {
		h.writeFailure(w, r, err, "Failed to create campaign")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CampaignResponse{Envelope: Envelope{Success: true}, Campaign: c})
}

// HandleUpdateStatus handles PATCH /api/campaigns/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "Failed to update campaign")
		return
	}
	var req UpdateStatusRequest
	if err := prepare(r, &req); err != nil {
		h.writeFailure(w, r, err, "Failed to update campaign")
		return
	}
	c, err := h.service.UpdateCampaignStatus(r.Context(), actorFrom(r.Context()), id, models.CampaignStatus(req.Status))
	if err != nil {
		h.writeFailure(w, r, err, "Failed to update campaign")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Envelope: Envelope{Success: true}, Campaign: c})
}

// HandleDeleteCampaign handles DELETE /api/campaigns/{id}.
func (h *Handler) HandleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "Failed to delete campaign")
		return
	}
	if err := h.service.DeleteCampaign(r.Context(), actorFrom(r.Context()), id); err != nil {
		h.writeFailure(w, r, err, "Failed to delete campaign")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Envelope{Success: true})
}

// HandleScopeCampaign handles POST /api/campaigns/{id}/scope.
func (h *Handler) HandleScopeCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "Failed to scope campaign")
		return
	}
	n, err := h.service.ScopeCampaign(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		h.writeFailure(w, r, err, "Failed to scope campaign")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Envelope: Envelope{Success: true}, Count: n})
}

// HandleListDecisions handles GET /api/campaigns/{id}/decisions.
func (h *Handler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decisions, err := h.service.ListDecisions(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DecisionListResponse{Decisions: decisions})
}

// HandleMakeDecision handles POST /api/decisions/{id}. Every failure reads
// "Failed to record decision"; the status code carries the cause.
func (h *Handler) HandleMakeDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fail := func(err error) {
		code := dErrors.CodeOf(err)
		h.logger.WarnContext(ctx, "decision not recorded",
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err,
		)
		httputil.WriteJSON(w, dErrors.ToHTTPStatus(code), Envelope{Success: false, Error: msgDecisionFailed})
	}

	id, err := domain.ParseDecisionID(chi.URLParam(r, "id"))
	if err != nil {
		fail(err)
		return
	}
	var req DecisionRequest
	if err := prepare(r, &req); err != nil {
		fail(err)
		return
	}
	d, err := h.service.MakeDecision(ctx, actorFrom(ctx), id, models.DecisionState(req.Decision), req.Rationale)
	if err != nil {
		fail(err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DecisionResponse{Envelope: Envelope{Success: true}, Decision: d})
}

// HandleBulkDecision handles POST /api/decisions/bulk.
func (h *Handler) HandleBulkDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req BulkDecisionRequest
	if err := prepare(r, &req); err != nil {
		h.writeFailure(w, r, err, msgBulkFailed)
		return
	}

	res, err := h.service.BulkDecision(ctx, actorFrom(ctx), req.ParsedIDs(), models.DecisionState(req.Decision))
	body := BulkDecisionResponse{
		Envelope: Envelope{Success: err == nil},
		Count:    res.Count,
		Results:  fromBulkResult(res),
	}
	if err != nil {
		h.logger.WarnContext(ctx, "bulk decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"requested", len(req.ParsedIDs()),
			"succeeded", res.Count,
			"error", err,
		)
		body.Error = msgBulkFailed
		httputil.WriteJSON(w, dErrors.ToHTTPStatus(dErrors.CodeOf(err)), body)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// HandleListAudit handles GET /api/audit.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxAuditLimit)
	}
	if h.audit == nil {
		httputil.WriteJSON(w, http.StatusOK, fromAuditEvents(nil))
		return
	}
	events, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit events", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAuditEvents(events))
}
