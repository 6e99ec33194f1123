package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stackwise/internal/review/models"
	"stackwise/pkg/csvexport"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/httputil"
	"stackwise/pkg/requestcontext"
)

var campaignExportHeader = []string{
	"ID", "Name", "Status", "Due Date", "Tasks Total", "Tasks Completed", "Completion %", "Created At",
}

var decisionExportHeader = []string{
	"Decision ID", "User", "Email", "Application", "Category", "Decision", "Decided By", "Decided At", "Rationale",
}

// HandleExportCampaigns handles GET /api/export/campaigns.
func (h *Handler) HandleExportCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := r.URL.Query().Get("status")
	campaigns, err := h.service.ListCampaigns(ctx, models.CampaignStatus(status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			c.ID.String(),
			c.Name,
			string(c.Status),
			formatDate(c.DueDate),
			strconv.Itoa(c.TasksTotal),
			strconv.Itoa(c.TasksCompleted),
			strconv.Itoa(c.CompletionPercent),
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	filters := map[string]string{}
	if status != "" {
		filters["status"] = status
	}
	if !h.writeCSV(w, r, "campaigns", campaignExportHeader, rows) {
		return
	}
	h.service.RecordExport(ctx, actorFrom(ctx), "Campaign", len(rows), filters)
}

// HandleExportDecisions handles GET /api/export/campaigns/{id}/decisions.
func (h *Handler) HandleExportDecisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decisions, err := h.service.ListDecisions(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		var userName, email, appName, category string
		if d.User != nil {
			userName, email = d.User.Name, d.User.Email
		}
		if d.Application != nil {
			appName, category = d.Application.Name, d.Application.Category
		}
		rows = append(rows, []string{
			d.ID.String(),
			userName,
			email,
			appName,
			category,
			string(d.State),
			deref(d.DecidedBy),
			formatTimestamp(d.DecidedAt),
			deref(d.Rationale),
		})
	}

	if !h.writeCSV(w, r, "campaign_decisions", decisionExportHeader, rows) {
		return
	}
	h.service.RecordExport(ctx, actorFrom(ctx), "AccessDecision", len(rows), map[string]string{"campaignId": id.String()})
}

// writeCSV encodes the export before committing the status so an encoding
// failure still answers 500. It reports whether the file was sent.
func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, prefix string, header []string, rows [][]string) bool {
	body, err := csvexport.Encode(header, rows)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode csv export",
			"request_id", requestcontext.RequestID(r.Context()),
			"export", prefix,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode export"))
		return false
	}
	w.Header().Set("Content-Type", csvexport.ContentType)
	w.Header().Set("Content-Disposition", csvexport.ContentDisposition(prefix, h.now()))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
