package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	"stackwise/pkg/platform/sentinel"
)

const (
	objectTypeCampaign = "Campaign"
	maxCampaignName    = 200
)

// CreateCampaignRequest describes a new draft campaign.
type CreateCampaignRequest struct {
	Name    string
	DueDate *time.Time
	// Scope inserts pending decisions for the current access matrix in the
	// same transaction as the campaign itself.
	Scope bool
}

func (r *CreateCampaignRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateCampaignRequest) validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxCampaignName {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	return nil
}

// ListCampaigns returns campaigns with derived progress. An empty status lists all.
func (s *Service) ListCampaigns(ctx context.Context, status models.CampaignStatus) ([]models.CampaignStats, error) {
	if status != "" && !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid campaign status")
	}
	campaigns, err := s.store.ListCampaigns(ctx, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list campaigns", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list campaigns")
	}
	return campaigns, nil
}

func (s *Service) GetCampaign(ctx context.Context, id domain.CampaignID) (*models.CampaignStats, error) {
	c, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, s.wrapCampaignErr(ctx, err, "failed to load campaign")
	}
	return c, nil
}

// CreateCampaign inserts a draft campaign, optionally scoping it at once.
func (s *Service) CreateCampaign(ctx context.Context, actor audit.Actor, req CreateCampaignRequest) (_ *models.CampaignStats, err error) {
	ctx, span := s.startSpan(ctx, "CreateCampaign", trace.WithAttributes(attribute.Bool("campaign.scope", req.Scope)))
	defer func() { endSpan(span, err) }()

	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now(ctx)
	campaign := &models.Campaign{
		ID:        domain.NewCampaignID(),
		Name:      req.Name,
		Status:    models.CampaignDraft,
		DueDate:   req.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	scoped, requested := 0, 0
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateCampaign(txCtx, campaign); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "campaign already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create campaign")
		}
		if !req.Scope {
			return nil
		}
		var err error
		scoped, requested, err = s.scope(txCtx, campaign.ID, now)
		return err
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			s.logger.ErrorContext(ctx, "failed to create campaign", "error", err)
		}
		return nil, err
	}

	details := map[string]any{"name": campaign.Name, "status": string(campaign.Status)}
	if campaign.DueDate != nil {
		details["dueDate"] = campaign.DueDate.UTC().Format(time.RFC3339)
	}
	if req.Scope {
		details["inserted"] = scoped
		details["requested"] = requested
	}
	s.audit.Emit(ctx, actor, emitter.Entry{
		Action:     audit.ActionCreate,
		ObjectType: objectTypeCampaign,
		ObjectID:   campaign.ID.String(),
		ObjectName: campaign.Name,
		Details:    details,
	})

	stats := models.NewCampaignStats(*campaign, scoped, 0)
	return &stats, nil
}

// UpdateCampaignStatus moves a campaign forward along draft, active, completed.
func (s *Service) UpdateCampaignStatus(ctx context.Context, actor audit.Actor, id domain.CampaignID, status models.CampaignStatus) (_ *models.Campaign, err error) {
	ctx, span := s.startSpan(ctx, "UpdateCampaignStatus", trace.WithAttributes(
		attribute.String("campaign.id", id.String()),
		attribute.String("campaign.status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid campaign status")
	}
	current, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, s.wrapCampaignErr(ctx, err, "failed to load campaign")
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, dErrors.New(dErrors.CodeConflict, "cannot move campaign from "+string(current.Status)+" to "+string(status))
	}

	updated, err := s.store.UpdateCampaignStatus(ctx, id, status, s.now(ctx))
	if err != nil {
		return nil, s.wrapCampaignErr(ctx, err, "failed to update campaign")
	}

	s.audit.Emit(ctx, actor, emitter.Entry{
		Action:     audit.ActionUpdate,
		ObjectType: objectTypeCampaign,
		ObjectID:   id.String(),
		ObjectName: updated.Name,
		Details:    map[string]any{"from": string(current.Status), "to": string(status)},
	})
	return updated, nil
}

// DeleteCampaign removes a campaign and, with it, its decisions.
func (s *Service) DeleteCampaign(ctx context.Context, actor audit.Actor, id domain.CampaignID) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCampaign", trace.WithAttributes(attribute.String("campaign.id", id.String())))
	defer func() { endSpan(span, err) }()

	current, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return s.wrapCampaignErr(ctx, err, "failed to load campaign")
	}
	if err := s.store.DeleteCampaign(ctx, id); err != nil {
		return s.wrapCampaignErr(ctx, err, "failed to delete campaign")
	}

	s.audit.Emit(ctx, actor, emitter.Entry{
		Action:     audit.ActionDelete,
		ObjectType: objectTypeCampaign,
		ObjectID:   id.String(),
		ObjectName: current.Name,
		Details:    map[string]any{"tasksTotal": current.TasksTotal},
	})
	return nil
}

// ScopeCampaign inserts a pending decision for every current grant not yet
// under review in the campaign. Re-scoping is idempotent. Returns the number
// of newly inserted decisions.
func (s *Service) ScopeCampaign(ctx context.Context, actor audit.Actor, id domain.CampaignID) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "ScopeCampaign", trace.WithAttributes(attribute.String("campaign.id", id.String())))
	defer func() { endSpan(span, err) }()

	current, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return 0, s.wrapCampaignErr(ctx, err, "failed to load campaign")
	}
	if current.Status == models.CampaignCompleted {
		return 0, dErrors.New(dErrors.CodeConflict, "campaign is completed")
	}

	inserted, requested, err := s.scope(ctx, id, s.now(ctx))
	if err != nil {
		return 0, err
	}

	s.audit.Emit(ctx, actor, emitter.Entry{
		Action:     audit.ActionBulkUpdate,
		ObjectType: objectTypeCampaign,
		ObjectID:   id.String(),
		ObjectName: current.Name,
		Details:    map[string]any{"inserted": inserted, "requested": requested},
	})
	return inserted, nil
}

func (s *Service) scope(ctx context.Context, id domain.CampaignID, at time.Time) (inserted, requested int, err error) {
	if s.access == nil {
		return 0, 0, dErrors.New(dErrors.CodeInternal, "access matrix unavailable")
	}
	grants, err := s.access.ListGrants(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read access matrix", "error", err)
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read access matrix")
	}
	pairs := make([]models.AccessPair, 0, len(grants))
	for _, g := range grants {
		pairs = append(pairs, models.AccessPair{UserID: g.UserID, ApplicationID: g.ApplicationID})
	}

	inserted, err = s.store.BulkInsertPending(ctx, id, pairs, at)
	if err != nil {
		return 0, 0, s.wrapCampaignErr(ctx, err, "failed to scope campaign")
	}
	if s.metrics != nil {
		s.metrics.AddScoped(inserted)
	}
	return inserted, len(pairs), nil
}

// ListDecisions returns the campaign's decisions with user and application snapshots.
func (s *Service) ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, s.wrapCampaignErr(ctx, err, "failed to load campaign")
	}
	decisions, err := s.store.ListDecisions(ctx, campaignID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list decisions", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions")
	}
	return decisions, nil
}

func (s *Service) wrapCampaignErr(ctx context.Context, err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "campaign not found")
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
