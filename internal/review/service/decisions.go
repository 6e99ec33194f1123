package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	"stackwise/pkg/platform/sentinel"
)

const objectTypeDecision = "AccessDecision"

// MakeDecision moves a pending decision to approved or revoked and emits one
// decision audit event. Decisions already approved or revoked are not
// reopened.
func (s *Service) MakeDecision(ctx context.Context, actor audit.Actor, id domain.DecisionID, state models.DecisionState, rationale *string) (_ *models.Decision, err error) {
	ctx, span := s.startSpan(ctx, "MakeDecision", trace.WithAttributes(
		attribute.String("decision.id", id.String()),
		attribute.String("decision.state", string(state)),
	))
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveMakeDecision(time.Now())
	}

	if err := validateDecisionState(state); err != nil {
		return nil, err
	}
	return s.decide(ctx, actor, id, state, normalizeRationale(rationale))
}

// BulkDecision applies the same state to each distinct id in input order;
// a repeated id is decided once. Items are independent: a failure leaves
// earlier items committed and later items still attempted. When any item
// fails the returned error is a CodeInternal "bulk decision failed"
// alongside the full per-item result.
func (s *Service) BulkDecision(ctx context.Context, actor audit.Actor, ids []domain.DecisionID, state models.DecisionState) (_ models.BulkResult, err error) {
	ctx, span := s.startSpan(ctx, "BulkDecision", trace.WithAttributes(
		attribute.Int("decision.count", len(ids)),
		attribute.String("decision.state", string(state)),
	))
	defer func() { endSpan(span, err) }()

	ids = uniqueDecisionIDs(ids)
	if len(ids) == 0 {
		return models.BulkResult{}, dErrors.New(dErrors.CodeValidation, "decisionIds must not be empty")
	}
	if err := validateDecisionState(state); err != nil {
		return models.BulkResult{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBulkSize(len(ids))
	}

	result := models.BulkResult{Items: make([]models.BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		d, itemErr := s.decide(ctx, actor, id, state, nil)
		result.Items = append(result.Items, models.BulkItemResult{DecisionID: id, Decision: d, Err: itemErr})
		if itemErr == nil {
			result.Count++
		}
	}

	if failed := result.Failed(); len(failed) > 0 {
		failures := make([]error, 0, len(failed))
		for _, it := range failed {
			failures = append(failures, it.Err)
		}
		s.logger.WarnContext(ctx, "bulk decision partially failed",
			"requested", len(ids),
			"succeeded", result.Count,
			"failed", len(failed),
		)
		return result, dErrors.Wrap(errors.Join(failures...), dErrors.CodeInternal, "bulk decision failed")
	}
	return result, nil
}

func uniqueDecisionIDs(ids []domain.DecisionID) []domain.DecisionID {
	seen := make(map[domain.DecisionID]struct{}, len(ids))
	out := make([]domain.DecisionID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) decide(ctx context.Context, actor audit.Actor, id domain.DecisionID, state models.DecisionState, rationale *string) (*models.Decision, error) {
	current, err := s.store.GetDecision(ctx, id)
	if err != nil {
		return nil, s.wrapDecisionErr(ctx, err, "failed to load decision")
	}
	if current.State.IsTerminal() {
		s.incrementRejected("terminal")
		return nil, dErrors.New(dErrors.CodeConflict, "decision already recorded")
	}

	updated, err := s.store.RecordDecision(ctx, id, state, actor.ID, rationale, s.now(ctx))
	if err != nil {
		return nil, s.wrapDecisionErr(ctx, err, "failed to record decision")
	}

	s.audit.Emit(ctx, actor, emitter.Entry{
		Action:     audit.ActionDecision,
		ObjectType: objectTypeDecision,
		ObjectID:   id.String(),
		ObjectName: decisionObjectName(updated),
		Details: map[string]any{
			"decision":      string(state),
			"rationale":     rationaleValue(rationale),
			"userId":        updated.UserID.String(),
			"applicationId": updated.ApplicationID.String(),
			"campaignId":    updated.CampaignID.String(),
		},
	})
	if s.metrics != nil {
		s.metrics.IncrementDecision(string(state))
	}
	return updated, nil
}

func validateDecisionState(state models.DecisionState) error {
	if state != models.DecisionApproved && state != models.DecisionRevoked {
		return dErrors.New(dErrors.CodeValidation, "decision must be approved or revoked")
	}
	return nil
}

func (s *Service) wrapDecisionErr(ctx context.Context, err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		s.incrementRejected("not_found")
		return dErrors.New(dErrors.CodeNotFound, "decision not found")
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) incrementRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

// normalizeRationale treats a blank rationale as absent.
func normalizeRationale(r *string) *string {
	if r == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func rationaleValue(r *string) any {
	if r == nil {
		return nil
	}
	return *r
}

// decisionObjectName reads "<user> / <application>" when snapshots are present.
func decisionObjectName(d *models.Decision) string {
	if d.User == nil || d.Application == nil {
		return ""
	}
	return d.User.Name + " / " + d.Application.Name
}
