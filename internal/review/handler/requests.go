package handler

import (
	"strings"
	"time"
	"unicode/utf8"

	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	platformstrings "stackwise/pkg/platform/strings"
)

const (
	maxRationaleLength = 2000
	maxBulkDecisions   = 500
)

// CreateCampaignRequest is the body of POST /api/campaigns.
type CreateCampaignRequest struct {
	Name    string  `json:"name"`
	DueDate *string `json:"dueDate"`
	Scope   bool    `json:"scope"`

	parsedDueDate *time.Time
}

func (r *CreateCampaignRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.DueDate != nil {
		trimmed := strings.TrimSpace(*r.DueDate)
		if trimmed == "" {
			r.DueDate = nil
		} else {
			r.DueDate = &trimmed
		}
	}
}

func (r *CreateCampaignRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.DueDate != nil {
		due, err := parseDate(*r.DueDate)
		if err != nil {
			return err
		}
		r.parsedDueDate = &due
	}
	return nil
}

// ParsedDueDate is populated by Validate.
func (r *CreateCampaignRequest) ParsedDueDate() *time.Time {
	return r.parsedDueDate
}

// parseDate accepts an RFC 3339 timestamp or a plain calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "dueDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

// UpdateStatusRequest is the body of PATCH /api/campaigns/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *UpdateStatusRequest) Validate() error {
	if !models.CampaignStatus(r.Status).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "status must be draft, active or completed")
	}
	return nil
}

// DecisionRequest is the body of POST /api/decisions/{id}.
type DecisionRequest struct {
	Decision  string  `json:"decision"`
	Rationale *string `json:"rationale"`
}

func (r *DecisionRequest) Normalize() {
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
}

func (r *DecisionRequest) Validate() error {
	if err := validateDecision(r.Decision); err != nil {
		return err
	}
	if r.Rationale != nil && utf8.RuneCountInString(*r.Rationale) > maxRationaleLength {
		return dErrors.New(dErrors.CodeValidation, "rationale is too long")
	}
	return nil
}

// BulkDecisionRequest is the body of POST /api/decisions/bulk.
type BulkDecisionRequest struct {
	DecisionIDs []string `json:"decisionIds"`
	Decision    string   `json:"decision"`

	parsedIDs []domain.DecisionID
}

func (r *BulkDecisionRequest) Normalize() {
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
	r.DecisionIDs = platformstrings.DedupeAndTrim(r.DecisionIDs)
}

func (r *BulkDecisionRequest) Validate() error {
	if len(r.DecisionIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "decisionIds must not be empty")
	}
	if len(r.DecisionIDs) > maxBulkDecisions {
		return dErrors.New(dErrors.CodeValidation, "too many decisionIds")
	}
	if err := validateDecision(r.Decision); err != nil {
		return err
	}
	r.parsedIDs = make([]domain.DecisionID, 0, len(r.DecisionIDs))
	for _, raw := range r.DecisionIDs {
		id, err := domain.ParseDecisionID(raw)
		if err != nil {
			return err
		}
		r.parsedIDs = append(r.parsedIDs, id)
	}
	return nil
}

// ParsedIDs is populated by Validate.
func (r *BulkDecisionRequest) ParsedIDs() []domain.DecisionID {
	return r.parsedIDs
}

func validateDecision(s string) error {
	switch models.DecisionState(s) {
	case models.DecisionApproved, models.DecisionRevoked:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "decision must be approved or revoked")
}
