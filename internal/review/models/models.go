// Package models defines access review campaigns and their per-access decisions.
package models

import (
	"math"
	"time"

	"stackwise/pkg/domain"
)

// CampaignStatus is the lifecycle position of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows draft -> active -> completed only.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	switch s {
	case CampaignDraft:
		return next == CampaignActive
	case CampaignActive:
		return next == CampaignCompleted
	}
	return false
}

// Campaign is an access certification cycle.
type Campaign struct {
	ID        domain.CampaignID `json:"id"`
	Name      string            `json:"name"`
	Status    CampaignStatus    `json:"status"`
	DueDate   *time.Time        `json:"dueDate,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CampaignStats is a campaign with its derived progress. Progress is never stored.
type CampaignStats struct {
	Campaign
	TasksTotal        int `json:"tasksTotal"`
	TasksCompleted    int `json:"tasksCompleted"`
	CompletionPercent int `json:"completionPercent"`
}

// NewCampaignStats derives CompletionPercent from the counts.
func NewCampaignStats(c Campaign, total, completed int) CampaignStats {
	return CampaignStats{
		Campaign:          c,
		TasksTotal:        total,
		TasksCompleted:    completed,
		CompletionPercent: CompletionPercent(completed, total),
	}
}

// CompletionPercent returns round(100*completed/total) clamped to [0,100],
// and 0 when total is not positive.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	return min(max(p, 0), 100)
}

// DecisionState is the review outcome for one access.
type DecisionState string

const (
	DecisionPending  DecisionState = "pending"
	DecisionApproved DecisionState = "approved"
	DecisionRevoked  DecisionState = "revoked"
)

func (s DecisionState) IsValid() bool {
	switch s {
	case DecisionPending, DecisionApproved, DecisionRevoked:
		return true
	}
	return false
}

// IsTerminal reports whether the state ends the decision lifecycle.
func (s DecisionState) IsTerminal() bool {
	return s == DecisionApproved || s == DecisionRevoked
}

// UserSnapshot is the reviewed user as joined at read time.
type UserSnapshot struct {
	ID    domain.UserID `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
}

// ApplicationSnapshot is the reviewed application as joined at read time.
type ApplicationSnapshot struct {
	ID       domain.ApplicationID `json:"id"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
}

// Decision is one (user, application) pair under review in a campaign.
type Decision struct {
	ID            domain.DecisionID    `json:"id"`
	CampaignID    domain.CampaignID    `json:"campaignId"`
	UserID        domain.UserID        `json:"userId"`
	ApplicationID domain.ApplicationID `json:"applicationId"`
	State         DecisionState        `json:"decision"`
	DecidedBy     *string              `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time           `json:"decidedAt,omitempty"`
	Rationale     *string              `json:"rationale,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`

	User        *UserSnapshot        `json:"user,omitempty"`
	Application *ApplicationSnapshot `json:"application,omitempty"`
}

// AccessPair identifies one access to scope into a campaign.
type AccessPair struct {
	UserID        domain.UserID
	ApplicationID domain.ApplicationID
}

// BulkItemResult is the outcome for one id of a bulk decision.
type BulkItemResult struct {
	DecisionID domain.DecisionID
	Decision   *Decision
	Err        error
}

// BulkResult reports every item of a bulk decision in input order.
// Count is the number of items that succeeded.
type BulkResult struct {
	Count int
	Items []BulkItemResult
}

// Failed returns the items that did not succeed.
func (r BulkResult) Failed() []BulkItemResult {
	var out []BulkItemResult
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}
