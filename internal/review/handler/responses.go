package handler

import (
	"time"

	"stackwise/internal/review/models"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/audit"
)

// Envelope is the body of every mutation response.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type CampaignResponse struct {
	Envelope
	Campaign *models.CampaignStats `json:"campaign,omitempty"`
}

type StatusResponse struct {
	Envelope
	Campaign *models.Campaign `json:"campaign,omitempty"`
}

type CountResponse struct {
	Envelope
	Count int `json:"count"`
}

type DecisionResponse struct {
	Envelope
	Decision *models.Decision `json:"decision,omitempty"`
}

// BulkItemResponse reports one id of a bulk decision.
type BulkItemResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BulkDecisionResponse struct {
	Envelope
	Count   int                `json:"count"`
	Results []BulkItemResponse `json:"results"`
}

type CampaignListResponse struct {
	Campaigns []models.CampaignStats `json:"campaigns"`
}

type DecisionListResponse struct {
	Decisions []models.Decision `json:"decisions"`
}

// AuditEventResponse is one row of GET /api/audit.
type AuditEventResponse struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	ActorEmail string         `json:"actorEmail,omitempty"`
	Action     string         `json:"action"`
	ObjectType string         `json:"objectType"`
	ObjectID   string         `json:"objectId"`
	ObjectName string         `json:"objectName,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type AuditListResponse struct {
	Events []AuditEventResponse `json:"events"`
}

func fromAuditEvents(events []audit.Event) AuditListResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorEmail: e.ActorEmail,
			Action:     string(e.Action),
			ObjectType: e.ObjectType,
			ObjectID:   e.ObjectID,
			ObjectName: e.ObjectName,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return AuditListResponse{Events: out}
}

func fromBulkResult(res models.BulkResult) []BulkItemResponse {
	out := make([]BulkItemResponse, 0, len(res.Items))
	for _, it := range res.Items {
		item := BulkItemResponse{ID: it.DecisionID.String(), Success: it.Err == nil}
		if it.Err != nil {
			item.Error = publicMessage(it.Err, "failed to record decision")
		}
		out = append(out, item)
	}
	return out
}

// publicMessage returns the coded message, or fallback for internal errors.
func publicMessage(err error, fallback string) string {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		return fallback
	}
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return fallback
}
