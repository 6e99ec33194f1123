package audit

import (
	"time"
)

// Action classifies what a state-changing operation did.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionExport     Action = "export"
	ActionBulkUpdate Action = "bulk_update"
	ActionDecision   Action = "decision"
)

// IsValid reports whether a is one of the known actions.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionExport, ActionBulkUpdate, ActionDecision:
		return true
	}
	return false
}

// SystemActorID attributes automated operations.
const SystemActorID = "system"

// Actor is the identity a state change is attributed to.
type Actor struct {
	ID    string
	Email string
}

// SystemContext returns the actor used for automated or background operations.
func SystemContext() Actor {
	return Actor{ID: SystemActorID}
}

// UserContext returns the actor for an action taken by an authenticated human.
func UserContext(userID, email string) Actor {
	return Actor{ID: userID, Email: email}
}

// IsSystem reports whether the actor is the automated system actor.
func (a Actor) IsSystem() bool {
	return a.ID == SystemActorID
}

// Event is an immutable audit record. Once appended it is never updated or
// deleted; readers order by CreatedAt descending.
type Event struct {
	ID         string
	ActorID    string
	ActorEmail string
	Action     Action
	ObjectType string
	ObjectID   string
	ObjectName string
	Details    map[string]any
	CreatedAt  time.Time
}
