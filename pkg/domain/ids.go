// Package domain holds the typed identifiers shared across stackwise packages.
//
// Each ID is a distinct named UUID so a campaign id can never be passed where
// a decision id is expected. Parsing happens once at trust boundaries
// (handlers, store adapters); everything inside works with typed values.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "stackwise/pkg/domain-errors"
)

type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	CampaignID    uuid.UUID
	DecisionID    uuid.UUID
)

func parseID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, kind+" is required")
	}
	if len(s) > 64 || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseID("user id", s)
	return UserID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseID("application id", s)
	return ApplicationID(u), err
}

func ParseCampaignID(s string) (CampaignID, error) {
	u, err := parseID("campaign id", s)
	return CampaignID(u), err
}

func ParseDecisionID(s string) (DecisionID, error) {
	u, err := parseID("decision id", s)
	return DecisionID(u), err
}

// userNamespace seeds deterministic user ids derived from an email address.
var userNamespace = uuid.MustParse("6f1c5b0e-9a53-4f0e-8d3c-2f8f7a6b1c42")

// UserIDFromEmail derives a stable user id (UUID v5) for an email address.
func UserIDFromEmail(email string) UserID {
	return UserID(uuid.NewSHA1(userNamespace, []byte(email)))
}

func NewCampaignID() CampaignID { return CampaignID(uuid.New()) }
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id CampaignID) String() string    { return uuid.UUID(id).String() }
func (id DecisionID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CampaignID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DecisionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id CampaignID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id DecisionID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ApplicationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CampaignID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DecisionID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
