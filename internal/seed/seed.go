// Package seed loads demo inventory and campaigns for mock mode.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	inventory "stackwise/internal/inventory/models"
	"stackwise/internal/review/models"
	"stackwise/internal/review/service"
	"stackwise/pkg/domain"
	"stackwise/pkg/email"
	"stackwise/pkg/platform/audit"
)

var appNamespace = uuid.MustParse("0b7c8a8e-3f0f-4c55-9d61-7f2f3c4e9a10")

// Inventory is the write side of the inventory stores.
type Inventory interface {
	UpsertUser(ctx context.Context, user inventory.User) error
	UpsertApplication(ctx context.Context, app inventory.Application) error
	AddGrant(ctx context.Context, grant inventory.Grant) error
}

// Reviews is the subset of the review service the seed drives.
type Reviews interface {
	CreateCampaign(ctx context.Context, actor audit.Actor, req service.CreateCampaignRequest) (*models.CampaignStats, error)
	UpdateCampaignStatus(ctx context.Context, actor audit.Actor, id domain.CampaignID, status models.CampaignStatus) (*models.Campaign, error)
	ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error)
	MakeDecision(ctx context.Context, actor audit.Actor, id domain.DecisionID, state models.DecisionState, rationale *string) (*models.Decision, error)
}

type demoApp struct {
	name     string
	category string
	cost     float64
}

var demoApps = []demoApp{
	{"Slack", "Communication", 8750},
	{"Figma", "Design", 5400},
	{"GitHub", "Engineering", 12600},
	{"Notion", "Productivity", 3200},
	{"Salesforce", "Sales", 39000},
	{"Zoom", "Communication", 2400},
	{"Datadog", "Engineering", 21000},
	{"HubSpot", "Marketing", 9600},
}

var demoEmails = []string{
	"ada.lovelace@example.com",
	"grace.hopper@example.com",
	"alan.turing@example.com",
	"katherine.johnson@example.com",
	"linus.torvalds@example.com",
	"margaret.hamilton@example.com",
	"dennis.ritchie@example.com",
	"barbara.liskov@example.com",
}

// ApplicationID is the stable id of a demo application.
func ApplicationID(name string) domain.ApplicationID {
	return domain.ApplicationID(uuid.NewSHA1(appNamespace, []byte(name)))
}

// Result summarizes what was loaded.
type Result struct {
	Users        int
	Applications int
	Grants       int
	Campaigns    []domain.CampaignID
}

// Load writes the demo inventory, then creates an active campaign with some
// decisions already recorded and an empty draft.
func Load(ctx context.Context, inv Inventory, reviews Reviews, now time.Time) (*Result, error) {
	res := &Result{}
	for _, a := range demoApps {
		app := inventory.Application{ID: ApplicationID(a.name), Name: a.name, Category: a.category, AnnualCost: a.cost}
		if err := inv.UpsertApplication(ctx, app); err != nil {
			return nil, fmt.Errorf("seed application %s: %w", a.name, err)
		}
		res.Applications++
	}

	for i, addr := range demoEmails {
		uid := domain.UserIDFromEmail(addr)
		if err := inv.UpsertUser(ctx, inventory.User{ID: uid, Email: addr, Name: email.DisplayName(addr)}); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", addr, err)
		}
		res.Users++
		// Everyone has Slack and Zoom; other apps rotate by index.
		apps := []string{"Slack", "Zoom", demoApps[(i+1)%len(demoApps)].name, demoApps[(i+3)%len(demoApps)].name}
		seen := map[string]bool{}
		for j, name := range apps {
			if seen[name] {
				continue
			}
			seen[name] = true
			grant := inventory.Grant{
				UserID:        uid,
				ApplicationID: ApplicationID(name),
				GrantedAt:     now.AddDate(0, -(i + j + 1), 0),
			}
			if err := inv.AddGrant(ctx, grant); err != nil {
				return nil, fmt.Errorf("seed grant %s/%s: %w", addr, name, err)
			}
			res.Grants++
		}
	}

	system := audit.SystemContext()
	due := now.AddDate(0, 0, 30)
	active, err := reviews.CreateCampaign(ctx, system, service.CreateCampaignRequest{Name: "Q1 Access Review", DueDate: &due, Scope: true})
	if err != nil {
		return nil, fmt.Errorf("seed active campaign: %w", err)
	}
	if _, err := reviews.UpdateCampaignStatus(ctx, system, active.ID, models.CampaignActive); err != nil {
		return nil, fmt.Errorf("activate seeded campaign: %w", err)
	}
	decisions, err := reviews.ListDecisions(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("list seeded decisions: %w", err)
	}
	for i, d := range decisions {
		if i%3 != 0 {
			continue
		}
		state := models.DecisionApproved
		var rationale *string
		if i%6 == 3 {
			state = models.DecisionRevoked
			r := "No login in 90 days"
			rationale = &r
		}
		if _, err := reviews.MakeDecision(ctx, system, d.ID, state, rationale); err != nil {
			return nil, fmt.Errorf("seed decision: %w", err)
		}
	}

	draft, err := reviews.CreateCampaign(ctx, system, service.CreateCampaignRequest{Name: "Engineering Tools Review"})
	if err != nil {
		return nil, fmt.Errorf("seed draft campaign: %w", err)
	}
	res.Campaigns = []domain.CampaignID{active.ID, draft.ID}
	return res, nil
}
