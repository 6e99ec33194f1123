package review

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	PATCH(path string, body any) error
	DELETE(path string) error
	GetResponseField(field string) (any, error)
	Status() int
	Body() []byte
	Save(key, value string)
	Saved(key string) string
}

const (
	keyCampaign  = "campaignId"
	keyDecisions = "decisionIds"
)

// RegisterSteps registers campaign and decision step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reviewSteps{tc: tc}

	ctx.Step(`^I create a campaign named "([^"]*)"$`, steps.createCampaign)
	ctx.Step(`^I create a scoped campaign named "([^"]*)"$`, steps.createScopedCampaign)
	ctx.Step(`^I scope the campaign$`, steps.scopeCampaign)
	ctx.Step(`^I set the campaign status to "([^"]*)"$`, steps.setStatus)
	ctx.Step(`^I get the campaign$`, steps.getCampaign)
	ctx.Step(`^I delete the campaign$`, steps.deleteCampaign)
	ctx.Step(`^I list the campaign decisions$`, steps.listDecisions)
	ctx.Step(`^I (approve|revoke) decision (\d+)$`, steps.decide)
	ctx.Step(`^I (approve|revoke) decision (\d+) because "([^"]*)"$`, steps.decideWithRationale)
	ctx.Step(`^I bulk (approve|revoke) decisions (\d+) to (\d+)$`, steps.bulkDecide)
	ctx.Step(`^I bulk (approve|revoke) decision (\d+) and an unknown decision$`, steps.bulkDecideWithUnknown)
	ctx.Step(`^I export the campaign decisions$`, steps.exportDecisions)
	ctx.Step(`^the export should have (\d+) rows?$`, steps.exportShouldHaveRows)
	ctx.Step(`^the latest audit event should be "([^"]*)" on "([^"]*)"$`, steps.latestAuditShouldBe)
}

type reviewSteps struct {
	tc TestContext
}

func stateFor(verb string) string {
	if verb == "approve" {
		return "approved"
	}
	return "revoked"
}

func (s *reviewSteps) campaignPath(suffix string) string {
	return "/api/campaigns/" + s.tc.Saved(keyCampaign) + suffix
}

func (s *reviewSteps) saveCampaignID() error {
	id, err := s.tc.GetResponseField("campaign.id")
	if err != nil {
		return fmt.Errorf("campaign not created (%d): %w", s.tc.Status(), err)
	}
	s.tc.Save(keyCampaign, fmt.Sprint(id))
	return nil
}

func (s *reviewSteps) createCampaign(ctx context.Context, name string) error {
	if err := s.tc.POST("/api/campaigns", map[string]any{"name": name}); err != nil {
		return err
	}
	return s.saveCampaignID()
}

func (s *reviewSteps) createScopedCampaign(ctx context.Context, name string) error {
	if err := s.tc.POST("/api/campaigns", map[string]any{"name": name, "scope": true}); err != nil {
		return err
	}
	return s.saveCampaignID()
}

func (s *reviewSteps) scopeCampaign(ctx context.Context) error {
	return s.tc.POST(s.campaignPath("/scope"), nil)
}

func (s *reviewSteps) setStatus(ctx context.Context, status string) error {
	return s.tc.PATCH(s.campaignPath("/status"), map[string]any{"status": status})
}

func (s *reviewSteps) getCampaign(ctx context.Context) error {
	return s.tc.GET(s.campaignPath(""), nil)
}

func (s *reviewSteps) deleteCampaign(ctx context.Context) error {
	return s.tc.DELETE(s.campaignPath(""))
}

func (s *reviewSteps) listDecisions(ctx context.Context) error {
	if err := s.tc.GET(s.campaignPath("/decisions"), nil); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("decisions")
	if err != nil {
		return err
	}
	items, _ := v.([]any)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			ids = append(ids, fmt.Sprint(m["id"]))
		}
	}
	s.tc.Save(keyDecisions, strings.Join(ids, ","))
	return nil
}

// decisionID returns the n-th listed decision, counting from 1.
func (s *reviewSteps) decisionID(n int) (string, error) {
	ids := strings.Split(s.tc.Saved(keyDecisions), ",")
	if n < 1 || n > len(ids) || ids[n-1] == "" {
		return "", fmt.Errorf("decision %d not listed; list the campaign decisions first", n)
	}
	return ids[n-1], nil
}

func (s *reviewSteps) decide(ctx context.Context, verb string, n int) error {
	id, err := s.decisionID(n)
	if err != nil {
		return err
	}
	return s.tc.POST("/api/decisions/"+id, map[string]any{"decision": stateFor(verb)})
}

func (s *reviewSteps) decideWithRationale(ctx context.Context, verb string, n int, rationale string) error {
	id, err := s.decisionID(n)
	if err != nil {
		return err
	}
	return s.tc.POST("/api/decisions/"+id, map[string]any{"decision": stateFor(verb), "rationale": rationale})
}

func (s *reviewSteps) bulkDecide(ctx context.Context, verb string, from, to int) error {
	var ids []string
	for n := from; n <= to; n++ {
		id, err := s.decisionID(n)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return s.tc.POST("/api/decisions/bulk", map[string]any{"decisionIds": ids, "decision": stateFor(verb)})
}

func (s *reviewSteps) bulkDecideWithUnknown(ctx context.Context, verb string, n int) error {
	id, err := s.decisionID(n)
	if err != nil {
		return err
	}
	unknown := "00000000-0000-4000-8000-000000000000"
	return s.tc.POST("/api/decisions/bulk", map[string]any{"decisionIds": []string{id, unknown}, "decision": stateFor(verb)})
}

func (s *reviewSteps) exportDecisions(ctx context.Context) error {
	return s.tc.GET("/api/export/campaigns/"+s.tc.Saved(keyCampaign)+"/decisions", nil)
}

func (s *reviewSteps) exportShouldHaveRows(ctx context.Context, want int) error {
	records, err := csv.NewReader(bytes.NewReader(s.tc.Body())).ReadAll()
	if err != nil {
		return fmt.Errorf("export is not csv: %w", err)
	}
	if got := len(records) - 1; got != want {
		return fmt.Errorf("expected %d rows, got %d", want, got)
	}
	return nil
}

func (s *reviewSteps) latestAuditShouldBe(ctx context.Context, action, objectType string) error {
	if err := s.tc.GET("/api/audit?limit=1", nil); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("events")
	if err != nil {
		return err
	}
	events, _ := v.([]any)
	if len(events) == 0 {
		return fmt.Errorf("no audit events recorded")
	}
	e, _ := events[0].(map[string]any)
	if fmt.Sprint(e["action"]) != action || fmt.Sprint(e["objectType"]) != objectType {
		return fmt.Errorf("expected %s on %s, got %v on %v", action, objectType, e["action"], e["objectType"])
	}
	return nil
}
