package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	inventory "stackwise/internal/inventory/models"
	inventorystore "stackwise/internal/inventory/store"
	"stackwise/internal/review/models"
	"stackwise/internal/review/service"
	reviewstore "stackwise/internal/review/store"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	"stackwise/pkg/platform/audit/store/memory"
	"stackwise/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	audit    *memory.InMemoryStore
	service  *service.Service
	campaign domain.CampaignID
	decision []domain.DecisionID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	inv := inventorystore.NewInMemoryStore()
	app := domain.ApplicationID(uuid.New())
	s.Require().NoError(inv.UpsertApplication(ctx, inventory.Application{ID: app, Name: "Acme, Inc", Category: "CRM"}))
	for _, email := range []string{"grace@example.com", "linus@example.com"} {
		uid := domain.UserIDFromEmail(email)
		s.Require().NoError(inv.UpsertUser(ctx, inventory.User{ID: uid, Email: email, Name: strings.Split(email, "@")[0]}))
		s.Require().NoError(inv.AddGrant(ctx, inventory.Grant{UserID: uid, ApplicationID: app, GrantedAt: time.Now()}))
	}

	s.audit = memory.NewInMemoryStore()
	s.service = service.New(reviewstore.NewInMemoryStore(inv), inv, emitter.New(s.audit))
	c, err := s.service.CreateCampaign(ctx, audit.SystemContext(), service.CreateCampaignRequest{Name: "Q1", Scope: true})
	s.Require().NoError(err)
	s.campaign = c.ID
	decisions, err := s.service.ListDecisions(ctx, c.ID)
	s.Require().NoError(err)
	s.decision = nil
	for _, d := range decisions {
		s.decision = append(s.decision, d.ID)
	}
	s.audit.Clear()

	h := New(s.service, s.audit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, testutil.WithIdentity(r, "reviewer-1", "ada@example.com"))
		})
	})
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](s *HandlerSuite, w *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&v))
	return v
}

func (s *HandlerSuite) TestMakeDecision() {
	s.Run("records and returns the decision", func() {
		w := s.do(http.MethodPost, "/api/decisions/"+s.decision[0].String(), `{"decision":"approved","rationale":"still on the team"}`)
		s.Equal(http.StatusOK, w.Code)
		body := decode[DecisionResponse](s, w)
		s.True(body.Success)
		s.Require().NotNil(body.Decision)
		s.Equal(models.DecisionApproved, body.Decision.State)
		s.Equal("reviewer-1", *body.Decision.DecidedBy)

		events := s.audit.All()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionDecision, events[0].Action)
		s.Equal("ada@example.com", events[0].ActorEmail)
	})

	s.Run("unknown id reads Failed to record decision", func() {
		s.audit.Clear()
		w := s.do(http.MethodPost, "/api/decisions/"+uuid.NewString(), `{"decision":"approved"}`)
		s.Equal(http.StatusNotFound, w.Code)
		body := decode[Envelope](s, w)
		s.False(body.Success)
		s.Equal("Failed to record decision", body.Error)
		s.Empty(s.audit.All())
	})

	s.Run("invalid decision value", func() {
		w := s.do(http.MethodPost, "/api/decisions/"+s.decision[1].String(), `{"decision":"pending"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("Failed to record decision", decode[Envelope](s, w).Error)
	})

	s.Run("second decision conflicts", func() {
		w := s.do(http.MethodPost, "/api/decisions/"+s.decision[0].String(), `{"decision":"revoked"}`)
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *HandlerSuite) TestBulkDecision() {
	s.Run("partial failure reports every item", func() {
		missing := uuid.NewString()
		payload := `{"decisionIds":["` + s.decision[0].String() + `","` + missing + `","` + s.decision[1].String() + `"],"decision":"revoked"}`
		w := s.do(http.MethodPost, "/api/decisions/bulk", payload)
		s.Equal(http.StatusInternalServerError, w.Code)
		body := decode[BulkDecisionResponse](s, w)
		s.False(body.Success)
		s.Equal("Bulk decision failed", body.Error)
		s.Equal(2, body.Count)
		s.Require().Len(body.Results, 3)
		s.True(body.Results[0].Success)
		s.Equal(missing, body.Results[1].ID)
		s.Equal("decision not found", body.Results[1].Error)
		s.True(body.Results[2].Success)
	})

	s.Run("empty list", func() {
		w := s.do(http.MethodPost, "/api/decisions/bulk", `{"decisionIds":[],"decision":"approved"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.False(decode[Envelope](s, w).Success)
	})
}

func (s *HandlerSuite) TestBulkDecisionRepeatedIDs() {
	id := s.decision[0].String()
	payload := `{"decisionIds":["` + id + `"," ` + id + ` ","` + strings.ToUpper(id) + `"],"decision":"approved"}`
	w := s.do(http.MethodPost, "/api/decisions/bulk", payload)
	s.Equal(http.StatusOK, w.Code)
	body := decode[BulkDecisionResponse](s, w)
	s.True(body.Success)
	s.Equal(1, body.Count)
	s.Require().Len(body.Results, 1)
	s.Equal(id, body.Results[0].ID)
	s.True(body.Results[0].Success)
	s.Len(s.audit.All(), 1)
}

func (s *HandlerSuite) TestCampaignLifecycle() {
	w := s.do(http.MethodPost, "/api/campaigns", `{"name":"Annual","dueDate":"2026-12-31"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	created := decode[CampaignResponse](s, w)
	s.True(created.Success)
	s.Equal(models.CampaignDraft, created.Campaign.Status)
	s.Require().NotNil(created.Campaign.DueDate)
	id := created.Campaign.ID.String()

	w = s.do(http.MethodPost, "/api/campaigns/"+id+"/scope", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(2, decode[CountResponse](s, w).Count)

	w = s.do(http.MethodPatch, "/api/campaigns/"+id+"/status", `{"status":"completed"}`)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPatch, "/api/campaigns/"+id+"/status", `{"status":"active"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/campaigns?status=active", "")
	s.Require().Equal(http.StatusOK, w.Code)
	list := decode[CampaignListResponse](s, w)
	s.Require().Len(list.Campaigns, 1)
	s.Equal(2, list.Campaigns[0].TasksTotal)

	w = s.do(http.MethodDelete, "/api/campaigns/"+id, "")
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/campaigns/"+id, "")
	s.Equal(http.StatusNotFound, w.Code)

	var actions []audit.Action
	for _, e := range s.audit.All() {
		actions = append(actions, e.Action)
	}
	s.ElementsMatch([]audit.Action{audit.ActionCreate, audit.ActionBulkUpdate, audit.ActionUpdate, audit.ActionDelete}, actions)
}

func (s *HandlerSuite) TestCreateCampaignValidation() {
	w := s.do(http.MethodPost, "/api/campaigns", `{"name":"  "}`)
	s.Equal(http.StatusBadRequest, w.Code)
	body := decode[Envelope](s, w)
	s.False(body.Success)
	s.Equal("name is required", body.Error)

	w = s.do(http.MethodPost, "/api/campaigns", `{"name":"x","dueDate":"next week"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestExportDecisions() {
	w := s.do(http.MethodGet, "/api/export/campaigns/"+s.campaign.String()+"/decisions", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="campaign_decisions_20260102T030405Z.csv"`, w.Header().Get("Content-Disposition"))
	s.Equal(strconv.Itoa(w.Body.Len()), w.Header().Get("Content-Length"))

	records, err := csv.NewReader(w.Body).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal(decisionExportHeader, records[0])
	s.Equal("Acme, Inc", records[1][3])

	events := s.audit.All()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionExport, events[0].Action)
	s.Equal(2, events[0].Details["recordCount"])
}

func (s *HandlerSuite) TestExportCampaignsWithNoRowsStillAudits() {
	w := s.do(http.MethodGet, "/api/export/campaigns?status=completed", "")
	s.Require().Equal(http.StatusOK, w.Code)
	records, err := csv.NewReader(w.Body).ReadAll()
	s.Require().NoError(err)
	s.Len(records, 1)

	events := s.audit.All()
	s.Require().Len(events, 1)
	s.Equal(0, events[0].Details["recordCount"])
	s.Equal(map[string]string{"status": "completed"}, events[0].Details["filters"])
}

func (s *HandlerSuite) TestListAudit() {
	s.do(http.MethodPost, "/api/decisions/"+s.decision[0].String(), `{"decision":"approved"}`)

	w := s.do(http.MethodGet, "/api/audit?limit=10", "")
	s.Require().Equal(http.StatusOK, w.Code)
	body := decode[AuditListResponse](s, w)
	s.Require().Len(body.Events, 1)
	s.Equal("decision", body.Events[0].Action)

	w = s.do(http.MethodGet, "/api/audit?limit=-1", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

type failingService struct {
	Service
}

func (failingService) ListDecisions(context.Context, domain.CampaignID) ([]models.Decision, error) {
	return nil, errors.New("pool exhausted")
}

func TestListDecisionsHidesInternalErrors(t *testing.T) {
	h := New(failingService{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/campaigns/"+uuid.NewString()+"/decisions", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "pool exhausted") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}
