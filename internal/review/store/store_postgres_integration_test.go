//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	inventory "stackwise/internal/inventory/models"
	inventorystore "stackwise/internal/inventory/store"
	"stackwise/internal/review/models"
	"stackwise/internal/review/store"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/sentinel"
	"stackwise/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	inv      *inventorystore.PostgresStore
	pairs    []models.AccessPair
	campaign *models.Campaign
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
	s.inv = inventorystore.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "access_decisions", "campaigns", "access_grants", "applications", "users"))

	app := inventory.Application{ID: domain.ApplicationID(uuid.New()), Name: "GitHub", Category: "Engineering", AnnualCost: 2100.75}
	s.Require().NoError(s.inv.UpsertApplication(ctx, app))

	s.pairs = nil
	for _, email := range []string{"u1@example.com", "u2@example.com", "u3@example.com"} {
		u := inventory.User{ID: domain.UserIDFromEmail(email), Email: email, Name: email}
		s.Require().NoError(s.inv.UpsertUser(ctx, u))
		s.pairs = append(s.pairs, models.AccessPair{UserID: u.ID, ApplicationID: app.ID})
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.campaign = &models.Campaign{ID: domain.NewCampaignID(), Name: "Q2", Status: models.CampaignDraft, CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.store.CreateCampaign(ctx, s.campaign))
}

func (s *PostgresStoreSuite) TestBulkInsertPendingIdempotent() {
	ctx := context.Background()
	now := time.Now().UTC()

	n, err := s.store.BulkInsertPending(ctx, s.campaign.ID, s.pairs, now)
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = s.store.BulkInsertPending(ctx, s.campaign.ID, s.pairs, now)
	s.Require().NoError(err)
	s.Equal(0, n)

	decisions, err := s.store.ListDecisions(ctx, s.campaign.ID)
	s.Require().NoError(err)
	s.Len(decisions, 3)
	s.Equal("GitHub", decisions[0].Application.Name)
}

func (s *PostgresStoreSuite) TestBulkInsertUnknownCampaign() {
	_, err := s.store.BulkInsertPending(context.Background(), domain.NewCampaignID(), s.pairs, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentScopingInsertsEachPairOnce() {
	ctx := context.Background()
	var wg sync.WaitGroup
	totals := make([]int, 8)
	for i := range totals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.store.BulkInsertPending(ctx, s.campaign.ID, s.pairs, time.Now())
			s.NoError(err)
			totals[i] = n
		}()
	}
	wg.Wait()

	sum := 0
	for _, n := range totals {
		sum += n
	}
	s.Equal(3, sum)
}

func (s *PostgresStoreSuite) TestRecordDecisionAndStats() {
	ctx := context.Background()
	_, err := s.store.BulkInsertPending(ctx, s.campaign.ID, s.pairs, time.Now())
	s.Require().NoError(err)
	decisions, err := s.store.ListDecisions(ctx, s.campaign.ID)
	s.Require().NoError(err)

	why := "needed for on-call"
	d, err := s.store.RecordDecision(ctx, decisions[0].ID, models.DecisionApproved, "reviewer-1", &why, time.Now())
	s.Require().NoError(err)
	s.Equal(models.DecisionApproved, d.State)
	s.Equal(why, *d.Rationale)

	stats, err := s.store.GetCampaign(ctx, s.campaign.ID)
	s.Require().NoError(err)
	s.Equal(3, stats.TasksTotal)
	s.Equal(1, stats.TasksCompleted)
	s.Equal(33, stats.CompletionPercent)
}

func (s *PostgresStoreSuite) TestDeleteCascadesDecisions() {
	ctx := context.Background()
	_, err := s.store.BulkInsertPending(ctx, s.campaign.ID, s.pairs, time.Now())
	s.Require().NoError(err)
	decisions, _ := s.store.ListDecisions(ctx, s.campaign.ID)

	s.Require().NoError(s.store.DeleteCampaign(ctx, s.campaign.ID))

	_, err = s.store.GetDecision(ctx, decisions[0].ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestAnnualCostRoundTrip() {
	apps, err := s.inv.ListApplications(context.Background())
	s.Require().NoError(err)
	s.Require().Len(apps, 1)
	s.InDelta(2100.75, apps[0].AnnualCost, 0.001)
}
