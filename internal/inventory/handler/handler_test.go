package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackwise/internal/inventory/models"
	"stackwise/internal/inventory/store"
	"stackwise/pkg/domain"
	"stackwise/pkg/testutil"
)

func serve(t *testing.T, s Store) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(s, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/api/applications", nil))
}

func TestListApplicationsCountsUsers(t *testing.T) {
	ctx := context.Background()
	inv := store.NewInMemoryStore()
	figma := domain.ApplicationID(uuid.New())
	notion := domain.ApplicationID(uuid.New())
	require.NoError(t, inv.UpsertApplication(ctx, models.Application{ID: figma, Name: "Figma", Category: "Design", AnnualCost: 1200}))
	require.NoError(t, inv.UpsertApplication(ctx, models.Application{ID: notion, Name: "Notion", Category: "Docs"}))
	for _, email := range []string{"a@example.com", "b@example.com"} {
		uid := domain.UserIDFromEmail(email)
		require.NoError(t, inv.UpsertUser(ctx, models.User{ID: uid, Email: email}))
		require.NoError(t, inv.AddGrant(ctx, models.Grant{UserID: uid, ApplicationID: figma, GrantedAt: time.Now()}))
	}

	w := serve(t, inv)
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.UnmarshalResponse[ApplicationListResponse](t, w)
	require.Len(t, body.Applications, 2)
	assert.Equal(t, "Figma", body.Applications[0].Name)
	assert.Equal(t, 2, body.Applications[0].UserCount)
	assert.Equal(t, 1200.0, body.Applications[0].AnnualCost)
	assert.Equal(t, 0, body.Applications[1].UserCount)
}

type brokenStore struct{}

func (brokenStore) ListApplications(context.Context) ([]models.Application, error) {
	return nil, errors.New("relation \"applications\" does not exist")
}

func (brokenStore) ListGrants(context.Context) ([]models.Grant, error) { return nil, nil }

func TestListApplicationsStoreFailure(t *testing.T) {
	w := serve(t, brokenStore{})
	assert.NotContains(t, w.Body.String(), "relation")
	testutil.AssertStatusAndError(t, w, http.StatusInternalServerError, "internal_error")
}
