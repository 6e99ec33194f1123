package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/sentinel"
	txcontext "stackwise/pkg/platform/tx"
)

const pgForeignKeyViolation = "23503"

const campaignStatsSelect = `SELECT c.id, c.name, c.status, c.due_date, c.created_at, c.updated_at,
	COUNT(d.id) AS tasks_total,
	COUNT(d.id) FILTER (WHERE d.decision <> 'pending') AS tasks_completed
	FROM campaigns c
	LEFT JOIN access_decisions d ON d.campaign_id = c.id`

const decisionSelect = `SELECT d.id, d.campaign_id, d.user_id, d.application_id, d.decision,
	d.decided_by, d.decided_at, d.rationale, d.created_at,
	u.email, u.name, a.name, a.category
	FROM access_decisions d
	JOIN users u ON u.id = d.user_id
	JOIN applications a ON a.id = d.application_id`

// PostgresStore persists campaigns and decisions in PostgreSQL. Calls run on
// the transaction carried by ctx when there is one.
type PostgresStore struct {
	db txcontext.Querier
}

// NewPostgres constructs a PostgreSQL-backed review store.
func NewPostgres(db txcontext.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, status models.CampaignStatus) ([]models.CampaignStats, error) {
	rows, err := txcontext.Q(ctx, s.db).Query(ctx,
		campaignStatsSelect+`
	WHERE ($1::text = '' OR c.status = $1::text)
	GROUP BY c.id
	ORDER BY c.created_at DESC, c.id`, string(status))
	if err != nil {
		return nil, oops.With("operation", "list campaigns").With("status", status).Wrap(err)
	}
	defer rows.Close()

	out := []models.CampaignStats{}
	for rows.Next() {
		stats, err := scanCampaignStats(rows)
		if err != nil {
			return nil, oops.With("operation", "scan campaign").Wrap(err)
		}
		out = append(out, *stats)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate campaigns").Wrap(err)
	}
	return out, nil
}

func (s *PostgresStore) GetCampaign(ctx context.Context, id domain.CampaignID) (*models.CampaignStats, error) {
	row := txcontext.Q(ctx, s.db).QueryRow(ctx,
		campaignStatsSelect+`
	WHERE c.id = $1
	GROUP BY c.id`, id.String())
	stats, err := scanCampaignStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, oops.With("operation", "get campaign").With("campaign_id", id.String()).Wrap(err)
	}
	return stats, nil
}

func (s *PostgresStore) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO campaigns (id, name, status, due_date, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID.String(), c.Name, string(c.Status), c.DueDate, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return oops.With("operation", "create campaign").With("campaign_id", c.ID.String()).Wrap(err)
	}
	return nil
}

func (s *PostgresStore) UpdateCampaignStatus(ctx context.Context, id domain.CampaignID, status models.CampaignStatus, at time.Time) (*models.Campaign, error) {
	row := txcontext.Q(ctx, s.db).QueryRow(ctx,
		`UPDATE campaigns SET status = $2, updated_at = $3 WHERE id = $1
		 RETURNING id, name, status, due_date, created_at, updated_at`,
		id.String(), string(status), at)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, oops.With("operation", "update campaign status").With("campaign_id", id.String()).Wrap(err)
	}
	return c, nil
}

// DeleteCampaign relies on ON DELETE CASCADE to remove decisions.
func (s *PostgresStore) DeleteCampaign(ctx context.Context, id domain.CampaignID) error {
	tag, err := txcontext.Q(ctx, s.db).Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete campaign").With("campaign_id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error) {
	rows, err := txcontext.Q(ctx, s.db).Query(ctx,
		decisionSelect+`
	WHERE d.campaign_id = $1
	ORDER BY d.created_at, d.id`, campaignID.String())
	if err != nil {
		return nil, oops.With("operation", "list decisions").With("campaign_id", campaignID.String()).Wrap(err)
	}
	defer rows.Close()

	out := []models.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, oops.With("operation", "scan decision").Wrap(err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate decisions").Wrap(err)
	}
	return out, nil
}

func (s *PostgresStore) GetDecision(ctx context.Context, id domain.DecisionID) (*models.Decision, error) {
	row := txcontext.Q(ctx, s.db).QueryRow(ctx, decisionSelect+`
	WHERE d.id = $1`, id.String())
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, oops.With("operation", "get decision").With("decision_id", id.String()).Wrap(err)
	}
	return d, nil
}

// RecordDecision is a single-row update; concurrent writers are last-write-wins.
func (s *PostgresStore) RecordDecision(ctx context.Context, id domain.DecisionID, state models.DecisionState, deciderID string, rationale *string, at time.Time) (*models.Decision, error) {
	tag, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`UPDATE access_decisions SET decision = $2, decided_by = $3, decided_at = $4, rationale = $5 WHERE id = $1`,
		id.String(), string(state), deciderID, at, rationale)
	if err != nil {
		return nil, oops.With("operation", "record decision").With("decision_id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.GetDecision(ctx, id)
}

// BulkInsertPending skips pairs already present in the campaign and returns
// the number of rows actually inserted.
func (s *PostgresStore) BulkInsertPending(ctx context.Context, campaignID domain.CampaignID, pairs []models.AccessPair, at time.Time) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	users := make([]string, len(pairs))
	apps := make([]string, len(pairs))
	for i, p := range pairs {
		users[i] = p.UserID.String()
		apps[i] = p.ApplicationID.String()
	}

	tag, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO access_decisions (campaign_id, user_id, application_id, decision, created_at)
		 SELECT $1::uuid, p.user_id::uuid, p.application_id::uuid, 'pending', $4
		 FROM unnest($2::text[], $3::text[]) AS p(user_id, application_id)
		 ON CONFLICT (campaign_id, user_id, application_id) DO NOTHING`,
		campaignID.String(), users, apps, at)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, sentinel.ErrNotFound
		}
		return 0, oops.With("operation", "bulk insert pending decisions").
			With("campaign_id", campaignID.String()).
			With("pairs", len(pairs)).
			Wrap(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var (
		rawID   string
		c       models.Campaign
		status  string
		dueDate pgtype.Timestamptz
	)
	if err := row.Scan(&rawID, &c.Name, &status, &dueDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return fillCampaign(&c, rawID, status, dueDate)
}

func scanCampaignStats(row pgx.Row) (*models.CampaignStats, error) {
	var (
		rawID            string
		c                models.Campaign
		status           string
		dueDate          pgtype.Timestamptz
		total, completed int64
	)
	if err := row.Scan(&rawID, &c.Name, &status, &dueDate, &c.CreatedAt, &c.UpdatedAt, &total, &completed); err != nil {
		return nil, err
	}
	if _, err := fillCampaign(&c, rawID, status, dueDate); err != nil {
		return nil, err
	}
	stats := models.NewCampaignStats(c, int(total), int(completed))
	return &stats, nil
}

func fillCampaign(c *models.Campaign, rawID, status string, dueDate pgtype.Timestamptz) (*models.Campaign, error) {
	id, err := domain.ParseCampaignID(rawID)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.Status = models.CampaignStatus(status)
	if dueDate.Valid {
		t := dueDate.Time
		c.DueDate = &t
	}
	return c, nil
}

func scanDecision(row pgx.Row) (*models.Decision, error) {
	var (
		id, campaignID, userID, appID string
		state                         string
		decidedBy, rationale          pgtype.Text
		decidedAt                     pgtype.Timestamptz
		d                             models.Decision
		user                          models.UserSnapshot
		app                           models.ApplicationSnapshot
	)
	if err := row.Scan(&id, &campaignID, &userID, &appID, &state,
		&decidedBy, &decidedAt, &rationale, &d.CreatedAt,
		&user.Email, &user.Name, &app.Name, &app.Category); err != nil {
		return nil, err
	}

	var err error
	if d.ID, err = domain.ParseDecisionID(id); err != nil {
		return nil, err
	}
	if d.CampaignID, err = domain.ParseCampaignID(campaignID); err != nil {
		return nil, err
	}
	if d.UserID, err = domain.ParseUserID(userID); err != nil {
		return nil, err
	}
	if d.ApplicationID, err = domain.ParseApplicationID(appID); err != nil {
		return nil, err
	}
	d.State = models.DecisionState(state)
	if decidedBy.Valid {
		d.DecidedBy = &decidedBy.String
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		d.DecidedAt = &t
	}
	if rationale.Valid {
		d.Rationale = &rationale.String
	}
	user.ID = d.UserID
	app.ID = d.ApplicationID
	d.User = &user
	d.Application = &app
	return &d, nil
}
