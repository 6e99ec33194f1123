package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	"stackwise/internal/inventory/models"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/sentinel"
	txcontext "stackwise/pkg/platform/tx"
)

// PostgresStore reads the inventory tables.
type PostgresStore struct {
	db txcontext.Querier
}

// NewPostgres constructs a PostgreSQL-backed inventory store.
func NewPostgres(db txcontext.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user models.User) error {
	_, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`,
		user.ID.String(), user.Email, user.Name)
	if err != nil {
		return oops.With("operation", "upsert user").With("user_id", user.ID.String()).Wrap(err)
	}
	return nil
}

func (s *PostgresStore) UpsertApplication(ctx context.Context, app models.Application) error {
	_, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO applications (id, name, category, annual_cost) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category, annual_cost = EXCLUDED.annual_cost`,
		app.ID.String(), app.Name, app.Category, app.AnnualCost)
	if err != nil {
		return oops.With("operation", "upsert application").With("application_id", app.ID.String()).Wrap(err)
	}
	return nil
}

func (s *PostgresStore) AddGrant(ctx context.Context, grant models.Grant) error {
	grantedAt := grant.GrantedAt
	if grantedAt.IsZero() {
		grantedAt = time.Now().UTC()
	}
	_, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO access_grants (user_id, application_id, granted_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, application_id) DO NOTHING`,
		grant.UserID.String(), grant.ApplicationID.String(), grantedAt)
	if err != nil {
		return oops.With("operation", "add grant").Wrap(err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id domain.UserID) (*models.User, error) {
	row := txcontext.Q(ctx, s.db).QueryRow(ctx,
		`SELECT id, email, name FROM users WHERE id = $1`, id.String())
	var rawID string
	var user models.User
	if err := row.Scan(&rawID, &user.Email, &user.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, oops.With("operation", "get user").With("user_id", id.String()).Wrap(err)
	}
	user.ID = id
	return &user, nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	row := txcontext.Q(ctx, s.db).QueryRow(ctx,
		`SELECT id, name, category, annual_cost FROM applications WHERE id = $1`, id.String())
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, oops.With("operation", "get application").With("application_id", id.String()).Wrap(err)
	}
	return app, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := txcontext.Q(ctx, s.db).Query(ctx, `SELECT id, email, name FROM users ORDER BY email`)
	if err != nil {
		return nil, oops.With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var rawID string
		var user models.User
		if err := rows.Scan(&rawID, &user.Email, &user.Name); err != nil {
			return nil, oops.With("operation", "scan user").Wrap(err)
		}
		if user.ID, err = domain.ParseUserID(rawID); err != nil {
			return nil, oops.With("operation", "parse user id").Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

func (s *PostgresStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := txcontext.Q(ctx, s.db).Query(ctx,
		`SELECT id, name, category, annual_cost FROM applications ORDER BY lower(name)`)
	if err != nil {
		return nil, oops.With("operation", "list applications").Wrap(err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, oops.With("operation", "scan application").Wrap(err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate applications").Wrap(err)
	}
	return apps, nil
}

func (s *PostgresStore) ListGrants(ctx context.Context) ([]models.Grant, error) {
	rows, err := txcontext.Q(ctx, s.db).Query(ctx,
		`SELECT user_id, application_id, granted_at FROM access_grants ORDER BY granted_at, user_id, application_id`)
	if err != nil {
		return nil, oops.With("operation", "list grants").Wrap(err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		var userID, appID string
		var g models.Grant
		if err := rows.Scan(&userID, &appID, &g.GrantedAt); err != nil {
			return nil, oops.With("operation", "scan grant").Wrap(err)
		}
		if g.UserID, err = domain.ParseUserID(userID); err != nil {
			return nil, oops.With("operation", "parse grant user id").Wrap(err)
		}
		if g.ApplicationID, err = domain.ParseApplicationID(appID); err != nil {
			return nil, oops.With("operation", "parse grant application id").Wrap(err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate grants").Wrap(err)
	}
	return grants, nil
}

// scanApplication converts annual_cost from NUMERIC to float64. This is the
// only place monetary values leave their database representation.
func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		rawID string
		app   models.Application
		cost  pgtype.Numeric
	)
	if err := row.Scan(&rawID, &app.Name, &app.Category, &cost); err != nil {
		return nil, err
	}
	id, err := domain.ParseApplicationID(rawID)
	if err != nil {
		return nil, err
	}
	app.ID = id
	app.AnnualCost, err = NumericToFloat(cost)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// NumericToFloat returns 0 for NULL.
func NumericToFloat(n pgtype.Numeric) (float64, error) {
	if !n.Valid {
		return 0, nil
	}
	f, err := n.Float64Value()
	if err != nil {
		return 0, err
	}
	return f.Float64, nil
}
