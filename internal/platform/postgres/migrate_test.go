package postgres

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	closeSrc   error
	closeDB    error
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) { return f.closeSrc, f.closeDB }

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@host/db", MigrateURL("postgres://u:p@host/db"))
	assert.Equal(t, "pgx5://host/db?sslmode=disable", MigrateURL("postgresql://host/db?sslmode=disable"))
	assert.Equal(t, "pgx5://host/db", MigrateURL("pgx5://host/db"))
}

func TestMigratorUp(t *testing.T) {
	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Up())
	})
	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("syntax error")}}
		err := m.Up()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "syntax error")
	})
}

func TestMigratorVersion(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeMigrate{version: 1}}
	v, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestMigratorCloseJoinsErrors(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{closeSrc: errors.New("src"), closeDB: errors.New("db")}}
	err := m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src")
	assert.Contains(t, err.Error(), "db")
}

func TestEmbeddedMigrationsPaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
