package database

import (
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/000001_init.up.sql")
	assert.Contains(t, names, "migrations/000001_init.down.sql")

	src, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)
	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestInitMigrationDefinesAnswerUniqueness(t *testing.T) {
	up, err := fs.ReadFile(migrationFiles, "migrations/000001_init.up.sql")
	require.NoError(t, err)

	schema := string(up)
	assert.Contains(t, schema, "CONSTRAINT users_name_key UNIQUE (name)")
	assert.Contains(t, schema, "CONSTRAINT users_email_key UNIQUE (email)")
	assert.Contains(t, schema, "quiz_answers_quiz_user_uidx ON quiz_answers (quiz_id, user_id) WHERE user_id <> 0")
}
