package database

import (
	"testing"

	"confidential-chat-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := NewInMemorySQLite("migrate_" + uuid.NewString())
	require.NoError(t, err)

	ran, err := Migrate(db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ran)

	ran, err = Migrate(db)
	require.NoError(t, err)
	assert.Empty(t, ran)

	var count int64
	require.NoError(t, db.Model(&model.SchemaMigration{}).Count(&count).Error)
	assert.Equal(t, int64(LatestVersion()), count)

	for _, table := range []string{"sessions", "messages", "session_tags", "session_participants"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", 0)
	assert.Error(t, err)
}
