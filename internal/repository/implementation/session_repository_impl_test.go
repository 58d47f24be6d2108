package implementation

import (
	"context"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/model"
	"confidential-chat-be/internal/repository/specification"
	"confidential-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemorySQLite("repo_" + uuid.NewString())
	require.NoError(t, err)
	_, err = database.Migrate(db)
	require.NoError(t, err)
	return db
}

func countPair(t *testing.T, db *gorm.DB, starterId, counselorId string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Session{}).
		Where("starter_id = ? AND counselor_id = ?", starterId, counselorId).
		Count(&n).Error)
	return n
}

func TestCreateIfAbsentKeepsOneActiveSessionPerPair(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := entity.NewSession("1BI21CS001", "PSYCH-1001", "INST-1", now)
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := entity.NewSession("1BI21CS001", "PSYCH-1001", "INST-1", now.Add(time.Second))
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), countPair(t, db, "1BI21CS001", "PSYCH-1001"))

	winner, err := repo.FindOne(ctx,
		specification.ByPair{StarterId: "1BI21CS001", CounselorId: "PSYCH-1001"},
		specification.WithStatus{Status: string(entity.SessionStatusActive)},
	)
	require.NoError(t, err)
	assert.Equal(t, first.Id, winner.Id)

	// The index only covers active rows: a closed pair can start over.
	_, err = repo.UpdateFields(ctx, first.Id, map[string]interface{}{"status": string(entity.SessionStatusClosed)})
	require.NoError(t, err)

	third := entity.NewSession("1BI21CS001", "PSYCH-1001", "INST-1", now.Add(2*time.Second))
	created, err = repo.CreateIfAbsent(ctx, third)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), countPair(t, db, "1BI21CS001", "PSYCH-1001"))
}

func TestTouchNeverMovesBackwards(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s := entity.NewSession("1BI21CS001", "PSYCH-1001", "INST-1", now)
	_, err := repo.CreateIfAbsent(ctx, s)
	require.NoError(t, err)

	require.NoError(t, repo.Touch(ctx, s.Id, now.Add(-time.Hour)))
	got, err := repo.FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now))

	require.NoError(t, repo.Touch(ctx, s.Id, now.Add(time.Minute)))
	got, err = repo.FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Minute)))
}
