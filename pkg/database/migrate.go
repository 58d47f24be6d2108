package database

import (
	"fmt"
	"time"

	"confidential-chat-be/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// migrations run in order, once each. Index maintenance lives here and
// nowhere else; request handlers never touch the schema.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create chat tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&model.Session{},
				&model.SessionTag{},
				&model.SessionParticipant{},
				&model.Message{},
			)
		},
	},
	{
		Version: 2,
		Name:    "unique active session per pair",
		Up: func(tx *gorm.DB) error {
			return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_sessions_active_pair
				ON sessions (starter_id, counselor_id) WHERE status = 'active'`).Error
		},
	},
}

// Migrate brings the schema to the latest version. It is idempotent and is
// called once at process startup or from the operator CLI.
func Migrate(db *gorm.DB) ([]int, error) {
	if err := db.AutoMigrate(&model.SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []int
	if err := db.Model(&model.SchemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []int
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		ran = append(ran, m.Version)
	}

	return ran, nil
}

func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}
