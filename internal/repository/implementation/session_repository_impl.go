package implementation

import (
	"context"
	"errors"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/mapper"
	"confidential-chat-be/internal/model"
	"confidential-chat-be/internal/repository/contract"
	"confidential-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// CreateIfAbsent relies on the partial unique index over active pairs;
// a losing concurrent insert affects zero rows instead of failing.
func (r *SessionRepositoryImpl) CreateIfAbsent(ctx context.Context, session *entity.Session) (bool, error) {
	m := r.mapper.SessionToModel(session)
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SessionsToEntities(models), nil
}

func (r *SessionRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *SessionRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND updated_at < ?", id, at).
		Update("updated_at", at).Error
}

func (r *SessionRepositoryImpl) ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("session_id = ?", id).Delete(&model.SessionTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}

	rows := make([]model.SessionTag, len(tags))
	for i, t := range tags {
		rows[i] = model.SessionTag{SessionId: id, Tag: t}
	}
	return db.Create(&rows).Error
}

func (r *SessionRepositoryImpl) AddParticipant(ctx context.Context, id uuid.UUID, participantId string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SessionParticipant{SessionId: id, ParticipantId: participantId}).Error
}

func (r *SessionRepositoryImpl) FindExpiredIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.Session{}),
		specification.ExpiredAt{Cutoff: cutoff},
		specification.OrderBy{Field: "updated_at"},
		specification.Limit{Limit: limit},
	)
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteCascade removes the sessions with their messages, tags and
// participants. Children are deleted explicitly so the purge does not depend
// on the driver enforcing foreign keys.
func (r *SessionRepositoryImpl) DeleteCascade(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)

	children := []interface{}{&model.Message{}, &model.SessionTag{}, &model.SessionParticipant{}}
	for _, child := range children {
		if err := db.Where("session_id IN ?", ids).Delete(child).Error; err != nil {
			return 0, err
		}
	}

	res := db.Where("id IN ?", ids).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
