package implementation

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type WellnessRepositoryImpl struct {
	db *gorm.DB
}

func NewWellnessRepository(db *gorm.DB) contract.WellnessRepository {
	return &WellnessRepositoryImpl{db: db}
}

type tagPriorityRow struct {
	IssueTag string
	Priority string
	Count    int
}

// CountByTagAndPriority performs the filter, expand and first grouping steps
// of the wellness pipeline. The inner join on session_tags drops untagged
// sessions and yields one row per (tag, session) pair.
func (r *WellnessRepositoryImpl) CountByTagAndPriority(ctx context.Context, instituteId string, aliveAfter time.Time) ([]entity.TagPriorityCount, error) {
	var rows []tagPriorityRow
	err := r.db.WithContext(ctx).
		Table("session_tags AS t").
		Select("t.tag AS issue_tag, s.counselor_priority AS priority, COUNT(*) AS count").
		Joins("JOIN sessions AS s ON s.id = t.session_id").
		Where("s.institute_id = ? AND s.updated_at >= ?", instituteId, aliveAfter).
		Group("t.tag, s.counselor_priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.TagPriorityCount, len(rows))
	for i, row := range rows {
		out[i] = entity.TagPriorityCount{
			IssueTag: row.IssueTag,
			Priority: entity.Priority(row.Priority),
			Count:    row.Count,
		}
	}
	return out, nil
}
