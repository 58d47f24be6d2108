package wellness

import (
	"context"
	"sort"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/repository/unitofwork"
)

// Aggregator builds the anonymized tag x priority report of an institute.
type Aggregator struct {
	logger logger.ILogger
}

func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// GetWellness runs the pipeline over the alive sessions of the institute.
func (a *Aggregator) GetWellness(ctx context.Context, uow unitofwork.UnitOfWork, instituteId string, aliveAfter time.Time) ([]entity.WellnessTag, error) {
	rows, err := uow.WellnessRepository().CountByTagAndPriority(ctx, instituteId, aliveAfter)
	if err != nil {
		return nil, err
	}

	report := Regroup(rows)
	a.logger.Debug("WELLNESS", "Aggregated wellness data", map[string]interface{}{
		"institute_id": instituteId,
		"tags":         len(report),
	})
	return report, nil
}

// Regroup folds (tag, priority) counts into one entry per tag. The output
// order is fixed so a given snapshot always renders the same bytes: tags by
// total sessions descending then name, priorities by count descending then
// urgency.
func Regroup(rows []entity.TagPriorityCount) []entity.WellnessTag {
	byTag := make(map[string]*entity.WellnessTag)
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		tag, ok := byTag[row.IssueTag]
		if !ok {
			tag = &entity.WellnessTag{IssueTag: row.IssueTag, Priorities: []entity.PriorityCount{}}
			byTag[row.IssueTag] = tag
		}
		tag.TotalSessions += row.Count
		tag.Priorities = mergePriority(tag.Priorities, row.Priority, row.Count)
	}

	out := make([]entity.WellnessTag, 0, len(byTag))
	for _, tag := range byTag {
		sort.Slice(tag.Priorities, func(i, j int) bool {
			pi, pj := tag.Priorities[i], tag.Priorities[j]
			if pi.Count != pj.Count {
				return pi.Count > pj.Count
			}
			if pi.Priority.Rank() != pj.Priority.Rank() {
				return pi.Priority.Rank() > pj.Priority.Rank()
			}
			return pi.Priority < pj.Priority
		})
		out = append(out, *tag)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSessions != out[j].TotalSessions {
			return out[i].TotalSessions > out[j].TotalSessions
		}
		return out[i].IssueTag < out[j].IssueTag
	})
	return out
}

func mergePriority(list []entity.PriorityCount, p entity.Priority, count int) []entity.PriorityCount {
	for i := range list {
		if list[i].Priority == p {
			list[i].Count += count
			return list
		}
	}
	return append(list, entity.PriorityCount{Priority: p, Count: count})
}
