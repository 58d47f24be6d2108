package mapper

import (
	"sort"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// Session Mappers

func (m *SessionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	tags := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		tags = append(tags, t.Tag)
	}
	sort.Strings(tags)

	participants := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		participants = append(participants, p.ParticipantId)
	}
	sort.Strings(participants)

	return &entity.Session{
		Id:                s.Id,
		StarterId:         s.StarterId,
		CounselorId:       s.CounselorId,
		InstituteId:       s.InstituteId,
		Status:            entity.SessionStatus(s.Status),
		IsAnonymous:       s.IsAnonymous,
		Severity:          entity.Severity(s.Severity),
		ProblemType:       s.ProblemType,
		IssueTags:         tags,
		CounselorPriority: entity.Priority(s.CounselorPriority),
		IsReported:        s.IsReported,
		ReviewState:       entity.ReviewState(s.ReviewState),
		Participants:      participants,
		TaggedAt:          s.TaggedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// SessionToModel maps the scalar columns only; tags and participants are
// written through their own repository calls.
func (m *SessionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	return &model.Session{
		Id:                s.Id,
		StarterId:         s.StarterId,
		CounselorId:       s.CounselorId,
		InstituteId:       s.InstituteId,
		Status:            string(s.Status),
		IsAnonymous:       s.IsAnonymous,
		Severity:          string(s.Severity),
		ProblemType:       s.ProblemType,
		CounselorPriority: string(s.CounselorPriority),
		IsReported:        s.IsReported,
		ReviewState:       string(s.ReviewState),
		TaggedAt:          s.TaggedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SessionMapper) SessionsToEntities(models []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(models))
	for i, s := range models {
		entities[i] = m.SessionToEntity(s)
	}
	return entities
}

// Message Mappers

func (m *SessionMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	return &entity.Message{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		IsRead:    msg.IsRead,
	}
}

func (m *SessionMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	return &model.Message{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		IsRead:    msg.IsRead,
	}
}

func (m *SessionMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
