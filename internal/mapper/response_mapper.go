package mapper

import (
	"confidential-chat-be/internal/dto"
	"confidential-chat-be/internal/entity"
)

// Response Mappers

func SessionToResponse(s *entity.Session) dto.SessionResponse {
	tags := s.IssueTags
	if tags == nil {
		tags = []string{}
	}
	participants := s.Participants
	if participants == nil {
		participants = []string{}
	}

	return dto.SessionResponse{
		Id:                s.Id,
		StarterId:         s.StarterId,
		CounselorId:       s.CounselorId,
		InstituteId:       s.InstituteId,
		Status:            string(s.Status),
		IsAnonymous:       s.IsAnonymous,
		Severity:          string(s.Severity),
		ProblemType:       s.ProblemType,
		IssueTags:         tags,
		CounselorPriority: string(s.CounselorPriority),
		IsReported:        s.IsReported,
		ReviewState:       string(s.ReviewState),
		Participants:      participants,
		TaggedAt:          s.TaggedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func SessionsToResponse(sessions []*entity.Session) []dto.SessionResponse {
	out := make([]dto.SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = SessionToResponse(s)
	}
	return out
}

func MessageToResponse(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		SessionId: m.SessionId,
		SenderId:  m.SenderId,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		IsRead:    m.IsRead,
	}
}

func MessagesToResponse(messages []*entity.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = MessageToResponse(m)
	}
	return out
}

func WellnessToResponse(report []entity.WellnessTag) []dto.WellnessTagResponse {
	out := make([]dto.WellnessTagResponse, len(report))
	for i, tag := range report {
		priorities := make([]dto.PriorityCountResponse, len(tag.Priorities))
		for j, p := range tag.Priorities {
			priorities[j] = dto.PriorityCountResponse{Priority: string(p.Priority), Count: p.Count}
		}
		out[i] = dto.WellnessTagResponse{
			IssueTag:      tag.IssueTag,
			TotalSessions: tag.TotalSessions,
			Priorities:    priorities,
		}
	}
	return out
}
