package controller

import (
	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/serverutils"
	"confidential-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type sessionAccess int

const (
	// participantsOnly guards conversation content.
	participantsOnly sessionAccess = iota
	// participantsOrInstituteStaff also admits counselor and institute
	// accounts of the owning institute, for clinical review.
	participantsOrInstituteStaff
)

// authorizeSession loads the session for a verified caller and rejects
// callers outside it. Unverified requests pass with a nil session.
func authorizeSession(ctx *fiber.Ctx, sessions service.ISessionService, sessionId uuid.UUID, access sessionAccess) (*entity.Session, error) {
	id, ok := serverutils.CurrentIdentity(ctx)
	if !ok {
		return nil, nil
	}

	session, err := sessions.GetSession(ctx.Context(), sessionId)
	if err != nil {
		return nil, err
	}
	if session.HasParticipant(id.ParticipantId) {
		return session, nil
	}

	if access == participantsOrInstituteStaff &&
		(id.Role == serverutils.RoleCounselor || id.Role == serverutils.RoleInstitute) &&
		id.InstituteId != "" && id.InstituteId == session.InstituteId {
		return session, nil
	}
	return nil, fiber.NewError(fiber.StatusForbidden, "Not a participant of this session")
}
