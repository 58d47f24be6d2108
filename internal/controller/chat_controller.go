package controller

import (
	"strings"

	"confidential-chat-be/internal/dto"
	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/mapper"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/pkg/serverutils"
	"confidential-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	CreateSession(ctx *fiber.Ctx) error
	UpdateSession(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	GetInbox(ctx *fiber.Ctx) error
	TagSession(ctx *fiber.Ctx) error
}

type chatController struct {
	sessions service.ISessionService
	clinical service.IClinicalService
	messages service.IMessageService
	inbox    service.IInboxService
}

func NewChatController(
	sessions service.ISessionService,
	clinical service.IClinicalService,
	messages service.IMessageService,
	inbox service.IInboxService,
) IChatController {
	return &chatController{
		sessions: sessions,
		clinical: clinical,
		messages: messages,
		inbox:    inbox,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat")
	h.Use(auth)
	h.Post("/session", serverutils.RequireRole(serverutils.RoleStudent, serverutils.RoleStaff), c.CreateSession)
	h.Post("/session/update", serverutils.RequireRole(serverutils.RoleCounselor, serverutils.RoleInstitute), c.UpdateSession)
	h.Post("/session/close", c.CloseSession)
	h.Post("/send-message", c.SendMessage)
	h.Get("/messages", c.GetMessages)
	h.Post("/messages/read", c.MarkRead)
	h.Get("/inbox", c.GetInbox)
	h.Post("/tag-session", serverutils.RequireRole(serverutils.RoleCounselor, serverutils.RoleInstitute), c.TagSession)
}

// parseBody decodes and validates a request DTO.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ActingAs(ctx, req.StarterId); err != nil {
		return err
	}

	instituteId := req.InstituteId
	if id, ok := serverutils.CurrentIdentity(ctx); ok && strings.TrimSpace(instituteId) == "" {
		instituteId = id.InstituteId
	}

	session, err := c.sessions.CreateOrGetSession(ctx.Context(), req.StarterId, req.CounselorId, instituteId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success open session", mapper.SessionToResponse(session)))
}

func (c *chatController) UpdateSession(ctx *fiber.Ctx) error {
	var req dto.UpdateSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOrInstituteStaff); err != nil {
		return err
	}

	patch := entity.SessionPatch{}
	if req.Severity.Set {
		if req.Severity.Null {
			return apperror.Validation("severity cannot be null")
		}
		patch.Severity = entity.Some(entity.Severity(req.Severity.Value))
	}
	if req.ProblemType.Set {
		if req.ProblemType.Null {
			patch.ProblemType = entity.Some[*string](nil)
		} else {
			v := req.ProblemType.Value
			patch.ProblemType = entity.Some(&v)
		}
	}
	if req.IsReported.Set {
		if req.IsReported.Null {
			return apperror.Validation("isReported cannot be null")
		}
		patch.IsReported = entity.Some(req.IsReported.Value)
	}

	session, err := c.clinical.UpdateClinicalState(ctx.Context(), sessionId, patch)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update session", mapper.SessionToResponse(session)))
}

func (c *chatController) CloseSession(ctx *fiber.Ctx) error {
	var req dto.CloseSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOnly); err != nil {
		return err
	}

	session, err := c.sessions.CloseSession(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success close session", mapper.SessionToResponse(session)))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ActingAs(ctx, req.SenderId); err != nil {
		return err
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOnly); err != nil {
		return err
	}

	message, err := c.messages.Append(ctx.Context(), sessionId, req.SenderId, req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", mapper.MessageToResponse(message)))
}

// GetMessages answers pollers: a missing, malformed or expired session id
// reads as an empty thread.
func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	empty := serverutils.SuccessResponse("Success get messages", []dto.MessageResponse{})
	sessionId, err := uuid.Parse(strings.TrimSpace(ctx.Query("sessionId")))
	if err != nil {
		return ctx.JSON(empty)
	}
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOnly); err != nil {
		if apperror.IsNotFound(err) {
			return ctx.JSON(empty)
		}
		return err
	}

	messages, err := c.inbox.Thread(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", mapper.MessagesToResponse(messages)))
}

func (c *chatController) MarkRead(ctx *fiber.Ctx) error {
	var req dto.MarkReadRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ActingAs(ctx, req.ReaderId); err != nil {
		return err
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOnly); err != nil {
		return err
	}

	marked, err := c.messages.MarkRead(ctx.Context(), sessionId, req.ReaderId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success mark messages read", dto.MarkReadResponse{Marked: marked}))
}

func (c *chatController) GetInbox(ctx *fiber.Ctx) error {
	userId := ctx.Query("userId")
	if id, ok := serverutils.CurrentIdentity(ctx); ok && strings.TrimSpace(userId) == "" {
		userId = id.ParticipantId
	}
	if err := serverutils.ActingAs(ctx, userId); err != nil {
		return err
	}

	sessions, err := c.inbox.Inbox(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get inbox", mapper.SessionsToResponse(sessions)))
}

func (c *chatController) TagSession(ctx *fiber.Ctx) error {
	var req dto.ChatTagSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOrInstituteStaff); err != nil {
		return err
	}

	update := entity.TagUpdate{IssueTags: req.IssueTags}
	if req.Status != "" {
		update.Status = entity.Some(entity.SessionStatus(req.Status))
	}

	session, err := c.sessions.TagSession(ctx.Context(), sessionId, update)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success tag session", mapper.SessionToResponse(session)))
}
