package controller

import (
	"strings"

	"confidential-chat-be/internal/dto"
	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/mapper"
	"confidential-chat-be/internal/pkg/serverutils"
	"confidential-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInstituteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	TagSession(ctx *fiber.Ctx) error
	GetWellnessData(ctx *fiber.Ctx) error
}

type instituteController struct {
	sessions service.ISessionService
	clinical service.IClinicalService
	wellness service.IWellnessService
}

func NewInstituteController(
	sessions service.ISessionService,
	clinical service.IClinicalService,
	wellness service.IWellnessService,
) IInstituteController {
	return &instituteController{
		sessions: sessions,
		clinical: clinical,
		wellness: wellness,
	}
}

func (c *instituteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/institute")
	h.Use(auth)
	h.Use(serverutils.RequireRole(serverutils.RoleCounselor, serverutils.RoleInstitute))
	h.Post("/tag-session", c.TagSession)
	h.Get("/wellness-data", c.GetWellnessData)
}

func (c *instituteController) TagSession(ctx *fiber.Ctx) error {
	var req dto.InstituteTagSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	// A counselor tags in their own name; an institute account tags for one.
	if id, ok := serverutils.CurrentIdentity(ctx); ok && id.Role == serverutils.RoleCounselor {
		if err := serverutils.ActingAs(ctx, req.CounselorId); err != nil {
			return err
		}
	}
	sessionId := uuid.MustParse(req.SessionId)
	if _, err := authorizeSession(ctx, c.sessions, sessionId, participantsOrInstituteStaff); err != nil {
		return err
	}

	session, err := c.clinical.Tag(ctx.Context(), entity.ClinicalTag{
		SessionId:   sessionId,
		IssueTags:   req.IssueTags,
		CounselorId: req.CounselorId,
		Priority:    entity.Priority(req.Priority),
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session successfully tagged", mapper.SessionToResponse(session)))
}

// GetWellnessData serves the anonymized tag x priority report. A verified
// institute account only sees its own institute.
func (c *instituteController) GetWellnessData(ctx *fiber.Ctx) error {
	instituteId := strings.TrimSpace(ctx.Query("id"))
	if id, ok := serverutils.CurrentIdentity(ctx); ok && id.Role == serverutils.RoleInstitute {
		if instituteId == "" {
			instituteId = id.InstituteId
		}
		if instituteId != id.InstituteId {
			return fiber.NewError(fiber.StatusForbidden, "Cannot read another institute")
		}
	}

	report, err := c.wellness.Aggregate(ctx.Context(), instituteId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get wellness data", mapper.WellnessToResponse(report)))
}
