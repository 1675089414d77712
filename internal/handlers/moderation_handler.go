package handlers

import (
	"errors"
	"strconv"

	"github.com/craftbazaar/moderation-engine/internal/dto"
	"github.com/craftbazaar/moderation-engine/internal/middleware"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	reports   *services.ReportService
	decisions *services.DecisionService
	appeals   *services.AppealService
	cases     *services.CaseService
}

func NewModerationHandler(reports *services.ReportService, decisions *services.DecisionService,
	appeals *services.AppealService, cases *services.CaseService) *ModerationHandler {
	return &ModerationHandler{
		reports:   reports,
		decisions: decisions,
		appeals:   appeals,
		cases:     cases,
	}
}

// CreateReport takes abuse reports from both authenticated accounts and
// anonymous visitors. Anonymous reporters must leave an email.
func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	in := services.CreateReportInput{
		Target:             req.Target.Ref(),
		ReporterEmail:      req.ReporterEmail,
		Reason:             req.Reason,
		IllegalCategory:    req.IllegalCategory,
		IllegalSubcategory: req.IllegalSubcategory,
		Location:           req.Location,
		Message:            req.Message,
		ListingVersionID:   req.ListingVersionID,
	}
	if actorID, err := middleware.GetActorID(c); err == nil {
		in.ReporterID = &actorID
	}

	report, err := h.reports.CreateReport(c.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrConfig) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrTargetNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// RecordDecision is the reviewer-tool entry point for adjudications,
// including overrides of earlier decisions.
func (h *ModerationHandler) RecordDecision(c *fiber.Ctx) error {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RecordDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	d, err := h.decisions.Record(c.Context(), services.RecordDecisionInput{
		Target:       req.Target.Ref(),
		Action:       models.ActionKind(req.Action),
		Notes:        req.Notes,
		CaseID:       req.CaseID,
		OverrideOfID: req.OverrideOfID,
		ReviewerID:   &actorID,
		PolicyIDs:    req.PolicyIDs,
		Metadata: models.DecisionMetadata{
			VersionIDs:   req.VersionIDs,
			DelayedUntil: req.DelayedUntil,
		},
	})
	if err != nil {
		if errors.Is(err, services.ErrConfig) || errors.Is(err, services.ErrDecisionNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record decision",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(d)
}

// ReleaseHold is the operator's second-level approval of a held decision.
func (h *ModerationHandler) ReleaseHold(c *fiber.Ctx) error {
	decisionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid decision ID",
		})
	}

	entry, err := h.decisions.ReleaseHold(decisionID)
	if err != nil {
		if errors.Is(err, services.ErrDecisionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to release hold",
		})
	}
	if entry == nil {
		// Already executed earlier; nothing to release.
		return c.JSON(fiber.Map{"message": "Decision already executed"})
	}

	return c.JSON(fiber.Map{"message": "Hold released", "activity": entry})
}

// ListHeld lists decisions waiting at the hold gate.
func (h *ModerationHandler) ListHeld(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	decisions, total, err := h.decisions.ListHeld(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch held decisions",
		})
	}

	return c.JSON(fiber.Map{
		"decisions": decisions,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCase returns a case with its reports and decision history.
func (h *ModerationHandler) GetCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid case ID",
		})
	}

	moderationCase, err := h.cases.Get(caseID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(moderationCase)
}

// Appeal files an appeal against a decision. Reporter appeals carry the
// originating report id; owner appeals authenticate via JWT, except for
// account bans where the banned owner cannot log in.
func (h *ModerationHandler) Appeal(c *fiber.Ctx) error {
	var req dto.AppealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	in := services.AppealInput{
		DecisionID: req.DecisionID,
		ReportID:   req.ReportID,
		AsReporter: req.ReportID != nil,
		Text:       req.Text,
	}
	if actorID, err := middleware.GetActorID(c); err == nil {
		in.ActorID = &actorID
	}

	appeal, err := h.appeals.Appeal(c.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrConfig) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrDecisionNotFound) || errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to file appeal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(appeal)
}
