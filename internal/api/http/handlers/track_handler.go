package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/api/dto"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-engine/pkg/util"
)

// TrackHandler maintains the visit/session counters.
type TrackHandler struct {
	counter repository.VisitCounter
	logger  *zap.Logger
}

// NewTrackHandler constructs handler.
func NewTrackHandler(counter repository.VisitCounter, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{counter: counter, logger: logger}
}

// Visit POST /v1/track/visit.
func (h *TrackHandler) Visit(c *fiber.Ctx) error {
	var req dto.TrackVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UID == "" {
		return apperrors.NewValidationError("uid required", nil)
	}
	company := req.SelectedCompany
	if company == "" {
		company = defaultCompany
	}
	page := req.Page
	if page == "" {
		page = "home"
	}

	visits, err := h.counter.IncrementVisit(c.UserContext(), req.UID, company, page)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	newSession := false
	if req.SessionID != "" {
		newSession, err = h.counter.TrackSession(c.UserContext(), req.UID, company, req.SessionID, time.Now())
		if err != nil {
			// Session tracking is best effort next to the visit counter.
			h.logger.Warn("session tracking failed",
				zap.String("uid", req.UID),
				zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"data": dto.TrackVisitResponse{
		Visits:     visits,
		NewSession: newSession,
	}})
}
