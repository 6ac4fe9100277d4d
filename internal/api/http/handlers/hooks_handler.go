package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/api/dto"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/events"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-engine/pkg/util"
)

// HooksHandler receives document-event callbacks: message-created triggers
// and out-of-band action event completions.
type HooksHandler struct {
	dispatcher events.Dispatcher
	actions    repository.ActionRepository
	logger     *zap.Logger
}

// NewHooksHandler constructs handler.
func NewHooksHandler(dispatcher events.Dispatcher, actions repository.ActionRepository, logger *zap.Logger) *HooksHandler {
	return &HooksHandler{dispatcher: dispatcher, actions: actions, logger: logger}
}

// MessageCreated POST /v1/hooks/messages/:uid/:companyId/:ticketId/:messageId.
//
// Fires the automation pipeline for a message document that is already in
// the store. Responds 202 immediately; the pipeline runs detached.
func (h *HooksHandler) MessageCreated(c *fiber.Ctx) error {
	var req dto.MessageEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	uid := c.Params("uid")
	companyID := c.Params("companyId")
	ticketID := c.Params("ticketId")
	if uid == "" || companyID == "" || ticketID == "" {
		return apperrors.NewValidationError("uid, companyId, ticketId required", nil)
	}

	msg := domain.Message{
		TicketID:    ticketID,
		Type:        domain.MessageType(req.Type),
		Body:        req.Body,
		HTML:        req.HTML,
		FromEmail:   req.From,
		MessageID:   c.Params("messageId"),
		InReplyTo:   req.InReplyTo,
		References:  req.References,
		Date:        parseEmailDate(req.Date),
		Attachments: req.Attachments,
	}
	if msg.MessageID == "" {
		msg.MessageID = req.MessageID
	}

	h.dispatcher.PublishAsync(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageReceived,
		Timestamp: time.Now(),
		Payload: events.MessageReceivedPayload{
			AccountID: uid,
			CompanyID: companyID,
			TicketID:  ticketID,
			IsNew:     msg.IsNewThread(),
			Message:   msg,
		},
	})

	return c.SendStatus(fiber.StatusAccepted)
}

// CompleteActionEvent POST /v1/hooks/action-events/:id.
//
// Out-of-band terminal-state write for an action audit record. Pending
// events move to done or error exactly once; regressions are rejected.
func (h *HooksHandler) CompleteActionEvent(c *fiber.Ctx) error {
	var req dto.CompleteActionEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	status := domain.ActionEventStatus(req.Status)
	if !status.Terminal() {
		return apperrors.NewValidationError("status must be done or error", map[string]any{"status": req.Status})
	}

	if err := h.actions.CompleteEvent(c.UserContext(), c.Params("id"), status, time.Now()); err != nil {
		return err
	}

	h.logger.Info("action event completed",
		zap.String("event_id", c.Params("id")),
		zap.String("status", string(status)))
	return c.JSON(fiber.Map{"data": fiber.Map{"status": status}})
}
