package handlers

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/api/dto"
	"github.com/spec-kit/helpdesk-engine/internal/events"
	"github.com/spec-kit/helpdesk-engine/internal/service"
)

const defaultCompany = "default"

// IntakeHandler receives parsed inbound emails, threads them and kicks off
// the automation pipeline.
type IntakeHandler struct {
	resolver   *service.TicketResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(resolver *service.TicketResolver, dispatcher events.Dispatcher, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{resolver: resolver, dispatcher: dispatcher, logger: logger}
}

// ReceiveEmail POST /v1/intake/email.
//
// The endpoint always answers with the intake contract {status, message,
// messageId?}: status 1 when the message was threaded, status 0 with a
// reason otherwise. It never surfaces a raw error to the mail frontend.
func (h *IntakeHandler) ReceiveEmail(c *fiber.Ctx) error {
	var req dto.IntakeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(dto.IntakeEmailResponse{Status: 0, Message: "invalid payload"})
	}
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.UID) == "" {
		return c.JSON(dto.IntakeEmailResponse{Status: 0, Message: "from and uid are required"})
	}

	company := req.SelectedCompany
	if company == "" {
		company = defaultCompany
	}
	messageID := req.MessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	inbound := service.InboundEmail{
		Subject:     req.Subject,
		From:        req.From,
		Body:        req.Body,
		HTML:        req.HTML,
		MessageID:   messageID,
		InReplyTo:   req.InReplyTo,
		References:  req.References,
		Date:        parseEmailDate(req.Date),
		Attachments: req.DownloadURLs,
	}

	resolution, err := h.resolver.Resolve(c.UserContext(), req.UID, company, inbound)
	if err != nil {
		if errors.Is(err, service.ErrNoMatchingThread) {
			return c.JSON(dto.IntakeEmailResponse{
				Status:  0,
				Message: "No matching message found for the supplied reference",
			})
		}
		h.logger.Error("email intake failed",
			zap.String("uid", req.UID),
			zap.Error(err))
		return c.JSON(dto.IntakeEmailResponse{Status: 0, Message: "message could not be processed"})
	}

	eventType := events.EventMessageReceived
	if resolution.IsNew {
		eventType = events.EventTicketCreated
	}
	h.dispatcher.PublishAsync(events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.MessageReceivedPayload{
			AccountID: req.UID,
			CompanyID: company,
			TicketID:  resolution.Ticket.ID,
			IsNew:     resolution.IsNew,
			Message:   resolution.Message,
		},
	})

	return c.JSON(dto.IntakeEmailResponse{
		Status:    1,
		Message:   "message processed",
		MessageID: resolution.Message.MessageID,
	})
}

func parseEmailDate(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	if parsed, err := mail.ParseDate(raw); err == nil {
		return parsed
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed
	}
	return time.Now()
}
