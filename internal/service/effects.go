package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/config"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/observability"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
)

// notificationPreviewLen caps the push notification body.
const notificationPreviewLen = 100

// EffectInput bundles everything the sequencer needs for one inbound
// message.
type EffectInput struct {
	AccountID     string
	CompanyID     string
	Ticket        *domain.Ticket
	Knowledgebase *domain.Knowledgebase
	Inbound       domain.Message
	History       []clients.Turn
	Decision      Decision
}

// EffectSequencer runs the per-message side effects: push notification, AI
// generation and delivery. Each effect is individually recovered and
// logged; one failure never blocks a sibling effect.
type EffectSequencer struct {
	tickets repository.TicketRepository
	devices repository.DeviceTokenRepository
	push    clients.PushClient
	ai      clients.AIClient
	mailer  clients.MailerClient
	cfg     config.AutomationConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// EffectDependencies bundles collaborators for the sequencer.
type EffectDependencies struct {
	TicketRepo repository.TicketRepository
	DeviceRepo repository.DeviceTokenRepository
	Push       clients.PushClient
	AI         clients.AIClient
	Mailer     clients.MailerClient
	Metrics    *observability.Metrics
}

// NewEffectSequencer constructs the sequencer.
func NewEffectSequencer(deps EffectDependencies, cfg config.AutomationConfig, logger *zap.Logger) *EffectSequencer {
	return &EffectSequencer{
		tickets: deps.TicketRepo,
		devices: deps.DeviceRepo,
		push:    deps.Push,
		ai:      deps.AI,
		mailer:  deps.Mailer,
		cfg:     cfg,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// Run executes the effect pipeline and returns the AI content when a
// response was generated, empty otherwise.
func (s *EffectSequencer) Run(ctx context.Context, in EffectInput) string {
	if in.Decision.Notify {
		if err := s.notify(ctx, in); err != nil {
			s.logger.Warn("notification effect failed",
				zap.String("ticket_id", in.Ticket.ID),
				zap.Error(err))
			s.metrics.RecordEffect("notification", false)
		} else {
			s.metrics.RecordEffect("notification", true)
		}
	}

	if !in.Decision.RunLegacyAI {
		return ""
	}

	content, err := s.generate(ctx, in)
	if err != nil {
		s.logger.Warn("ai generation failed",
			zap.String("ticket_id", in.Ticket.ID),
			zap.Error(err))
		s.metrics.RecordEffect("ai_generate", false)
		return ""
	}
	if content == "" {
		// An empty response is "no action", not an error.
		s.logger.Info("ai responder produced no content",
			zap.String("ticket_id", in.Ticket.ID))
		return ""
	}
	s.metrics.RecordEffect("ai_generate", true)

	switch in.Decision.AIMode {
	case AIModeReply:
		if err := s.sendReply(ctx, in, content); err != nil {
			s.logger.Warn("ai reply email failed",
				zap.String("ticket_id", in.Ticket.ID),
				zap.Error(err))
			s.metrics.RecordEffect("email", false)
		} else {
			s.metrics.RecordEffect("email", true)
		}
	case AIModeSuggest:
		if err := s.tickets.SaveAISuggestion(ctx, in.Ticket.ID, content, time.Now()); err != nil {
			s.logger.Warn("storing ai suggestion failed",
				zap.String("ticket_id", in.Ticket.ID),
				zap.Error(err))
			s.metrics.RecordEffect("suggestion", false)
		} else {
			s.metrics.RecordEffect("suggestion", true)
		}
	}

	return content
}

func (s *EffectSequencer) notify(ctx context.Context, in EffectInput) error {
	tokens, err := s.devices.ListTokens(ctx, in.AccountID)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	delivered, err := s.push.SendMulticast(ctx, tokens, clients.Notification{
		Title: in.Ticket.Subject,
		Body:  preview(in.Inbound.Content(), notificationPreviewLen),
		Data: map[string]string{
			"ticketId": in.Ticket.ID,
		},
	})
	if errors.Is(err, clients.ErrPushDisabled) {
		// Unconfigured push is a clean skip, not a delivery failure.
		return nil
	}
	if err != nil {
		return err
	}
	if delivered == 0 {
		return fmt.Errorf("no device accepted the notification")
	}
	return nil
}

func (s *EffectSequencer) generate(ctx context.Context, in EffectInput) (string, error) {
	return s.ai.Generate(ctx, clients.GenerateRequest{
		UID:         in.AccountID,
		CompanyID:   in.CompanyID,
		Employee:    s.cfg.EmployeeID,
		Messages:    in.History,
		Temperature: s.cfg.Temperature,
		Context: map[string]any{
			"ticketId": in.Ticket.ID,
			"customer": customerIdentity(in.Inbound.FromEmail),
		},
	})
}

func (s *EffectSequencer) sendReply(ctx context.Context, in EffectInput, content string) error {
	from := in.Knowledgebase.Subdomain + "@" + s.cfg.MailDomain
	subject := in.Ticket.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	_, err := s.mailer.SendReply(ctx, clients.SendReplyRequest{
		UID:             in.AccountID,
		SelectedCompany: in.CompanyID,
		TicketID:        in.Ticket.ID,
		From:            from,
		To:              in.Inbound.FromEmail,
		Subject:         subject,
		Message:         content,
		ReplyToID:       in.Inbound.MessageID,
		References:      in.Inbound.References,
		FileURLs:        nil,
	})
	return err
}

// customerIdentity derives a display identity by truncating the email at
// its domain separator.
func customerIdentity(email string) string {
	if local, _, found := strings.Cut(email, "@"); found {
		return local
	}
	return email
}

func preview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}
