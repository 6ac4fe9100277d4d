package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
)

// ErrNoMatchingThread is returned when a reply references a message id that
// no stored message carries. The caller decides the fallback; the resolver
// never creates an orphan ticket for it.
var ErrNoMatchingThread = errors.New("no matching message found for reference")

// InboundEmail is a parsed inbound email before it is attached to a ticket.
type InboundEmail struct {
	Subject     string
	From        string
	Body        string
	HTML        string
	MessageID   string
	InReplyTo   string
	References  string
	Date        time.Time
	Attachments []string
}

// Resolution reports where an inbound email landed.
type Resolution struct {
	Ticket  *domain.Ticket
	Message domain.Message
	IsNew   bool
}

// TicketResolver attaches inbound emails to the right ticket thread:
// messages without a reply reference start a new ticket, everything else
// is matched to an existing thread through the message-id index.
type TicketResolver struct {
	tickets repository.TicketRepository
	mailer  clients.MailerClient
	logger  *zap.Logger
}

// NewTicketResolver constructs the resolver.
func NewTicketResolver(tickets repository.TicketRepository, mailer clients.MailerClient, logger *zap.Logger) *TicketResolver {
	return &TicketResolver{tickets: tickets, mailer: mailer, logger: logger}
}

// Resolve finds or creates the ticket for an inbound email and appends the
// message to it.
func (r *TicketResolver) Resolve(ctx context.Context, accountID, companyID string, in InboundEmail) (*Resolution, error) {
	msg := messageFromInbound(in)

	if msg.IsNewThread() {
		return r.createTicket(ctx, accountID, companyID, in, msg)
	}
	return r.appendToThread(ctx, accountID, companyID, msg)
}

func (r *TicketResolver) createTicket(ctx context.Context, accountID, companyID string, in InboundEmail, msg domain.Message) (*Resolution, error) {
	ticket := &domain.Ticket{
		AccountID:       accountID,
		CompanyID:       companyID,
		Subject:         in.Subject,
		FromEmail:       in.From,
		Status:          domain.TicketStatusOpen,
		LastMessage:     msg.Content(),
		LastMessageDate: msg.Date,
		Read:            false,
	}

	if err := r.tickets.CreateWithMessage(ctx, ticket, &msg); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	// Confirmation email is best effort; a mailer outage must not undo the
	// ticket.
	if err := r.mailer.SendConfirmation(ctx, clients.ConfirmationRequest{
		UID:             accountID,
		SelectedCompany: companyID,
		TicketID:        ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		To:              in.From,
		Subject:         in.Subject,
	}); err != nil {
		r.logger.Warn("confirmation email failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}

	return &Resolution{Ticket: ticket, Message: msg, IsNew: true}, nil
}

func (r *TicketResolver) appendToThread(ctx context.Context, accountID, companyID string, msg domain.Message) (*Resolution, error) {
	ticketID, err := r.tickets.FindTicketIDByMessageID(ctx, accountID, companyID, msg.InReplyTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMatchingThread
		}
		return nil, fmt.Errorf("lookup thread: %w", err)
	}

	if err := r.tickets.AppendReply(ctx, ticketID, &msg); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}

	ticket, err := r.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}

	return &Resolution{Ticket: ticket, Message: msg, IsNew: false}, nil
}

func messageFromInbound(in InboundEmail) domain.Message {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	return domain.Message{
		Type:        domain.MessageTypeReceiver,
		Body:        in.Body,
		HTML:        in.HTML,
		FromEmail:   in.From,
		MessageID:   in.MessageID,
		InReplyTo:   in.InReplyTo,
		References:  in.References,
		Date:        date,
		Attachments: in.Attachments,
	}
}
