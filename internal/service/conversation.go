package service

import (
	"context"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
)

// ConversationAssembler builds the ordered conversation history handed to
// the AI responder. History is recomputed fresh on each invocation.
type ConversationAssembler struct {
	messages repository.MessageRepository
}

// NewConversationAssembler constructs the assembler.
func NewConversationAssembler(messages repository.MessageRepository) *ConversationAssembler {
	return &ConversationAssembler{messages: messages}
}

// BuildHistory returns all messages of the ticket as conversation turns in
// non-decreasing date order.
func (a *ConversationAssembler) BuildHistory(ctx context.Context, ticketID string) ([]clients.Turn, error) {
	msgs, err := a.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	history := make([]clients.Turn, 0, len(msgs))
	for i := range msgs {
		history = append(history, turnFor(&msgs[i]))
	}
	return history, nil
}

// HistoryForInbound builds the history for the invocation triggered by the
// given inbound message. The just-arrived message is always the final user
// turn exactly once: the store read excludes it (the trigger may fire
// before it is visible in a re-read) and it is appended at the tail.
func (a *ConversationAssembler) HistoryForInbound(ctx context.Context, ticketID string, inbound *domain.Message) ([]clients.Turn, error) {
	msgs, err := a.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	history := make([]clients.Turn, 0, len(msgs)+1)
	for i := range msgs {
		if msgs[i].MessageID == inbound.MessageID {
			continue
		}
		history = append(history, turnFor(&msgs[i]))
	}
	return append(history, turnFor(inbound)), nil
}

func turnFor(msg *domain.Message) clients.Turn {
	return clients.Turn{
		Role:    domain.RoleFor(msg.Type),
		Content: msg.Content(),
	}
}
