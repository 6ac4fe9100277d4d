package events

import (
	"time"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventMessageReceived EventType = "message_received"
)

// Event represents a domain event emitted when a message lands in the
// store. One event drives one independent automation invocation.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   MessageReceivedPayload
}

// MessageReceivedPayload carries everything the automation pipeline needs
// to process one inbound message.
type MessageReceivedPayload struct {
	AccountID string
	CompanyID string
	TicketID  string
	IsNew     bool
	Message   domain.Message
}
