package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Ticket is the aggregate for one support conversation thread. LastMessage
// and LastMessageDate are a denormalized cache of the most recent message
// and are rewritten on every append.
type Ticket struct {
	ID           string
	AccountID    string
	CompanyID    string
	Subject      string
	FromEmail    string
	Status       TicketStatus
	TicketNumber int

	LastMessage     string
	LastMessageDate time.Time
	Read            bool

	// AIOn is a tri-state per-ticket override: nil inherits the
	// knowledgebase flags, an explicit false disables the AI path.
	AIOn *bool

	LastAISuggestion   *string
	LastAISuggestionAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
