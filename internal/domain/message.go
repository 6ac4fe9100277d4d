package domain

import "time"

// MessageType tags the direction of a message within a thread.
type MessageType string

const (
	// MessageTypeReceiver marks an inbound customer email.
	MessageTypeReceiver MessageType = "RECEIVER"
	// MessageTypeAI marks an AI-generated reply.
	MessageTypeAI MessageType = "AI"
	// MessageTypeSender marks an outbound reply written by a human agent.
	MessageTypeSender MessageType = "SENDER"
)

// NoReference is the sentinel In-Reply-To value carried by messages that
// start a new thread.
const NoReference = "N/A"

// Message is a single email or AI turn within a ticket. Messages are
// immutable once created and ordered by Date ascending within a ticket.
// MessageID is the threading identity: an inbound message's InReplyTo is
// matched against existing MessageIDs to find the owning ticket.
type Message struct {
	ID          string
	TicketID    string
	Type        MessageType
	Body        string
	HTML        string
	FromEmail   string
	MessageID   string
	InReplyTo   string
	References  string
	Date        time.Time
	Attachments []string
	CreatedAt   time.Time
}

// IsNewThread reports whether the message starts a new ticket rather than
// replying to an existing one.
func (m *Message) IsNewThread() bool {
	return m.InReplyTo == "" || m.InReplyTo == NoReference
}

// Content returns the usable text of the message: body when present,
// otherwise the HTML part, otherwise empty.
func (m *Message) Content() string {
	if m.Body != "" {
		return m.Body
	}
	return m.HTML
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoleFor maps a message type to its conversation role. AI and outbound
// messages speak as the assistant; everything else defaults to the user.
func RoleFor(t MessageType) Role {
	switch t {
	case MessageTypeAI, MessageTypeSender:
		return RoleAssistant
	default:
		return RoleUser
	}
}
