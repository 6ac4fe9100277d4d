package service

import "github.com/spec-kit/helpdesk-engine/internal/domain"

// AIMode selects what the legacy AI path does with a generated response.
type AIMode string

const (
	// AIModeReply sends the response as an outbound email.
	AIModeReply AIMode = "reply"
	// AIModeSuggest stores the response on the ticket for an agent to
	// review instead of sending it.
	AIModeSuggest AIMode = "suggest"
	AIModeNone    AIMode = "none"
)

// OrgFlags are the knowledgebase-level feature flags.
type OrgFlags struct {
	AIMessagesOn    bool
	AISuggestionsOn bool
}

// Decision is the outcome of evaluating the layered flag policy for one
// message.
type Decision struct {
	RunLegacyAI      bool
	AIMode           AIMode
	RunCustomActions bool
	Notify           bool
}

// Decide evaluates the org flags, the ticket-level override and the message
// direction into an explicit decision. The rules, in order:
//
//  1. Custom action triggers are independent of the AI flags.
//  2. The legacy AI path requires an inbound customer message, at least one
//     org flag on, and a ticket override that is not explicitly false.
//  3. When both org flags are on, messages win: the response is emailed,
//     not stored as a suggestion.
//  4. Notification dispatch is gated on the inbound customer direction
//     only, not on any AI flag.
func Decide(org OrgFlags, ticketOverride *bool, msgType domain.MessageType) Decision {
	d := Decision{
		AIMode:           AIModeNone,
		RunCustomActions: true,
		Notify:           msgType == domain.MessageTypeReceiver,
	}

	if msgType != domain.MessageTypeReceiver {
		return d
	}
	if !org.AIMessagesOn && !org.AISuggestionsOn {
		return d
	}
	if ticketOverride != nil && !*ticketOverride {
		return d
	}

	d.RunLegacyAI = true
	if org.AIMessagesOn {
		d.AIMode = AIModeReply
	} else {
		d.AIMode = AIModeSuggest
	}
	return d
}
