package domain

import "time"

// ActionTrigger enumerates the structural conditions that activate
// user-configured actions.
type ActionTrigger string

const (
	TriggerNewTicket        ActionTrigger = "new_ticket"
	TriggerTicketReply      ActionTrigger = "ticket_reply"
	TriggerQuestionAnswered ActionTrigger = "question_answered"
)

// Action is a user-configured automation bound to a trigger type and
// invoked through an external webhook handler.
type Action struct {
	ID         string
	AccountID  string
	CompanyID  string
	Trigger    ActionTrigger
	Enabled    bool
	Prompt     string
	EmployeeID string
	CreatedAt  time.Time
}

// ActionEventStatus tracks the audit record lifecycle. Status only ever
// moves pending to a terminal state, never backwards.
type ActionEventStatus string

const (
	ActionEventPending ActionEventStatus = "pending"
	ActionEventDone    ActionEventStatus = "done"
	ActionEventError   ActionEventStatus = "error"
)

// Terminal reports whether the status is a final state.
func (s ActionEventStatus) Terminal() bool {
	return s == ActionEventDone || s == ActionEventError
}

// ActionEvent is the durable audit record of one action invocation. It is
// created in pending state before the handler is invoked; the terminal
// state is written out-of-band as the handler streams its result.
type ActionEvent struct {
	ID          string
	ActionID    string
	TriggerData map[string]any
	Status      ActionEventStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
