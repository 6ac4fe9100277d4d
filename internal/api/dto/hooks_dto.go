package dto

// MessageEventRequest mirrors the message document carried by a
// document-created trigger.
type MessageEventRequest struct {
	Type        string   `json:"type"`
	Body        string   `json:"body"`
	HTML        string   `json:"html"`
	From        string   `json:"from"`
	MessageID   string   `json:"messageId"`
	InReplyTo   string   `json:"inReplyTo"`
	References  string   `json:"references"`
	Date        string   `json:"date"`
	Attachments []string `json:"attachments"`
}

// CompleteActionEventRequest moves an action audit event to its terminal
// state.
type CompleteActionEventRequest struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
}

// TrackVisitRequest increments the visit/session counters.
type TrackVisitRequest struct {
	UID             string `json:"uid"`
	SelectedCompany string `json:"selectedCompany"`
	Page            string `json:"page"`
	SessionID       string `json:"sessionId"`
}

// TrackVisitResponse reports the updated counters.
type TrackVisitResponse struct {
	Visits     int64 `json:"visits"`
	NewSession bool  `json:"newSession"`
}
