package dto

// IntakeEmailRequest is the email intake payload posted by the mail
// parsing frontend.
type IntakeEmailRequest struct {
	From            string   `json:"from"`
	To              string   `json:"to"`
	Subject         string   `json:"subject"`
	Date            string   `json:"date"`
	Body            string   `json:"body"`
	MessageID       string   `json:"messageId"`
	InReplyTo       string   `json:"inReplyTo"`
	References      string   `json:"references"`
	UID             string   `json:"uid,omitempty"`
	HTML            string   `json:"html"`
	DownloadURLs    []string `json:"downloadURLs"`
	SelectedCompany string   `json:"selectedCompany,omitempty"`
}

// IntakeEmailResponse reports intake outcome. Status 1 means the message
// was threaded; status 0 carries a human-readable reason.
type IntakeEmailResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
}
