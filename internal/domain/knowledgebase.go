package domain

// Knowledgebase carries the per-company feature flags and addressing
// settings. Read-only from the automation pipeline's perspective.
type Knowledgebase struct {
	AccountID string
	CompanyID string

	AIMessagesOn    bool
	AISuggestionsOn bool

	// Subdomain builds the canonical from-address for outbound replies
	// ({subdomain}@{mail domain}) and the public helpdesk link.
	Subdomain string
}
