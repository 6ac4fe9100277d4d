package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SendReplyRequest is the outbound email call payload.
type SendReplyRequest struct {
	UID             string   `json:"uid"`
	SelectedCompany string   `json:"selectedCompany"`
	TicketID        string   `json:"ticketId"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	Subject         string   `json:"subject"`
	Message         string   `json:"message"`
	ReplyToID       string   `json:"replyToId"`
	References      string   `json:"references"`
	FileURLs        []string `json:"fileUrls"`
}

// SendReplyResponse reports the mailer outcome.
type SendReplyResponse struct {
	Status    int    `json:"status"`
	MessageID string `json:"messageId"`
}

// ConfirmationRequest asks the mailer to send the new-ticket confirmation
// template.
type ConfirmationRequest struct {
	UID             string `json:"uid"`
	SelectedCompany string `json:"selectedCompany"`
	TicketID        string `json:"ticketId"`
	TicketNumber    int    `json:"ticketNumber"`
	To              string `json:"to"`
	Subject         string `json:"subject"`
}

// MailerClient invokes the external email-sending service.
type MailerClient interface {
	SendReply(ctx context.Context, req SendReplyRequest) (SendReplyResponse, error)
	SendConfirmation(ctx context.Context, req ConfirmationRequest) error
}

type mailerClient struct {
	url    string
	client *http.Client
}

// NewMailerClient builds an HTTP mailer client with a bounded timeout.
func NewMailerClient(url string, timeout time.Duration) MailerClient {
	return &mailerClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *mailerClient) SendReply(ctx context.Context, req SendReplyRequest) (SendReplyResponse, error) {
	var out SendReplyResponse
	if err := c.post(ctx, c.url+"/send", req, &out); err != nil {
		return SendReplyResponse{}, err
	}
	if out.Status != 1 {
		return out, fmt.Errorf("mailer rejected reply, status %d", out.Status)
	}
	return out, nil
}

func (c *mailerClient) SendConfirmation(ctx context.Context, req ConfirmationRequest) error {
	return c.post(ctx, c.url+"/confirmation", req, nil)
}

func (c *mailerClient) post(ctx context.Context, url string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
