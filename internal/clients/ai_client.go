package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// Turn is one conversation turn sent to the AI responder.
type Turn struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// GenerateRequest is the AI responder call payload.
type GenerateRequest struct {
	UID         string         `json:"uid"`
	CompanyID   string         `json:"companyId"`
	Employee    string         `json:"employee,omitempty"`
	Messages    []Turn         `json:"messages"`
	Temperature float64        `json:"temperature"`
	Context     map[string]any `json:"context,omitempty"`
}

// AIClient invokes the external AI responder.
type AIClient interface {
	// Generate returns the responder's content, or empty when the
	// responder produced nothing actionable.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type aiResponderClient struct {
	url    string
	client *http.Client
}

// NewAIClient builds an HTTP AI responder client with a bounded timeout.
func NewAIClient(url string, timeout time.Duration) AIClient {
	return &aiResponderClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type aiResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Content  string `json:"content"`
		Response string `json:"response"`
		Message  string `json:"message"`
	} `json:"data"`
}

func (c *aiResponderClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai responder returned %d", resp.StatusCode)
	}

	var body aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("ai responder reported failure")
	}

	// The responder has shipped the content under several keys over time.
	switch {
	case body.Data.Content != "":
		return body.Data.Content, nil
	case body.Data.Response != "":
		return body.Data.Response, nil
	default:
		return body.Data.Message, nil
	}
}
