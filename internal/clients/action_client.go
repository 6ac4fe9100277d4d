package clients

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// InvokeActionRequest is the action webhook call payload.
type InvokeActionRequest struct {
	UID                 string          `json:"uid"`
	SelectedCompany     string          `json:"selectedCompany"`
	ActionID            string          `json:"actionId"`
	ActionPrompt        string          `json:"actionPrompt"`
	EmployeeID          string          `json:"employeeId"`
	TriggerData         map[string]any  `json:"triggerData"`
	ConversationHistory []Turn          `json:"conversationHistory"`
	PersonalityLevel    int             `json:"personalityLevel"`
}

// StreamEventType tags one event on the action response stream.
type StreamEventType string

const (
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// StreamEvent is one parsed `data: <json>` line from the action handler.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ActionClient invokes the external action webhook handler, consuming its
// server-sent-event style response.
type ActionClient interface {
	// Stream starts the invocation and returns a channel of parsed
	// events. The channel is closed when the stream ends or the context
	// is cancelled. Malformed lines are skipped.
	Stream(ctx context.Context, req InvokeActionRequest) (<-chan StreamEvent, error)
}

type actionClient struct {
	url    string
	client *http.Client
}

// NewActionClient builds the webhook client. The per-call deadline comes
// from the caller's context so stream consumption stays cancellable.
func NewActionClient(url string) ActionClient {
	return &actionClient{
		url:    url,
		client: &http.Client{},
	}
}

const dataPrefix = "data: "

func (c *actionClient) Stream(ctx context.Context, req InvokeActionRequest) (<-chan StreamEvent, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("action handler returned %d", resp.StatusCode)
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, dataPrefix) {
				continue
			}
			var event StreamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, dataPrefix)), &event); err != nil {
				// Malformed stream lines are silently ignored.
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
