package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, ch <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for event := range ch {
		events = append(events, event)
	}
	return events
}

func TestStream_ParsesDoneAndErrorEvents(t *testing.T) {
	t.Parallel()

	srv := streamServer(t,
		`data: {"type":"error","data":{"reason":"tool failed"}}`,
		`data: {"type":"done","data":{"result":"ok"}}`,
	)
	client := NewActionClient(srv.URL)

	ch, err := client.Stream(context.Background(), InvokeActionRequest{ActionID: "a1"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Len(t, events, 2)
	require.Equal(t, StreamEventError, events[0].Type)
	require.Equal(t, StreamEventDone, events[1].Type)

	var payload struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(events[1].Data, &payload))
	require.Equal(t, "ok", payload.Result)
}

func TestStream_SkipsMalformedAndNonDataLines(t *testing.T) {
	t.Parallel()

	srv := streamServer(t,
		`: keep-alive comment`,
		``,
		`data: not valid json`,
		`event: ignored`,
		`data: {"type":"done"}`,
	)
	client := NewActionClient(srv.URL)

	ch, err := client.Stream(context.Background(), InvokeActionRequest{ActionID: "a1"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Len(t, events, 1)
	require.Equal(t, StreamEventDone, events[0].Type)
}

func TestStream_EmptyBodyClosesChannel(t *testing.T) {
	t.Parallel()

	srv := streamServer(t)
	client := NewActionClient(srv.URL)

	ch, err := client.Stream(context.Background(), InvokeActionRequest{ActionID: "a1"})
	require.NoError(t, err)
	require.Empty(t, collect(t, ch))
}

func TestStream_HTTPErrorFailsUpfront(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := NewActionClient(srv.URL)
	_, err := client.Stream(context.Background(), InvokeActionRequest{ActionID: "a1"})
	require.ErrorContains(t, err, "502")
}

func TestStream_SendsInvocationPayload(t *testing.T) {
	t.Parallel()

	var received InvokeActionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("data: {\"type\":\"done\"}\n"))
	}))
	t.Cleanup(srv.Close)

	client := NewActionClient(srv.URL)
	ch, err := client.Stream(context.Background(), InvokeActionRequest{
		UID:              "acct-1",
		SelectedCompany:  "default",
		ActionID:         "a1",
		ActionPrompt:     "Escalate urgent tickets",
		TriggerData:      map[string]any{"ticketId": "ticket-1"},
		PersonalityLevel: 3,
	})
	require.NoError(t, err)
	collect(t, ch)

	require.Equal(t, "acct-1", received.UID)
	require.Equal(t, "Escalate urgent tickets", received.ActionPrompt)
	require.Equal(t, "ticket-1", received.TriggerData["ticketId"])
}
