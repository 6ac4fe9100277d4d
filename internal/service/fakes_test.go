package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// fakeStore is an in-memory stand-in for the ticket and message
// repositories.
type fakeStore struct {
	mu          sync.Mutex
	tickets     map[string]*domain.Ticket
	messages    map[string][]domain.Message
	msgIndex    map[string]string
	nextNumber  int
	createErr   error
	suggestions map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:     make(map[string]*domain.Ticket),
		messages:    make(map[string][]domain.Message),
		msgIndex:    make(map[string]string),
		suggestions: make(map[string]string),
	}
}

func (s *fakeStore) CreateWithMessage(ctx context.Context, ticket *domain.Ticket, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextNumber++
	ticket.TicketNumber = s.nextNumber
	ticket.ID = fmt.Sprintf("ticket-%d", s.nextNumber)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	s.tickets[ticket.ID] = ticket

	msg.TicketID = ticket.ID
	s.messages[ticket.ID] = append(s.messages[ticket.ID], *msg)
	s.msgIndex[msg.MessageID] = ticket.ID
	return nil
}

func (s *fakeStore) AppendReply(ctx context.Context, ticketID string, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	msg.TicketID = ticketID
	s.messages[ticketID] = append(s.messages[ticketID], *msg)
	s.msgIndex[msg.MessageID] = ticketID
	ticket.LastMessage = msg.Content()
	ticket.LastMessageDate = msg.Date
	ticket.Read = false
	return nil
}

func (s *fakeStore) FindTicketIDByMessageID(ctx context.Context, accountID, companyID, messageID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticketID, ok := s.msgIndex[messageID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return ticketID, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (s *fakeStore) SaveAISuggestion(ctx context.Context, ticketID, suggestion string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.LastAISuggestion = &suggestion
	ticket.LastAISuggestionAt = &at
	s.suggestions[ticketID] = suggestion
	return nil
}

// ListByTicket implements repository.MessageRepository on the same store.
func (s *fakeStore) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message{}, s.messages[ticketID]...), nil
}

func (s *fakeStore) seedTicket(ticket *domain.Ticket, msgs ...domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.ID] = ticket
	for _, msg := range msgs {
		msg.TicketID = ticket.ID
		s.messages[ticket.ID] = append(s.messages[ticket.ID], msg)
		s.msgIndex[msg.MessageID] = ticket.ID
	}
}

type fakeKnowledgebaseRepo struct {
	kb  *domain.Knowledgebase
	err error
}

func (r *fakeKnowledgebaseRepo) Get(ctx context.Context, accountID, companyID string) (*domain.Knowledgebase, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.kb, nil
}

type fakeActionRepo struct {
	mu      sync.Mutex
	actions []domain.Action
	listErr error
	events  []*domain.ActionEvent
	evErr   error
}

func (r *fakeActionRepo) ListEnabled(ctx context.Context, accountID, companyID string, trigger domain.ActionTrigger) ([]domain.Action, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []domain.Action
	for _, action := range r.actions {
		if action.Trigger == trigger && action.Enabled {
			result = append(result, action)
		}
	}
	return result, nil
}

func (r *fakeActionRepo) CreateEvent(ctx context.Context, event *domain.ActionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evErr != nil {
		return r.evErr
	}
	event.ID = fmt.Sprintf("event-%d", len(r.events)+1)
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events = append(r.events, event)
	return nil
}

func (r *fakeActionRepo) CompleteEvent(ctx context.Context, eventID string, status domain.ActionEventStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.ID == eventID {
			event.Status = status
			event.CompletedAt = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeActionRepo) createdEvents() []*domain.ActionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.ActionEvent{}, r.events...)
}

type fakeDeviceRepo struct {
	tokens []string
	err    error
}

func (r *fakeDeviceRepo) ListTokens(ctx context.Context, accountID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tokens, nil
}

type fakePush struct {
	mu        sync.Mutex
	sent      []clients.Notification
	delivered int
	err       error
}

func (p *fakePush) SendMulticast(ctx context.Context, tokens []string, n clients.Notification) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	if p.err != nil {
		return 0, p.err
	}
	if p.delivered > 0 {
		return p.delivered, nil
	}
	return len(tokens), nil
}

type fakeAI struct {
	mu       sync.Mutex
	requests []clients.GenerateRequest
	content  string
	err      error
}

func (a *fakeAI) Generate(ctx context.Context, req clients.GenerateRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	if a.err != nil {
		return "", a.err
	}
	return a.content, nil
}

func (a *fakeAI) calls() []clients.GenerateRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]clients.GenerateRequest{}, a.requests...)
}

type fakeMailer struct {
	mu            sync.Mutex
	replies       []clients.SendReplyRequest
	confirmations []clients.ConfirmationRequest
	replyErr      error
	confirmErr    error
}

func (m *fakeMailer) SendReply(ctx context.Context, req clients.SendReplyRequest) (clients.SendReplyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replyErr != nil {
		return clients.SendReplyResponse{}, m.replyErr
	}
	m.replies = append(m.replies, req)
	return clients.SendReplyResponse{Status: 1, MessageID: "out-1"}, nil
}

func (m *fakeMailer) SendConfirmation(ctx context.Context, req clients.ConfirmationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.confirmations = append(m.confirmations, req)
	return nil
}

func (m *fakeMailer) sentReplies() []clients.SendReplyRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]clients.SendReplyRequest{}, m.replies...)
}

type fakeActionClient struct {
	mu       sync.Mutex
	requests []clients.InvokeActionRequest
	events   []clients.StreamEvent
	err      error
}

func (c *fakeActionClient) Stream(ctx context.Context, req clients.InvokeActionRequest) (<-chan clients.StreamEvent, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	err := c.err
	streamed := append([]clients.StreamEvent{}, c.events...)
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	ch := make(chan clients.StreamEvent, len(streamed))
	for _, event := range streamed {
		ch <- event
	}
	close(ch)
	return ch, nil
}

func (c *fakeActionClient) invocations() []clients.InvokeActionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]clients.InvokeActionRequest{}, c.requests...)
}
