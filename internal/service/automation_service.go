package service

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/events"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
)

// AutomationService runs the full automation pipeline for one message
// event: load settings, evaluate the trigger policy, fan out custom
// actions and drive the legacy AI/notification effects. Every invocation
// is wrapped so the event host never sees an unhandled failure.
type AutomationService struct {
	knowledgebases repository.KnowledgebaseRepository
	tickets        repository.TicketRepository
	assembler      *ConversationAssembler
	sequencer      *EffectSequencer
	dispatcher     *ActionDispatcher
	logger         *zap.Logger
}

// AutomationDependencies bundles collaborators for the service.
type AutomationDependencies struct {
	KnowledgebaseRepo repository.KnowledgebaseRepository
	TicketRepo        repository.TicketRepository
	Assembler         *ConversationAssembler
	Sequencer         *EffectSequencer
	Dispatcher        *ActionDispatcher
}

// NewAutomationService constructs the service.
func NewAutomationService(deps AutomationDependencies, logger *zap.Logger) *AutomationService {
	return &AutomationService{
		knowledgebases: deps.KnowledgebaseRepo,
		tickets:        deps.TicketRepo,
		assembler:      deps.Assembler,
		sequencer:      deps.Sequencer,
		dispatcher:     deps.Dispatcher,
		logger:         logger,
	}
}

// HandleMessageEvent is the event-dispatcher entry point.
func (s *AutomationService) HandleMessageEvent(ctx context.Context, event events.Event) error {
	s.Process(ctx, event.Payload)
	return nil
}

// Process runs the pipeline for one inbound message. All failures are
// logged and swallowed; the event is considered processed either way.
func (s *AutomationService) Process(ctx context.Context, payload events.MessageReceivedPayload) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("automation pipeline panicked",
				zap.String("ticket_id", payload.TicketID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	kb, err := s.knowledgebases.Get(ctx, payload.AccountID, payload.CompanyID)
	if err != nil {
		s.logger.Warn("knowledgebase not available",
			zap.String("account_id", payload.AccountID),
			zap.String("company_id", payload.CompanyID),
			zap.Error(err))
		return
	}

	ticket, err := s.tickets.GetByID(ctx, payload.TicketID)
	if err != nil {
		s.logger.Warn("ticket not available",
			zap.String("ticket_id", payload.TicketID),
			zap.Error(err))
		return
	}

	decision := Decide(OrgFlags{
		AIMessagesOn:    kb.AIMessagesOn,
		AISuggestionsOn: kb.AISuggestionsOn,
	}, ticket.AIOn, payload.Message.Type)

	history, err := s.assembler.HistoryForInbound(ctx, ticket.ID, &payload.Message)
	if err != nil {
		s.logger.Warn("assembling history failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		history = []clients.Turn{turnFor(&payload.Message)}
	}

	triggerData := map[string]any{
		"ticketId":     ticket.ID,
		"ticketNumber": ticket.TicketNumber,
		"subject":      ticket.Subject,
		"from":         payload.Message.FromEmail,
		"messageId":    payload.Message.MessageID,
	}

	if decision.RunCustomActions {
		trigger := domain.TriggerTicketReply
		if payload.IsNew {
			trigger = domain.TriggerNewTicket
		}
		s.dispatcher.Dispatch(ctx, payload.AccountID, payload.CompanyID, trigger, triggerData, history)
	}

	content := s.sequencer.Run(ctx, EffectInput{
		AccountID:     payload.AccountID,
		CompanyID:     payload.CompanyID,
		Ticket:        ticket,
		Knowledgebase: kb,
		Inbound:       payload.Message,
		History:       history,
		Decision:      decision,
	})

	// A generated answer is its own structural trigger.
	if content != "" {
		triggerData["answer"] = content
		s.dispatcher.Dispatch(ctx, payload.AccountID, payload.CompanyID, domain.TriggerQuestionAnswered, triggerData, history)
	}
}
