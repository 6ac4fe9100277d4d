package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/domain"
	"github.com/spec-kit/helpdesk-engine/internal/observability"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
)

// ActionDispatcher fans out user-configured actions for a trigger type.
// Dispatch is fire-and-forget: it never returns an error and a failure on
// one action does not prevent the remaining actions from being attempted.
type ActionDispatcher struct {
	actions     repository.ActionRepository
	client      clients.ActionClient
	timeout     time.Duration
	personality int
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewActionDispatcher constructs the dispatcher. timeout bounds one webhook
// invocation including its stream consumption.
func NewActionDispatcher(actions repository.ActionRepository, client clients.ActionClient, timeout time.Duration, personality int, logger *zap.Logger, metrics *observability.Metrics) *ActionDispatcher {
	return &ActionDispatcher{
		actions:     actions,
		client:      client,
		timeout:     timeout,
		personality: personality,
		logger:      logger,
		metrics:     metrics,
	}
}

// Dispatch loads the enabled actions for the trigger and invokes each one
// independently. Zero enabled actions is a no-op.
func (d *ActionDispatcher) Dispatch(ctx context.Context, accountID, companyID string, trigger domain.ActionTrigger, triggerData map[string]any, history []clients.Turn) {
	actions, err := d.actions.ListEnabled(ctx, accountID, companyID, trigger)
	if err != nil {
		d.logger.Error("loading actions failed",
			zap.String("trigger", string(trigger)),
			zap.Error(err))
		return
	}

	for i := range actions {
		d.dispatchOne(ctx, &actions[i], triggerData, history)
	}
}

func (d *ActionDispatcher) dispatchOne(ctx context.Context, action *domain.Action, triggerData map[string]any, history []clients.Turn) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("action dispatch panicked",
				zap.String("action_id", action.ID),
				zap.Any("panic", r))
		}
	}()

	event := &domain.ActionEvent{
		ActionID:    action.ID,
		TriggerData: triggerData,
		Status:      domain.ActionEventPending,
	}
	if err := d.actions.CreateEvent(ctx, event); err != nil {
		d.logger.Error("creating action event failed",
			zap.String("action_id", action.ID),
			zap.Error(err))
		d.metrics.RecordEffect("action_dispatch", false)
		return
	}

	req := clients.InvokeActionRequest{
		UID:                 action.AccountID,
		SelectedCompany:     action.CompanyID,
		ActionID:            action.ID,
		ActionPrompt:        action.Prompt,
		EmployeeID:          action.EmployeeID,
		TriggerData:         triggerData,
		ConversationHistory: history,
		PersonalityLevel:    d.personality,
	}

	// The stream is consumed in the background; the triggering invocation
	// does not wait for the handler to finish. The audit event is the
	// durable completion signal, written out-of-band by the handler.
	go d.consume(action.ID, event.ID, req)
	d.metrics.RecordEffect("action_dispatch", true)
}

func (d *ActionDispatcher) consume(actionID, eventID string, req clients.InvokeActionRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	stream, err := d.client.Stream(ctx, req)
	if err != nil {
		d.logger.Warn("action handler call failed",
			zap.String("action_id", actionID),
			zap.String("event_id", eventID),
			zap.Error(err))
		return
	}

	for event := range stream {
		switch event.Type {
		case clients.StreamEventDone:
			d.logger.Info("action completed",
				zap.String("action_id", actionID),
				zap.String("event_id", eventID))
		case clients.StreamEventError:
			d.logger.Warn("action reported error",
				zap.String("action_id", actionID),
				zap.String("event_id", eventID),
				zap.ByteString("data", event.Data))
		}
	}
}
