package worker

import (
	"github.com/spec-kit/helpdesk-engine/internal/events"
	"github.com/spec-kit/helpdesk-engine/internal/service"
)

// StartAutomationWorker subscribes the automation pipeline to message
// events. Both new-ticket and reply events run through the same pipeline;
// the trigger policy tells them apart.
func StartAutomationWorker(dispatcher events.Dispatcher, automation *service.AutomationService) {
	if dispatcher == nil || automation == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, automation.HandleMessageEvent)
	dispatcher.Subscribe(events.EventMessageReceived, automation.HandleMessageEvent)
}
