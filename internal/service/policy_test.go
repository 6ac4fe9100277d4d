package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		org      OrgFlags
		override *bool
		msgType  domain.MessageType
		want     Decision
	}{
		{
			name:    "all flags off never runs ai",
			org:     OrgFlags{},
			msgType: domain.MessageTypeReceiver,
			want: Decision{
				AIMode:           AIModeNone,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:    "messages on sends reply",
			org:     OrgFlags{AIMessagesOn: true},
			msgType: domain.MessageTypeReceiver,
			want: Decision{
				RunLegacyAI:      true,
				AIMode:           AIModeReply,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:    "suggestions only stores suggestion",
			org:     OrgFlags{AISuggestionsOn: true},
			msgType: domain.MessageTypeReceiver,
			want: Decision{
				RunLegacyAI:      true,
				AIMode:           AIModeSuggest,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:    "messages beats suggestions when both on",
			org:     OrgFlags{AIMessagesOn: true, AISuggestionsOn: true},
			msgType: domain.MessageTypeReceiver,
			want: Decision{
				RunLegacyAI:      true,
				AIMode:           AIModeReply,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:     "explicit ticket opt-out wins over org flags",
			org:      OrgFlags{AIMessagesOn: true, AISuggestionsOn: true},
			override: boolPtr(false),
			msgType:  domain.MessageTypeReceiver,
			want: Decision{
				AIMode:           AIModeNone,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:     "explicit ticket opt-in inherits nothing extra",
			org:      OrgFlags{AISuggestionsOn: true},
			override: boolPtr(true),
			msgType:  domain.MessageTypeReceiver,
			want: Decision{
				RunLegacyAI:      true,
				AIMode:           AIModeSuggest,
				RunCustomActions: true,
				Notify:           true,
			},
		},
		{
			name:    "outbound message never runs ai and never notifies",
			org:     OrgFlags{AIMessagesOn: true},
			msgType: domain.MessageTypeSender,
			want: Decision{
				AIMode:           AIModeNone,
				RunCustomActions: true,
			},
		},
		{
			name:    "ai message never triggers itself",
			org:     OrgFlags{AIMessagesOn: true},
			msgType: domain.MessageTypeAI,
			want: Decision{
				AIMode:           AIModeNone,
				RunCustomActions: true,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tc.org, tc.override, tc.msgType)
			require.Equal(t, tc.want, got)
		})
	}
}
