package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gigspace/internal/domain/entity"
	"gigspace/internal/realtime"
)

func TestDispatchKnownTypes(t *testing.T) {
	tests := []struct {
		name         string
		notification *entity.Notification
		want         realtime.Route
	}{
		{
			name: "new bid opens the job's bid list with chat",
			notification: &entity.Notification{
				Type:    entity.NotificationNewBid,
				Payload: entity.NotificationPayload{JobID: "j1", BidID: "b1", FreelancerID: "f1"},
			},
			want: realtime.Route{NavigateTo: "/jobs/j1/bids", OpenChat: true},
		},
		{
			name: "accepted bid goes to checkout",
			notification: &entity.Notification{
				Type:    entity.NotificationBidAccepted,
				Payload: entity.NotificationPayload{JobID: "j1", BidID: "b1"},
			},
			want: realtime.Route{NavigateTo: "/checkout/j1"},
		},
		{
			name: "rejected bid goes to the bid overview",
			notification: &entity.Notification{
				Type:    entity.NotificationBidRejected,
				Payload: entity.NotificationPayload{JobID: "j1", BidID: "b1"},
			},
			want: realtime.Route{NavigateTo: "/my-bids"},
		},
		{
			name: "payment goes to the payment view",
			notification: &entity.Notification{
				Type:    entity.NotificationPaymentSent,
				Payload: entity.NotificationPayload{JobID: "j1", Amount: 120},
			},
			want: realtime.Route{NavigateTo: "/payments/j1"},
		},
		{
			name: "new message opens the thread and marks it read",
			notification: &entity.Notification{
				Type:    entity.NotificationNewMessage,
				Payload: entity.NotificationPayload{ConversationID: "c1", MessageID: "m1"},
			},
			want: realtime.Route{NavigateTo: "/chats/c1", MarkThreadRead: true},
		},
		{
			name: "new offer opens the thread with no side effects",
			notification: &entity.Notification{
				Type:    entity.NotificationNewOffer,
				Payload: entity.NotificationPayload{ConversationID: "c1", MessageID: "m1"},
			},
			want: realtime.Route{NavigateTo: "/chats/c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, realtime.Dispatch(tt.notification))
		})
	}
}

func TestDispatchOfferCarriesNoSideEffects(t *testing.T) {
	route := realtime.Dispatch(&entity.Notification{
		Type:    entity.NotificationNewOffer,
		Payload: entity.NotificationPayload{ConversationID: "c1", MessageID: "m1"},
	})

	assert.Equal(t, "/chats/c1", route.NavigateTo)
	assert.False(t, route.OpenChat)
	assert.False(t, route.MarkThreadRead)
}

func TestDispatchFallsBackOnUnknownType(t *testing.T) {
	route := realtime.Dispatch(&entity.Notification{
		Type:    "account_flagged",
		Payload: entity.NotificationPayload{JobID: "j1"},
	})

	assert.Equal(t, realtime.Route{NavigateTo: realtime.FallbackTarget}, route)
}

func TestDispatchFallsBackOnIncompletePayload(t *testing.T) {
	// A new_bid without a bid id cannot build its deep link.
	route := realtime.Dispatch(&entity.Notification{
		Type:    entity.NotificationNewBid,
		Payload: entity.NotificationPayload{JobID: "j1"},
	})
	assert.Equal(t, realtime.Route{NavigateTo: realtime.FallbackTarget}, route)

	route = realtime.Dispatch(&entity.Notification{
		Type: entity.NotificationNewMessage,
	})
	assert.Equal(t, realtime.Route{NavigateTo: realtime.FallbackTarget}, route)
}

func TestEveryNotificationTypeHasARoute(t *testing.T) {
	complete := map[string]entity.NotificationPayload{
		entity.NotificationNewBid:      {JobID: "j1", BidID: "b1", FreelancerID: "f1"},
		entity.NotificationBidAccepted: {JobID: "j1", BidID: "b1"},
		entity.NotificationBidRejected: {JobID: "j1", BidID: "b1"},
		entity.NotificationPaymentSent: {JobID: "j1", Amount: 50},
		entity.NotificationNewMessage:  {ConversationID: "c1", MessageID: "m1"},
		entity.NotificationNewOffer:    {ConversationID: "c1", MessageID: "m1"},
	}

	for typ, payload := range complete {
		route := realtime.Dispatch(&entity.Notification{Type: typ, Payload: payload})
		assert.NotEqual(t, realtime.FallbackTarget, route.NavigateTo, "type %s should have a dedicated route", typ)
		assert.NotEmpty(t, route.NavigateTo)
	}
}
