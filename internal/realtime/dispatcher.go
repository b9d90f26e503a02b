package realtime

import (
	"fmt"
	"log"

	"gigspace/internal/domain/entity"
)

// FallbackTarget is where taps on unknown or incomplete notifications
// land. Failing closed to the notification list beats a broken deep link.
const FallbackTarget = "/notifications"

// Route is the client action a notification tap resolves to.
type Route struct {
	NavigateTo string `json:"navigate_to"`
	// OpenChat asks the client to open the chat panel alongside the view.
	OpenChat bool `json:"open_chat,omitempty"`
	// MarkThreadRead asks the client to mark the target thread read on
	// arrival.
	MarkThreadRead bool `json:"mark_thread_read,omitempty"`
}

// Dispatch maps a notification to its target route. The payload must be
// complete for the type; anything else routes to the fallback so a
// malformed notification can never dead-end the user.
func Dispatch(n *entity.Notification) Route {
	if !n.PayloadComplete() {
		log.Printf("Dispatcher: notification %s type %q has no usable route, falling back", n.ID, n.Type)
		return Route{NavigateTo: FallbackTarget}
	}

	switch n.Type {
	case entity.NotificationNewBid:
		return Route{
			NavigateTo: fmt.Sprintf("/jobs/%s/bids", n.Payload.JobID),
			OpenChat:   true,
		}
	case entity.NotificationBidAccepted:
		return Route{NavigateTo: "/checkout/" + n.Payload.JobID}
	case entity.NotificationBidRejected:
		return Route{NavigateTo: "/my-bids"}
	case entity.NotificationPaymentSent:
		return Route{NavigateTo: "/payments/" + n.Payload.JobID}
	case entity.NotificationNewMessage:
		return Route{
			NavigateTo:     "/chats/" + n.Payload.ConversationID,
			MarkThreadRead: true,
		}
	case entity.NotificationNewOffer:
		// Offers land in the thread like any message; only new_bid opens
		// the chat panel as a side effect.
		return Route{NavigateTo: "/chats/" + n.Payload.ConversationID}
	default:
		return Route{NavigateTo: FallbackTarget}
	}
}
