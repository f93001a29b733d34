// internal/models/push.go
package models

// SubscriptionKeys holds the client key material of a push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is the descriptor issued by the push service and
// registered with the backend via POST /api/push/subscribe.
type PushSubscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// VAPIDKeyResponse is the body of GET /api/push/vapid-public-key.
type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// NotificationAction is a button attached to a displayed notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// NotificationData carries the navigation target acted on at click time.
type NotificationData struct {
	URL string `json:"url"`
}

// NotificationPayload is the JSON body of a push message and the shape
// handed to the platform's notification display.
type NotificationPayload struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Tag                string               `json:"tag"`
	Image              string               `json:"image,omitempty"`
	Data               NotificationData     `json:"data"`
	Vibrate            []int                `json:"vibrate,omitempty"`
	RequireInteraction bool                 `json:"requireInteraction,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
}

// Notification action identifiers
const (
	ActionChat  = "chat"
	ActionLater = "later"
)

// DefaultNotificationPayload is what gets displayed when a push message
// arrives with no payload or an unparsable one.
func DefaultNotificationPayload() NotificationPayload {
	return NotificationPayload{
		Title: "AI Companion",
		Body:  "Someone is thinking about you...",
		Icon:  "/logo192.png",
		Badge: "/logo192.png",
		Tag:   "ai-companion",
		Data:  NotificationData{URL: "/characters"},
	}
}

// DefaultNotificationActions returns the two standard notification buttons.
func DefaultNotificationActions() []NotificationAction {
	return []NotificationAction{
		{Action: ActionChat, Title: "Chat Now 💬"},
		{Action: ActionLater, Title: "Later"},
	}
}
