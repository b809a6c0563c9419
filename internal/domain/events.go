package domain

// EventName identifies a domain event pushed to connected clients.
type EventName string

const (
	EventOrderNew       EventName = "order:new"
	EventOrderUpdated   EventName = "order:updated"
	EventOrderProgress  EventName = "order:progress"
	EventOrderAvailable EventName = "order:available"
	EventOrderTaken     EventName = "order:taken"
	EventDriverAccepted EventName = "order:driverAccepted"
	EventOrderPickedUp  EventName = "order:pickedUp"
	EventOrderDelivered EventName = "order:delivered"
	EventOrderCancelled EventName = "order:cancelled"
	EventPayoutDone     EventName = "payout:completed"
	EventPayoutAuto     EventName = "payout:auto"
)

// Event is a single domain event addressed to one channel. The state machine
// emits events; the notification fan-out decides nothing about content, it
// only routes by channel name.
type Event struct {
	Channel string
	Name    EventName
	Payload any
}

// UserChannel is the private channel of a single user.
func UserChannel(userID string) string { return "user:" + userID }

// RoleChannel is the broadcast channel shared by every user of a role.
func RoleChannel(role Role) string { return "role:" + string(role) }
