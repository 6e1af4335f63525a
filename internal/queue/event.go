// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

// NotificationCreatedEvent is published after a notification row has been
// stored.  It carries the recipient's address so the consumer can deliver an
// email without querying the primary database.
type NotificationCreatedEvent struct {
	NotificationID uint64 `json:"notification_id"`
	RecipientID    uint64 `json:"recipient_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	RelatedID      uint64 `json:"related_id"`
	CreatedAt      string `json:"created_at"`
}
