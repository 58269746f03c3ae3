package repository

import "context"

// -----------------------------
// Subscribers
// -----------------------------

// SubscriberRegistry is the durable registry of chats opted into periodic
// recommendations. Mutations are serialized by the implementation; reads see
// either the pre- or post-mutation state, never a torn one.
type SubscriberRegistry interface {
	// Subscribe enables notifications for the chat. Returns true iff the
	// call transitioned the chat into an enabled state (new record or
	// re-enable after opt-out).
	Subscribe(ctx context.Context, chatID int64, username string) bool
	// Unsubscribe disables notifications. Returns false when no record
	// exists; absent chats are never implicitly created.
	Unsubscribe(ctx context.Context, chatID int64) bool
	// IsSubscribed reports whether a record exists and is enabled.
	IsSubscribed(ctx context.Context, chatID int64) bool
	// ActiveSubscribers returns the chat IDs with notifications enabled.
	ActiveSubscribers(ctx context.Context) []int64
	// SubscriberCount counts enabled records.
	SubscriberCount(ctx context.Context) int
}
