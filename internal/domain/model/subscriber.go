package model

import "time"

// Subscriber is one chat opted into periodic recommendations. Records are
// never deleted; opting out flips Enabled so re-subscribing keeps the
// original SubscribedAt.
type Subscriber struct {
	ChatID       int64     `json:"chat_id"`
	Username     string    `json:"username"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Enabled      bool      `json:"notifications_enabled"`
}

func NewSubscriber(chatID int64, username string) *Subscriber {
	if username == "" {
		username = "Usuario"
	}
	return &Subscriber{
		ChatID:       chatID,
		Username:     username,
		SubscribedAt: time.Now(),
		Enabled:      true,
	}
}
