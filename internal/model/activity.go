package model

import "time"

// Notification is an in-app message for a user (new upload on a subscribed
// channel, reply to a comment, moderation outcome, ...).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report is a user-submitted complaint about a video or a comment.
type Report struct {
	ID          string     `json:"id"`
	ReporterID  string     `json:"reporterId,omitempty"`
	VideoID     string     `json:"videoId,omitempty"`
	CommentID   string     `json:"commentId,omitempty"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Revenue is one entry in a creator's earnings ledger. Ledger shape only —
// no payment processing happens here.
type Revenue struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	VideoID       string    `json:"videoId,omitempty"`
	Amount        float64   `json:"amount"`
	Source        string    `json:"source,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Membership is a paid tier relationship between a user and a channel.
type Membership struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	ChannelID string     `json:"channelId"`
	Tier      string     `json:"tier,omitempty"`
	Amount    float64    `json:"amount"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
