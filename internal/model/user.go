// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account. A user is also a channel: other
// users subscribe to it, and its videos are published under its name.
//
// SubscriberCount is a denormalized counter. It is adjusted transactionally
// on every subscribe/unsubscribe and is never recomputed on read — the
// repository is the only place allowed to touch it.
//
// PasswordHash is never serialized. Accounts created through GitHub OAuth
// have an empty hash and a non-zero GitHubID; password login is rejected
// for them.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Name               string    `json:"name"`
	Avatar             string    `json:"avatar"`
	ChannelName        string    `json:"channelName,omitempty"`
	ChannelDescription string    `json:"channelDescription,omitempty"`
	ChannelBanner      string    `json:"channelBanner,omitempty"`
	SubscriberCount    int       `json:"subscriberCount"`
	IsAdmin            bool      `json:"isAdmin"`
	GitHubID           int64     `json:"-"` // 0 unless the account was created via GitHub OAuth
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// AdminUser is the user directory row returned to admins. VideoCount is a
// live subquery, not a stored column.
type AdminUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Avatar          string    `json:"avatar"`
	SubscriberCount int       `json:"subscriberCount"`
	VideoCount      int       `json:"videoCount"`
	CreatedAt       time.Time `json:"createdAt"`
}
