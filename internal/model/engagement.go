package model

import "time"

// ReactionKind is the type of a reaction. Exactly one reaction row may exist
// per (user, video) and per (user, comment) pair, so a user is always in one
// of three states towards a target: none, liked, or disliked.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is one of the two known kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// ToggleAction is the outcome of a reaction toggle.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"   // no prior reaction, one was inserted
	ToggleUpdated ToggleAction = "updated" // prior reaction of the opposite kind was overwritten
	ToggleRemoved ToggleAction = "removed" // prior reaction of the same kind was deleted
)

// SubscribeAction is the outcome of a subscription toggle.
type SubscribeAction string

const (
	Subscribed   SubscribeAction = "subscribed"
	Unsubscribed SubscribeAction = "unsubscribed"
)

// Subscription is a (follower, channel) edge. Uniqueness is enforced at the
// schema level; toggling the edge atomically adjusts the channel's
// subscriber_count.
type Subscription struct {
	ID                  string    `json:"id"`
	FollowerID          string    `json:"followerId"`
	ChannelID           string    `json:"channelId"`
	NotificationEnabled bool      `json:"notificationEnabled"`
	CreatedAt           time.Time `json:"createdAt"`
}

// SubscriptionView joins a subscription with the channel's display data.
type SubscriptionView struct {
	Subscription
	ChannelName   string `json:"channelName"`
	ChannelAvatar string `json:"channelAvatar"`
}

// WatchHistoryEntry records how far a user got through a video. One row per
// (user, video); reporting watch time again overwrites it (last write wins).
type WatchHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	WatchTime int       `json:"watchTime"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryVideoView is a video joined with the viewer's watch progress,
// returned by the watch-history listing.
type HistoryVideoView struct {
	VideoView
	WatchTime   int       `json:"watchTime"`
	LastWatched time.Time `json:"lastWatched"`
}

// AnalyticsEvent is one playback report. The analytics table is append-only:
// rows are inserted on every view report and never updated.
type AnalyticsEvent struct {
	ID            string    `json:"id"`
	VideoID       string    `json:"videoId"`
	UserID        string    `json:"userId,omitempty"` // empty for anonymous views
	SessionID     string    `json:"sessionId,omitempty"`
	WatchTime     int       `json:"watchTime"`
	Completed     bool      `json:"completed"`
	UniqueVisitor bool      `json:"uniqueVisitor"`
	DeviceType    string    `json:"deviceType,omitempty"`
	Location      string    `json:"location,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AnalyticsSummary aggregates the event log for one video.
type AnalyticsSummary struct {
	TotalViews     int              `json:"totalViews"`
	UniqueViewers  int              `json:"uniqueViewers"`
	TotalWatchTime int              `json:"totalWatchTime"`
	Events         []AnalyticsEvent `json:"events"`
}
