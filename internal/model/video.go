package model

import "time"

// Video lifecycle states. A video enters as StatusPending when it comes in
// through the moderated upload path and as StatusLive when created directly
// from a URL. Only live videos appear in public listings.
const (
	StatusPending  = "pending"
	StatusLive     = "live"
	StatusRejected = "rejected"
)

// Video is the stored row for a video. Every video is owned by exactly one
// user and is cascade-deleted with its owner.
//
// LikesCount and DislikesCount are advisory counters: they are maintained on
// every reaction toggle, but no read path trusts them. API responses carry
// live aggregates instead (see VideoView).
type Video struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	VideoPath     string     `json:"-"` // local file path for uploaded videos, empty for URL-only
	VideoURL      string     `json:"videoUrl"`
	Status        string     `json:"status"`
	Duration      int        `json:"duration"`
	Views         int        `json:"views"`
	LikesCount    int        `json:"-"`
	DislikesCount int        `json:"-"`
	Category      string     `json:"category"`
	Tags          string     `json:"tags,omitempty"`
	Privacy       string     `json:"privacy"`
	CreatedAt     time.Time  `json:"createdAt"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// VideoView is the read-side projection of a video: the stored row joined
// with the uploader's display name and avatar, plus like/dislike counts
// computed live over the likes table. This is what every list and detail
// endpoint returns.
type VideoView struct {
	Video
	Channel  string `json:"channel"`
	Avatar   string `json:"avatar"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}

// Chapter is a named timestamp within a video.
type Chapter struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	Timestamp int       `json:"timestamp"` // seconds from the start
	CreatedAt time.Time `json:"createdAt"`
}

// Subtitle is a caption track attached to a video.
type Subtitle struct {
	ID              string    `json:"id"`
	VideoID         string    `json:"videoId"`
	Language        string    `json:"language"`
	SubtitleURL     string    `json:"subtitleUrl,omitempty"`
	SubtitleData    string    `json:"subtitleData,omitempty"`
	IsAutoGenerated bool      `json:"isAutoGenerated"`
	CreatedAt       time.Time `json:"createdAt"`
}
