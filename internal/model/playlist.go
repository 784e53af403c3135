package model

import "time"

// Playlist is a user-owned ordered collection of videos.
type Playlist struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Privacy      string    `json:"privacy"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	VideoCount   int       `json:"videoCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PlaylistVideo is the ordered membership of a video in a playlist.
// A video appears at most once per playlist; Position is 1-based and
// assigned as max(position)+1 on insert.
type PlaylistVideo struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	VideoID    string    `json:"videoId"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"addedAt"`
}
