package model

import "time"

// Comment is attached to a video and optionally replies to another comment
// via ParentID, forming a tree. Deleting a comment deletes its whole reply
// subtree; deleting the video deletes every comment on it.
type Comment struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	UserID     string    `json:"userId"`
	Text       string    `json:"text"`
	ParentID   string    `json:"parentId,omitempty"`
	LikesCount int       `json:"-"` // advisory, see Video.LikesCount
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentView joins a comment with its author's name and avatar for API
// responses.
type CommentView struct {
	Comment
	Author string `json:"author"`
	Avatar string `json:"avatar"`
}
