package notifications

import (
	"encoding/json"
	"time"

	"livefeed/internal/models"
)

// Feed event actions pushed to connected clients.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	// EventName is the envelope type for all feed events.
	EventName = "posts"
)

// PostSnapshot is the wire representation of a post inside a feed event.
type PostSnapshot struct {
	ID        uint                  `json:"id"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	ImageURL  string                `json:"image_url"`
	Version   int                   `json:"version"`
	Creator   models.CreatorSummary `json:"creator"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SnapshotPost builds the wire snapshot from a post with its creator loaded.
func SnapshotPost(post *models.Post) *PostSnapshot {
	return &PostSnapshot{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Version:   post.Version,
		Creator:   post.Creator.Summary(),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// FeedEvent describes one change to the shared feed. Create and update carry
// the full post snapshot, delete only carries the ID.
type FeedEvent struct {
	Action string        `json:"action"`
	Post   *PostSnapshot `json:"post,omitempty"`
	PostID uint          `json:"post_id,omitempty"`
}

// envelope is the outer frame every websocket message uses.
type envelope struct {
	Type    string    `json:"type"`
	Payload FeedEvent `json:"payload"`
}

// EncodeFeedEvent wraps a feed event in the wire envelope.
func EncodeFeedEvent(ev FeedEvent) ([]byte, error) {
	return json.Marshal(envelope{Type: EventName, Payload: ev})
}

// DecodeFeedEvent parses a wire frame. The bool is false for frames that
// are not feed events, such as the buffer overflow notice.
func DecodeFeedEvent(data []byte) (FeedEvent, bool, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return FeedEvent{}, false, err
	}
	if env.Type != EventName {
		return FeedEvent{}, false, nil
	}
	return env.Payload, true, nil
}
