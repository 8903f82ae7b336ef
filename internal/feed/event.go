// Package feed distributes content change notifications to live views.
package feed

import (
	"encoding/json"
	"fmt"
)

// Streams a client can subscribe to.
const (
	StreamPosts    = "posts"
	StreamComments = "comments"
)

// Type is the kind of change.
type Type string

// The available change types.
const (
	Insert Type = "insert"
	Update Type = "update"
	Delete Type = "delete"
)

// Event describes a single row change.
type Event struct {
	Table  string `json:"table"`
	Type   Type   `json:"type"`
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

// Filter selects the events a subscriber receives. Empty fields match anything.
type Filter struct {
	Table  string
	PostID string
}

// Match reports whether the event passes the filter.
func (f Filter) Match(e Event) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	if f.PostID != "" && f.PostID != e.PostID {
		return false
	}
	return true
}

// Publisher accepts change events.
type Publisher interface {
	Publish(Event)
}

// Subscriber hands out subscriptions to change events.
type Subscriber interface {
	Subscribe(Filter) *Subscription
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard is a Publisher that drops every event. It is used when the
// database itself announces changes.
var Discard Publisher = discard{}

// ParseNotification decodes a JSON change payload.
func ParseNotification(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("invalid change payload: %w", err)
	}
	switch e.Table {
	case StreamPosts, StreamComments:
	default:
		return Event{}, fmt.Errorf("unknown table %q in change payload", e.Table)
	}
	return e, nil
}
