package model

import (
	"fmt"
	"strconv"
)

// Signal is pushed to a viewer's realtime connection. Signals carry hints
// only, clients fetch the actual feed through the session endpoints.
type Signal struct {
	SignalType    SignalType `json:"signalType"`
	SessionID     string     `json:"sessionId,omitempty"`
	NewPostsCount int        `json:"newPostsCount,omitempty"`
	// Message is the banner a client can show as is.
	Message string `json:"message,omitempty"`
}

// NewSignal builds a signal with its banner message filled in.
func NewSignal(signalType SignalType, sessionID string, newPostsCount int) *Signal {
	s := &Signal{
		SignalType:    signalType,
		SessionID:     sessionID,
		NewPostsCount: newPostsCount,
	}
	s.Message = s.Describe()
	return s
}

type SignalType string

const (
	// Newer posts than the displayed ones are held and can be shown on demand.
	SignalTypeNewPosts SignalType = "NEW_POSTS"
	// The backing query returned nothing, the displayed feed is now empty.
	SignalTypeFeedEmpty SignalType = "FEED_EMPTY"
	// The session was refreshed and its displayed snapshot replaced.
	SignalTypeFeedSettled SignalType = "FEED_SETTLED"
)

func (e SignalType) IsValid() bool {
	switch e {
	case SignalTypeNewPosts, SignalTypeFeedEmpty, SignalTypeFeedSettled:
		return true
	}
	return false
}

func (e SignalType) String() string {
	return string(e)
}

func (e *SignalType) UnmarshalText(text []byte) error {
	*e = SignalType(text)
	if !e.IsValid() {
		return fmt.Errorf("%s is not a valid SignalType", string(text))
	}
	return nil
}

func (e SignalType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Describe renders the human readable banner for a signal, e.g.
// "3 new posts available".
func (s *Signal) Describe() string {
	switch s.SignalType {
	case SignalTypeNewPosts:
		if s.NewPostsCount == 1 {
			return "1 new post available"
		}
		return strconv.Itoa(s.NewPostsCount) + " new posts available"
	case SignalTypeFeedEmpty:
		return "no posts match your filters"
	}
	return ""
}
