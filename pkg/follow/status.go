package follow

import (
	"fmt"
	"strings"
)

// FollowingStatus is the label of the follow button on a profile or post
type FollowingStatus int

const (
	// StatusUnknown is a label that was read but not recognised
	StatusUnknown FollowingStatus = iota
	StatusFollow
	StatusFollowBack
	StatusFollowing
	StatusRequested
	StatusUnblock
	StatusUnavailable
	// StatusNotFound means no follow button was detected
	StatusNotFound
)

var statusLabels = map[FollowingStatus]string{
	StatusFollow:      "Follow",
	StatusFollowBack:  "Follow Back",
	StatusFollowing:   "Following",
	StatusRequested:   "Requested",
	StatusUnblock:     "Unblock",
	StatusUnavailable: "UNAVAILABLE",
}

// ParseStatus maps a button label to its status; unrecognised labels are
// StatusUnknown
func ParseStatus(label string) FollowingStatus {
	label = strings.TrimSpace(label)
	for status, l := range statusLabels {
		if l == label {
			return status
		}
	}
	return StatusUnknown
}

// String returns the button label
func (s FollowingStatus) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	if s == StatusNotFound {
		return "not found"
	}
	return "unknown"
}

// Followable reports whether clicking the button follows the account
func (s FollowingStatus) Followable() bool {
	return s == StatusFollow || s == StatusFollowBack
}

// Followed reports whether the account is already followed or requested
func (s FollowingStatus) Followed() bool {
	return s == StatusFollowing || s == StatusRequested
}

// Track is the page a follow happens on
type Track string

const (
	TrackProfile Track = "profile"
	TrackPost    Track = "post"
	TrackDialog  Track = "dialog"
)

// ParseTrack validates a track name
func ParseTrack(s string) (Track, error) {
	switch t := Track(strings.ToLower(strings.TrimSpace(s))); t {
	case TrackProfile, TrackPost, TrackDialog:
		return t, nil
	default:
		return "", fmt.Errorf("invalid track %q: must be one of profile, post, dialog", s)
	}
}
