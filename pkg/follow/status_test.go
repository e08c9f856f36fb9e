package follow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusRoundTrip(t *testing.T) {
	for _, status := range []FollowingStatus{
		StatusFollow, StatusFollowBack, StatusFollowing,
		StatusRequested, StatusUnblock, StatusUnavailable,
	} {
		assert.Equal(t, status, ParseStatus(status.String()), status.String())
	}

	assert.Equal(t, StatusFollow, ParseStatus("  Follow\n"))
	assert.Equal(t, StatusUnknown, ParseStatus("Unfollow"))
	assert.Equal(t, StatusUnknown, ParseStatus("follow"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
	assert.Equal(t, "not found", StatusNotFound.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusFollow.Followable())
	assert.True(t, StatusFollowBack.Followable())
	assert.False(t, StatusFollowing.Followable())
	assert.True(t, StatusFollowing.Followed())
	assert.True(t, StatusRequested.Followed())
	assert.False(t, StatusUnblock.Followed())
	assert.False(t, StatusNotFound.Followable())
}

func TestParseTrack(t *testing.T) {
	for _, name := range []string{"profile", "post", "dialog", " Profile "} {
		_, err := ParseTrack(name)
		require.NoError(t, err, name)
	}

	track, _ := ParseTrack("dialog")
	assert.Equal(t, TrackDialog, track)

	_, err := ParseTrack("timeline")
	assert.Error(t, err)
}
