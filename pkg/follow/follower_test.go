package follow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twfollow/pkg/browser"
	"twfollow/pkg/followlog"
	"twfollow/pkg/quota"
	"twfollow/pkg/storage"
)

func TestFollowUserJumpedDoesNothing(t *testing.T) {
	h := newHarness(&fakeBrowser{labels: []string{"Follow"}})
	h.quota.verdicts = []quota.Verdict{quota.Jump}

	res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)

	assert.Equal(t, Result{Success: false, Reason: ReasonJumped}, res)
	assert.Empty(t, h.browser.navigations)
	assert.Empty(t, h.browser.waits)
	assert.Zero(t, h.browser.clicks)
	assert.Empty(t, h.counter.writes)
	assert.Empty(t, h.pool.entries)
}

func TestFollowUserClicksVerifiesAndPersists(t *testing.T) {
	for _, label := range []string{"Follow", "Follow Back"} {
		t.Run(label, func(t *testing.T) {
			b := &fakeBrowser{labels: []string{label}, afterClick: "Following", userID: "12345"}
			h := newHarness(b)

			res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)

			assert.Equal(t, Result{Success: true, Reason: ReasonSuccess}, res)
			assert.Equal(t, 1, b.clicks)
			assert.Zero(t, b.reloads)
			assert.Equal(t, []string{
				"https://twitter.com/alice/", "https://twitter.com/alice/", "https://twitter.com/alice/",
			}, b.navigations)
			assert.Equal(t, []string{"profile:alice"}, b.idLookups)
			assert.Equal(t, []string{"alice"}, h.counter.writes)
			assert.Equal(t, []string{storage.ActionFollows}, h.quota.recorded)

			require.Len(t, h.pool.entries, 1)
			assert.Equal(t, followlog.Entry{Time: testNow, Username: "alice", UserID: "12345"}, h.pool.entries[0])
			assert.Equal(t, []time.Duration{10 * time.Second}, h.slept)
			assert.True(t, h.log.HasMessage("--> Followed 'alice'!"))
		})
	}
}

func TestFollowUserVerifiesAfterReload(t *testing.T) {
	b := &fakeBrowser{labels: []string{"Follow", "Following"}, userID: "1"}
	h := newHarness(b)

	res := h.follower.FollowUser(context.Background(), TrackPost, "alice", nil)

	assert.True(t, res.Success)
	assert.Equal(t, 1, b.reloads)
	assert.Empty(t, b.navigations, "post track never opens the profile")
}

func TestFollowUserPostReadsAuthorFromPost(t *testing.T) {
	b := &fakeBrowser{labels: []string{"Follow"}, afterClick: "Following", userID: "99"}
	h := newHarness(b)

	res := h.follower.FollowUser(context.Background(), TrackPost, "alice", nil)

	assert.True(t, res.Success)
	assert.Equal(t, []string{"post:alice"}, b.idLookups)
	assert.Empty(t, b.navigations)
	require.Len(t, h.pool.entries, 1)
	assert.Equal(t, "99", h.pool.entries[0].UserID)
}

func TestFollowUserUnverified(t *testing.T) {
	b := &fakeBrowser{labels: []string{"Follow", "Follow"}}
	h := newHarness(b)

	res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)

	assert.Equal(t, Result{Reason: ReasonUnverified}, res)
	assert.Empty(t, h.counter.writes)
	assert.Empty(t, h.pool.entries)
}

func TestFollowUserUserIDFallsBackToUnknown(t *testing.T) {
	b := &fakeBrowser{labels: []string{"Follow"}, afterClick: "Requested", userIDErr: assert.AnError}
	h := newHarness(b)

	res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)

	assert.True(t, res.Success)
	require.Len(t, h.pool.entries, 1)
	assert.Equal(t, followlog.UnknownUserID, h.pool.entries[0].UserID)
}

func TestFollowUserNeverClicks(t *testing.T) {
	tests := []struct {
		label  string
		reason string
		log    string
	}{
		{"Following", ReasonAlreadyFollowed, "--> Already following 'alice'!"},
		{"Requested", ReasonAlreadyFollowed, "--> Already requested 'alice' to follow!"},
		{"Unblock", "Unblock", "--> Couldn't follow 'alice'!\t~user is in block"},
		{"UNAVAILABLE", "UNAVAILABLE", "--> Couldn't follow 'alice'!\t~user is inaccessible"},
		{"Edit profile", ReasonUnknownStatus, "--> Couldn't follow 'alice'!\t~unknown status"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			b := &fakeBrowser{labels: []string{tt.label}}
			h := newHarness(b)

			res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)

			assert.Equal(t, Result{Reason: tt.reason}, res)
			assert.Zero(t, b.clicks)
			assert.Empty(t, h.counter.writes)
			assert.True(t, h.log.HasMessage(tt.log))
		})
	}
}

func TestFollowUserAlreadyFollowedPauses(t *testing.T) {
	h := newHarness(&fakeBrowser{labels: []string{"Following"}})
	h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)
	assert.Equal(t, []time.Duration{time.Second}, h.slept)
}

func TestFollowUserNotFound(t *testing.T) {
	t.Run("emergency", func(t *testing.T) {
		b := &fakeBrowser{emergency: true, reason: browser.ReasonNotLoggedIn}
		h := newHarness(b)

		res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)
		assert.Equal(t, Result{Reason: browser.ReasonNotLoggedIn}, res)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		b := &fakeBrowser{}
		h := newHarness(b)

		res := h.follower.FollowUser(context.Background(), TrackProfile, "alice", nil)
		assert.Equal(t, Result{Reason: ReasonUnexpected}, res)
		assert.True(t, h.log.HasMessage("--> Couldn't follow 'alice'!\t~unexpected failure"))
		assert.Zero(t, b.clicks)
	})
}

func TestFollowUserDialog(t *testing.T) {
	b := &fakeBrowser{userID: "should not be used"}
	h := newHarness(b)
	button := &fakeElement{text: "Follow"}

	res := h.follower.FollowUser(context.Background(), TrackDialog, "alice", button)

	assert.Equal(t, Result{Success: true, Reason: ReasonSuccess}, res)
	assert.Empty(t, b.idLookups)
	assert.Same(t, button, b.lastClicked)
	assert.Empty(t, b.navigations)
	assert.Empty(t, b.waits)
	require.Len(t, h.pool.entries, 1)
	assert.Equal(t, followlog.UnknownUserID, h.pool.entries[0].UserID)
	assert.Equal(t, []time.Duration{3 * time.Second, 10 * time.Second}, h.slept)
	assert.Equal(t, []string{"alice"}, h.counter.writes)
}

func TestFollowUserDialogClickFails(t *testing.T) {
	b := &fakeBrowser{clickErr: assert.AnError}
	h := newHarness(b)

	res := h.follower.FollowUser(context.Background(), TrackDialog, "alice", &fakeElement{})
	assert.Equal(t, Result{Reason: ReasonUnexpected}, res)

	res = h.follower.FollowUser(context.Background(), TrackDialog, "alice", nil)
	assert.Equal(t, Result{Reason: ReasonUnexpected}, res)
	assert.Empty(t, h.counter.writes)
}

func TestGetFollowingStatusRetriesOnce(t *testing.T) {
	b := &fakeBrowser{labels: []string{"", "Follow Back"}}
	h := newHarness(b)

	status, el := h.follower.GetFollowingStatus(context.Background(), TrackProfile, "bob")

	assert.Equal(t, StatusFollowBack, status)
	require.NotNil(t, el)
	assert.Equal(t, 1, b.reloads)
	assert.Equal(t, []time.Duration{7 * time.Second, 14 * time.Second}, b.waits)
	assert.Equal(t, []string{storage.ActionServerCalls}, h.quota.recorded)
}

func TestGetFollowingStatusNotFound(t *testing.T) {
	b := &fakeBrowser{}
	h := newHarness(b)

	status, el := h.follower.GetFollowingStatus(context.Background(), TrackProfile, "bob")

	assert.Equal(t, StatusNotFound, status)
	assert.Nil(t, el)
	assert.Len(t, b.waits, 2)
	assert.Equal(t, 1, b.reloads)
	assert.True(t, h.log.HasMessage("--> Unable to detect the following status of 'bob'!"))
}

func TestGetFollowingStatusCancelled(t *testing.T) {
	b := &fakeBrowser{}
	h := newHarness(b)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, _ := h.follower.GetFollowingStatus(ctx, TrackPost, "bob")

	assert.Equal(t, StatusNotFound, status)
	assert.Len(t, b.waits, 1)
	assert.Zero(t, b.reloads)
}
