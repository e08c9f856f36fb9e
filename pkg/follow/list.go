package follow

import (
	"context"
	"fmt"
	"strings"

	"twfollow/pkg/browser"
)

// Summary tallies a follow list run
type Summary struct {
	Followed        int
	AlreadyFollowed int
	Restricted      int
	Jumped          int
	Failed          int
	Skipped         int
	// StoppedBy is set when the run ended before the last username
	StoppedBy string
	Results   map[string]Result
}

// Total is the number of usernames that reached a decision
func (s Summary) Total() int {
	return s.Followed + s.AlreadyFollowed + s.Restricted + s.Jumped + s.Failed
}

// FollowList follows each username on its profile. Usernames are trimmed and
// de-duplicated, the logged-in account is skipped, and accounts followed
// follow.times times already are skipped as restricted. The run stops after
// jump_limit consecutive jumps, on an emergency, or when ctx is done.
func (f *Follower) FollowList(ctx context.Context, usernames []string) Summary {
	summary := Summary{Results: make(map[string]Result)}
	seen := make(map[string]bool)
	jumps := 0

	for _, raw := range usernames {
		username := strings.TrimPrefix(strings.TrimSpace(raw), "@")
		if username == "" || seen[username] {
			continue
		}
		seen[username] = true

		if strings.EqualFold(username, f.login) {
			f.log.Debug("Skipping the logged-in account")
			summary.Skipped++
			continue
		}
		if f.deps.Progress != nil && f.deps.Progress.Done(username) {
			summary.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			summary.StoppedBy = err.Error()
			break
		}

		var res Result
		if f.deps.Counter.Read(ctx, username, f.follow.Times) {
			res = Result{Reason: ReasonRestricted}
		} else {
			res = f.FollowUser(ctx, TrackProfile, username, nil)
		}
		summary.Results[username] = res
		if f.deps.Progress != nil && !retryLater(res.Reason) {
			f.deps.Progress.Record(username, res.Success, res.Reason)
		}

		switch res.Reason {
		case ReasonSuccess:
			summary.Followed++
		case ReasonAlreadyFollowed:
			summary.AlreadyFollowed++
		case ReasonRestricted:
			summary.Restricted++
		case ReasonJumped:
			summary.Jumped++
		default:
			summary.Failed++
		}

		if res.Reason == ReasonJumped {
			jumps++
			if f.jumpLimit > 0 && jumps >= f.jumpLimit {
				summary.StoppedBy = fmt.Sprintf("%d consecutive jumps", jumps)
				f.log.Warn(fmt.Sprintf("Quota reached for follows, stopping after %d jumps", jumps))
				break
			}
			continue
		}
		jumps = 0

		if res.Reason == browser.ReasonNotConnected || res.Reason == browser.ReasonNotLoggedIn {
			summary.StoppedBy = res.Reason
			f.log.Error(fmt.Sprintf("Stopping follow list: %s", res.Reason))
			break
		}
	}

	f.log.InfoWithFields("Follow list finished", map[string]interface{}{
		"followed":         summary.Followed,
		"already_followed": summary.AlreadyFollowed,
		"restricted":       summary.Restricted,
		"jumped":           summary.Jumped,
		"failed":           summary.Failed,
		"skipped":          summary.Skipped,
		"stopped_by":       summary.StoppedBy,
	})
	return summary
}

// retryLater reports whether a result leaves the username for a later run
func retryLater(reason string) bool {
	switch reason {
	case ReasonJumped, browser.ReasonNotConnected, browser.ReasonNotLoggedIn:
		return true
	}
	return false
}
