package follow

import (
	"context"
	"fmt"
	"time"

	"twfollow/pkg/browser"
	"twfollow/pkg/config"
	"twfollow/pkg/followlog"
	"twfollow/pkg/logger"
	"twfollow/pkg/quota"
	"twfollow/pkg/retry"
	"twfollow/pkg/storage"
)

// Result reasons
const (
	ReasonSuccess         = "success"
	ReasonJumped          = "jumped"
	ReasonAlreadyFollowed = "already followed"
	ReasonUnexpected      = "unexpected failure"
	ReasonUnknownStatus   = "unknown status"
	ReasonUnverified      = "unverified follow"
	ReasonRestricted      = "restricted"
)

// Result is the outcome of one follow attempt
type Result struct {
	Success bool
	Reason  string
}

// Browser is the page automation the follower drives
type Browser interface {
	ProfileURL(username string) string
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, xpath string, timeout time.Duration) (browser.Element, error)
	Reload(ctx context.Context) error
	Click(ctx context.Context, el browser.Element) error
	ClickVisibly(ctx context.Context, el browser.Element) error
	UserID(ctx context.Context, username string) (string, error)
	PostAuthorID(ctx context.Context, username string) (string, error)
	Emergency(ctx context.Context, login string) (bool, string)
}

// Counter is the follow restriction store
type Counter interface {
	Write(ctx context.Context, username string)
	Read(ctx context.Context, username string, limit int) bool
}

// Quota gates and counts actions
type Quota interface {
	Check(ctx context.Context, action string) quota.Verdict
	Record(ctx context.Context, action string)
}

// Pool records followed accounts
type Pool interface {
	Append(login string, entry followlog.Entry)
}

// Delays computes the pause after an action
type Delays interface {
	Delay(action string) time.Duration
}

// Progress remembers handled usernames across runs
type Progress interface {
	Done(username string) bool
	Record(username string, success bool, reason string)
}

// Deps are the collaborators of a Follower. Progress may be nil.
type Deps struct {
	Browser  Browser
	Counter  Counter
	Quota    Quota
	Pool     Pool
	Delays   Delays
	Progress Progress
}

// Follower follows accounts through the browser and keeps the counters,
// activity and follow pool up to date
type Follower struct {
	login     string
	browser   config.BrowserConfig
	follow    config.FollowConfig
	jumpLimit int
	deps      Deps
	log       logger.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates a follower acting as cfg.Account.Username
func New(cfg *config.Config, deps Deps, log logger.Logger) *Follower {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Follower{
		login:     cfg.Account.Username,
		browser:   cfg.Browser,
		follow:    cfg.Follow,
		jumpLimit: cfg.Quota.JumpLimit,
		deps:      deps,
		log:       log.WithField("component", "follow"),
		now:       time.Now,
		sleep:     retry.Wait,
	}
}

// FollowUser follows target on track. button is only used on the dialog
// track. Every failure is reported through the result reason.
func (f *Follower) FollowUser(ctx context.Context, track Track, target string, button browser.Element) Result {
	res := f.followUser(ctx, track, target, button)
	logger.LogFollowResult(f.log, target, string(track), res.Success, res.Reason)
	return res
}

func (f *Follower) followUser(ctx context.Context, track Track, target string, button browser.Element) Result {
	if f.deps.Quota.Check(ctx, storage.ActionFollows) == quota.Jump {
		return Result{Reason: ReasonJumped}
	}

	switch track {
	case TrackProfile, TrackPost:
		if track == TrackProfile {
			if err := f.deps.Browser.Navigate(ctx, f.deps.Browser.ProfileURL(target)); err != nil {
				f.log.WithError(err).Warn(fmt.Sprintf("Failed to open profile of '%s'", target))
			}
		}

		status, el := f.GetFollowingStatus(ctx, track, target)
		switch {
		case status.Followable():
			if err := f.deps.Browser.ClickVisibly(ctx, el); err != nil {
				f.log.WithError(err).Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~click failed", target))
				return Result{Reason: ReasonUnexpected}
			}
			if !f.verifyFollow(ctx, track, target, el) {
				f.log.Warn(fmt.Sprintf("--> Couldn't verify follow of '%s'", target))
				return Result{Reason: ReasonUnverified}
			}

		case status.Followed():
			if status == StatusFollowing {
				f.log.Info(fmt.Sprintf("--> Already following '%s'!", target))
			} else {
				f.log.Info(fmt.Sprintf("--> Already requested '%s' to follow!", target))
			}
			_ = f.sleep(ctx, f.follow.AlreadyPause)
			return Result{Reason: ReasonAlreadyFollowed}

		case status == StatusUnblock || status == StatusUnavailable:
			msg := "user is in block"
			if status == StatusUnavailable {
				msg = "user is inaccessible"
			}
			f.log.Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~%s", target, msg))
			return Result{Reason: status.String()}

		case status == StatusNotFound:
			if emergency, reason := f.deps.Browser.Emergency(ctx, f.login); emergency {
				return Result{Reason: reason}
			}
			f.log.Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~unexpected failure", target))
			return Result{Reason: ReasonUnexpected}

		default:
			f.log.Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~unknown status", target))
			return Result{Reason: ReasonUnknownStatus}
		}

	case TrackDialog:
		if button == nil {
			f.log.Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~no button", target))
			return Result{Reason: ReasonUnexpected}
		}
		if err := f.deps.Browser.Click(ctx, button); err != nil {
			f.log.WithError(err).Warn(fmt.Sprintf("--> Couldn't follow '%s'!\t~click failed", target))
			return Result{Reason: ReasonUnexpected}
		}
		_ = f.sleep(ctx, f.follow.DialogPause)

	default:
		f.log.Error(fmt.Sprintf("invalid track %q", track))
		return Result{Reason: ReasonUnexpected}
	}

	f.afterFollow(ctx, track, target)
	return Result{Success: true, Reason: ReasonSuccess}
}

// afterFollow counts the follow, logs it to the pool, bumps the counter and
// waits out the follow delay
func (f *Follower) afterFollow(ctx context.Context, track Track, target string) {
	f.log.Info(fmt.Sprintf("--> Followed '%s'!", target))
	f.deps.Quota.Record(ctx, storage.ActionFollows)

	userID := followlog.UnknownUserID
	if track != TrackDialog {
		var (
			id  string
			err error
		)
		if track == TrackPost {
			id, err = f.deps.Browser.PostAuthorID(ctx, target)
		} else {
			id, err = f.deps.Browser.UserID(ctx, target)
		}
		if err != nil {
			f.log.WithError(err).Debug(fmt.Sprintf("Could not resolve user id of '%s'", target))
		} else {
			userID = id
		}
	}

	f.deps.Pool.Append(f.login, followlog.Entry{
		Time:     f.now(),
		Username: target,
		UserID:   userID,
	})
	f.deps.Counter.Write(ctx, target)

	_ = f.sleep(ctx, f.deps.Delays.Delay(storage.ActionFollows))
}

// verifyFollow checks the clicked button, then reloads once and reads the
// status again. Only a button still offering to follow counts as unverified.
func (f *Follower) verifyFollow(ctx context.Context, track Track, target string, el browser.Element) bool {
	if text, err := el.Text(); err == nil && ParseStatus(text).Followed() {
		return true
	}

	if err := f.deps.Browser.Reload(ctx); err != nil {
		f.log.WithError(err).Warn("Failed to reload page for follow verification")
	}
	status, _ := f.GetFollowingStatus(ctx, track, target)
	return !status.Followable()
}

// GetFollowingStatus reads the follow button of person. On the profile track
// the profile is opened first. The button gets status_wait to appear; if it
// does not, the page is reloaded once and it gets status_retry_wait. When both
// fail the result is (StatusNotFound, nil).
func (f *Follower) GetFollowingStatus(ctx context.Context, track Track, person string) (FollowingStatus, browser.Element) {
	if track == TrackProfile {
		if err := f.deps.Browser.Navigate(ctx, f.deps.Browser.ProfileURL(person)); err != nil {
			f.log.WithError(err).Warn(fmt.Sprintf("Failed to open profile of '%s'", person))
		}
	}

	waits := []time.Duration{f.browser.StatusWait, f.browser.StatusRetryWait}
	attempt := 0
	el, err := retry.DoWithResult(func() (browser.Element, error) {
		wait := waits[attempt]
		attempt++
		return f.deps.Browser.WaitVisible(ctx, f.browser.FollowButtonXPath, wait)
	}, &retry.Config{
		MaxAttempts: len(waits),
		Backoff:     &retry.ConstantBackoff{},
		RetryIf:     func(error) bool { return ctx.Err() == nil },
		OnRetry: func(int, error) error {
			if err := f.deps.Browser.Reload(ctx); err != nil {
				f.log.WithError(err).Warn("Failed to reload page")
			}
			f.deps.Quota.Record(ctx, storage.ActionServerCalls)
			return nil
		},
		Context: ctx,
		Logger:  f.log,
	})
	if err != nil {
		f.log.WithError(err).Error(fmt.Sprintf("--> Unable to detect the following status of '%s'!", person))
		return StatusNotFound, nil
	}

	text, err := el.Text()
	if err != nil {
		f.log.WithError(err).Error(fmt.Sprintf("--> Unable to read the following status of '%s'!", person))
		return StatusNotFound, nil
	}
	return ParseStatus(text), el
}
