package quota

import (
	"context"
	"fmt"
	"slices"
	"time"

	"twfollow/pkg/config"
	"twfollow/pkg/logger"
	"twfollow/pkg/retry"
)

// Verdict is the outcome of a quota check
type Verdict int

const (
	// Proceed lets the action run
	Proceed Verdict = iota
	// Jump skips the action because a peak was reached
	Jump
)

func (v Verdict) String() string {
	if v == Jump {
		return "jump"
	}
	return "proceed"
}

// ActivityStore counts and records actions per hour
type ActivityStore interface {
	ActivityCount(ctx context.Context, action string, since time.Time) (int, error)
	RecordActivity(ctx context.Context, action string)
}

// Supervisor compares recorded activity against hourly and daily peaks
type Supervisor struct {
	cfg   config.QuotaConfig
	store ActivityStore
	log   logger.Logger
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor creates a supervisor over store
func NewSupervisor(cfg config.QuotaConfig, store ActivityStore, log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Supervisor{
		cfg:   cfg,
		store: store,
		log:   log.WithField("component", "quota"),
		now:   time.Now,
		sleep: retry.Wait,
	}
}

// Check decides whether action may run now. When a peak is reached and the
// action is listed in sleep_after, Check sleeps until the window rolls over
// and then proceeds; otherwise it returns Jump.
func (s *Supervisor) Check(ctx context.Context, action string) Verdict {
	if !s.cfg.Enabled {
		return Proceed
	}
	peak, ok := s.cfg.Peaks[action]
	if !ok || (peak.Hourly == 0 && peak.Daily == 0) {
		return Proceed
	}

	now := s.now()
	window, reached := s.reached(ctx, action, peak, now)
	if !reached {
		return Proceed
	}

	if !slices.Contains(s.cfg.SleepAfter, action) {
		s.log.WarnWithFields(fmt.Sprintf("Quota supervisor: %s %s peak reached, jumping", window, action), map[string]interface{}{
			"action": action,
		})
		return Jump
	}

	wake := nextHour(now)
	if window == "daily" {
		wake = nextDay(now)
	}
	d := wake.Sub(now)
	s.log.WarnWithFields(fmt.Sprintf("Quota supervisor: %s %s peak reached, sleeping until %s", window, action, wake.Format("15:04")), map[string]interface{}{
		"action":   action,
		"sleep_ms": d.Milliseconds(),
	})
	if err := s.sleep(ctx, d); err != nil {
		return Jump
	}
	return Proceed
}

// reached reports which window, if any, has hit its peak. Count failures are
// logged and treated as below peak.
func (s *Supervisor) reached(ctx context.Context, action string, peak config.PeakPair, now time.Time) (string, bool) {
	if peak.Daily > 0 {
		daily, err := s.store.ActivityCount(ctx, action, startOfDay(now))
		if err != nil {
			s.log.WithError(err).Error("Quota supervisor could not count daily activity")
		} else if daily >= peak.Daily {
			return "daily", true
		}
	}
	if peak.Hourly > 0 {
		hourly, err := s.store.ActivityCount(ctx, action, startOfHour(now))
		if err != nil {
			s.log.WithError(err).Error("Quota supervisor could not count hourly activity")
		} else if hourly >= peak.Hourly {
			return "hourly", true
		}
	}
	return "", false
}

// Record counts one more action in the current hour
func (s *Supervisor) Record(ctx context.Context, action string) {
	s.store.RecordActivity(ctx, action)
}

// startOfHour is the local hour holding t
func startOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

func nextHour(t time.Time) time.Time {
	return startOfHour(t).Add(time.Hour)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func nextDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}
