package storage

import (
	"context"
	"database/sql"
	"time"

	errs "twfollow/pkg/errors"
)

// Activity actions counted per hour
const (
	ActionFollows     = "follows"
	ActionServerCalls = "server_calls"
)

// RecordActivity adds one to the current hour bucket of action.
// Failures are logged and dropped.
func (s *Store) RecordActivity(ctx context.Context, action string) {
	if err := s.IncrementActivity(ctx, action); err != nil {
		s.log.WithError(err).WithField("action", action).Error("Error while recording activity")
	}
}

// IncrementActivity adds one to the current hour bucket of action.
func (s *Store) IncrementActivity(ctx context.Context, action string) error {
	hour := startOfHour(s.now()).Unix()
	return s.withProfile(ctx, func(db *sql.DB, profileID int64) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO recordActivity (profile_id, action, hour, count) VALUES (?, ?, ?, 1)
			ON CONFLICT(profile_id, action, hour) DO UPDATE SET count = count + 1`,
			profileID, action, hour)
		if err != nil {
			return errs.Store("failed to record activity", err)
		}
		return nil
	})
}

// ActivityCount sums the buckets of action whose hour starts at or after
// the local hour holding since.
func (s *Store) ActivityCount(ctx context.Context, action string, since time.Time) (int, error) {
	var total int
	err := s.withProfile(ctx, func(db *sql.DB, profileID int64) error {
		err := db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(count), 0) FROM recordActivity WHERE profile_id = ? AND action = ? AND hour >= ?`,
			profileID, action, startOfHour(since).Unix()).Scan(&total)
		if err != nil {
			return errs.Store("failed to count activity", err)
		}
		return nil
	})
	return total, err
}

// startOfHour is the local hour holding t. Buckets are keyed by it so daily
// windows start at local midnight in every zone.
func startOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}
