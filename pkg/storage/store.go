package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	errs "twfollow/pkg/errors"
	"twfollow/pkg/logger"
)

// FollowRecord is the follow counter of one username for one profile
type FollowRecord struct {
	ProfileID int64
	Username  string
	Times     int
}

// Store is the follow restriction and activity database of one logged-in
// account. It holds no connection: every call opens the database, runs its
// statements and closes it again.
type Store struct {
	path  string
	login string
	log   logger.Logger
	now   func() time.Time
}

// New creates a store for login backed by the SQLite file at path
func New(path, login string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		path:  path,
		login: login,
		log:   log.WithField("component", "storage"),
		now:   time.Now,
	}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Write records one more follow of username. Failures are logged and dropped.
func (s *Store) Write(ctx context.Context, username string) {
	if _, err := s.Increment(ctx, username); err != nil {
		s.log.WithError(err).WithField("username", username).Error("Error while writing follow restriction")
	}
}

// Read reports whether username has been followed at least limit times.
// Failures are logged and read as false.
func (s *Store) Read(ctx context.Context, username string, limit int) bool {
	exceeded, err := s.Exceeded(ctx, username, limit)
	if err != nil {
		s.log.WithError(err).WithField("username", username).Error("Error while reading follow restriction")
		return false
	}
	return exceeded
}

// Lookup returns the record of username, or errors.ErrNotFound.
func (s *Store) Lookup(ctx context.Context, username string) (FollowRecord, error) {
	var rec FollowRecord
	err := s.withProfile(ctx, func(db *sql.DB, profileID int64) error {
		var err error
		rec, err = lookup(ctx, db, profileID, username)
		return err
	})
	return rec, err
}

// Increment creates the record of username with times=1 or adds one to it.
func (s *Store) Increment(ctx context.Context, username string) (FollowRecord, error) {
	var rec FollowRecord
	err := s.withProfile(ctx, func(db *sql.DB, profileID int64) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO followRestriction (profile_id, username, times) VALUES (?, ?, 1)
			ON CONFLICT(profile_id, username) DO UPDATE SET times = times + 1`,
			profileID, username)
		if err != nil {
			return errs.Store("failed to upsert follow restriction", err)
		}
		rec, err = lookup(ctx, db, profileID, username)
		return err
	})
	return rec, err
}

// Exceeded reports whether username has been followed limit times or more,
// logging the count when it has. A missing record is not exceeded.
func (s *Store) Exceeded(ctx context.Context, username string, limit int) (bool, error) {
	rec, err := s.Lookup(ctx, username)
	if errs.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Times < limit {
		return false, nil
	}

	qualifier := ""
	if rec.Times > limit {
		qualifier = "more than "
	}
	s.log.Info(fmt.Sprintf("---> %s has already been followed %s%d times", username, qualifier, limit))
	return true, nil
}

// List returns every record of the profile ordered by username.
func (s *Store) List(ctx context.Context) ([]FollowRecord, error) {
	var records []FollowRecord
	err := s.withProfile(ctx, func(db *sql.DB, profileID int64) error {
		rows, err := db.QueryContext(ctx,
			`SELECT profile_id, username, times FROM followRestriction WHERE profile_id = ? ORDER BY username`,
			profileID)
		if err != nil {
			return errs.Store("failed to list follow restrictions", err)
		}
		defer rows.Close()

		for rows.Next() {
			var rec FollowRecord
			if err := rows.Scan(&rec.ProfileID, &rec.Username, &rec.Times); err != nil {
				return errs.Store("failed to scan follow restriction", err)
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return errs.Store("failed to iterate follow restrictions", err)
		}
		return nil
	})
	return records, err
}

func lookup(ctx context.Context, db *sql.DB, profileID int64, username string) (FollowRecord, error) {
	rec := FollowRecord{ProfileID: profileID, Username: username}
	err := db.QueryRowContext(ctx,
		`SELECT times FROM followRestriction WHERE profile_id = ? AND username = ?`,
		profileID, username).Scan(&rec.Times)
	if errors.Is(err, sql.ErrNoRows) {
		return FollowRecord{}, errs.New(errs.ErrorTypeNotFound, fmt.Sprintf("no follow restriction for %s", username), nil)
	}
	if err != nil {
		return FollowRecord{}, errs.Store("failed to query follow restriction", err)
	}
	return rec, nil
}

// withProfile opens the database, ensures the schema and the profile row,
// runs fn and closes the database.
func (s *Store) withProfile(ctx context.Context, fn func(db *sql.DB, profileID int64) error) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	profileID, err := s.profileID(ctx, db)
	if err != nil {
		return err
	}
	return fn(db, profileID)
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, errs.Store("failed to create database directory", err)
	}

	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errs.Store("failed to open database", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) profileID(ctx context.Context, db *sql.DB) (int64, error) {
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO profiles (name) VALUES (?)`, s.login); err != nil {
		return 0, errs.Store("failed to create profile", err)
	}

	var id int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM profiles WHERE name = ?`, s.login).Scan(&id); err != nil {
		return 0, errs.Store("failed to resolve profile", err)
	}
	return id, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS followRestriction (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		username TEXT NOT NULL,
		times INTEGER NOT NULL DEFAULT 0,
		UNIQUE(profile_id, username)
	);

	CREATE TABLE IF NOT EXISTS recordActivity (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		action TEXT NOT NULL,
		hour INTEGER NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(profile_id, action, hour)
	);
	CREATE INDEX IF NOT EXISTS idx_activity_hour ON recordActivity(profile_id, action, hour);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errs.Store("failed to initialize schema", err)
	}
	return nil
}
