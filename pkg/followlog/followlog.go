package followlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"twfollow/pkg/logger"
)

// TimeLayout is the timestamp format of each log line
const TimeLayout = "2006-01-02 15:04"

// UnknownUserID is recorded when the numeric id could not be resolved
const UnknownUserID = "unknown"

// Entry is one followed account
type Entry struct {
	Time     time.Time
	Username string
	UserID   string
}

// String formats the entry as a pool line without the newline
func (e Entry) String() string {
	return fmt.Sprintf("%s ~ %s,%s", e.Time.Format(TimeLayout), e.Username, e.UserID)
}

// Pool appends followed accounts to <folder>/<login>_followedPool.csv
type Pool struct {
	folder string
	logger logger.Logger
}

// New creates a pool writer rooted at folder
func New(folder string, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		folder: folder,
		logger: log.WithField("component", "followlog"),
	}
}

// Path returns the pool file of login
func (p *Pool) Path(login string) string {
	return filepath.Join(p.folder, fmt.Sprintf("%s_followedPool.csv", login))
}

// Append adds entry to the pool of login. Failures are logged and dropped.
func (p *Pool) Append(login string, entry Entry) {
	if err := p.append(login, entry); err != nil {
		p.logger.WithError(err).WithField("username", entry.Username).Error("Error while logging followed user")
	}
}

func (p *Pool) append(login string, entry Entry) error {
	if err := os.MkdirAll(p.folder, 0755); err != nil {
		return fmt.Errorf("failed to create log folder: %w", err)
	}

	f, err := os.OpenFile(p.Path(login), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open follow pool: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry.String() + "\n"); err != nil {
		return fmt.Errorf("failed to write follow pool: %w", err)
	}
	return nil
}

// Read parses the pool of login. A missing pool yields no entries.
func (p *Pool) Read(login string) ([]Entry, error) {
	f, err := os.Open(p.Path(login))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open follow pool: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		entry, err := ParseLine(text)
		if err != nil {
			p.logger.WithError(err).WithField("line", line).Warn("Skipping malformed follow pool line")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read follow pool: %w", err)
	}
	return entries, nil
}

// ParseLine parses "<time> ~ <username>,<user_id>"
func ParseLine(line string) (Entry, error) {
	stamp, rest, ok := strings.Cut(line, " ~ ")
	if !ok {
		return Entry{}, fmt.Errorf("missing separator in %q", line)
	}
	t, err := time.ParseInLocation(TimeLayout, stamp, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid timestamp %q: %w", stamp, err)
	}
	username, userID, ok := strings.Cut(rest, ",")
	if !ok || username == "" {
		return Entry{}, fmt.Errorf("invalid account %q", rest)
	}
	return Entry{Time: t, Username: username, UserID: userID}, nil
}
