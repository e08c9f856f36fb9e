package followlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twfollow/pkg/logger"
)

func TestAppendFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	pool := New(dir, logger.NewNopLogger())

	at := time.Date(2024, 3, 9, 7, 5, 42, 0, time.Local)
	pool.Append("me", Entry{Time: at, Username: "alice", UserID: "12345"})
	pool.Append("me", Entry{Time: at.Add(time.Minute), Username: "bob", UserID: UnknownUserID})

	data, err := os.ReadFile(filepath.Join(dir, "me_followedPool.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 07:05 ~ alice,12345\n2024-03-09 07:06 ~ bob,unknown\n", string(data))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewTestLogger()
	pool := New(dir, log)

	entries, err := pool.Read("me")
	require.NoError(t, err)
	assert.Empty(t, entries)

	content := "2024-03-09 07:05 ~ alice,12345\ngarbage\n\n2024-03-09 08:00 ~ bob,unknown\n"
	require.NoError(t, os.WriteFile(pool.Path("me"), []byte(content), 0644))

	entries, err = pool.Read("me")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "12345", entries[0].UserID)
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, 8, entries[1].Time.Hour())
	assert.True(t, log.HasMessage("Skipping malformed follow pool line"))
}

func TestParseLine(t *testing.T) {
	entry, err := ParseLine("2024-01-02 15:04 ~ carol,99")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 15:04 ~ carol,99", entry.String())

	for _, bad := range []string{"no separator", "yesterday ~ carol,99", "2024-01-02 15:04 ~ carol", "2024-01-02 15:04 ~ ,99"} {
		_, err := ParseLine(bad)
		assert.Error(t, err, bad)
	}
}

func TestAppendFailureIsSwallowed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	log := logger.NewTestLogger()
	pool := New(filepath.Join(blocker, "logs"), log)
	pool.Append("me", Entry{Time: time.Now(), Username: "alice", UserID: "1"})

	assert.True(t, log.HasError())
}
