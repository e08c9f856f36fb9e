package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twfollow/pkg/browser"
	"twfollow/pkg/config"
	"twfollow/pkg/follow"
	"twfollow/pkg/logger"
	"twfollow/pkg/ui"
)

func TestCollectTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("# seed list\nbob\n\n  carol  \n@dave\n"), 0644))

	targets, err := collectTargets([]string{"alice"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol", "@dave"}, targets)

	targets, err = collectTargets([]string{"alice"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, targets)

	_, err = collectTargets(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestMaskedConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Account.AuthToken = "0123456789abcdef"
	cfg.Account.CSRFToken = "short"

	masked := maskedConfig(cfg)
	assert.Equal(t, "0123...cdef", masked.Account.AuthToken)
	assert.Equal(t, "***", masked.Account.CSRFToken)
	assert.Equal(t, "0123456789abcdef", cfg.Account.AuthToken, "the loaded config must stay untouched")
	assert.Equal(t, "", maskToken(""))
}

func TestCommandFlagsOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVarP(&username, "username", "u", "", "")
	cmd.Flags().StringVar(&dbPath, "db", "", "")
	cmd.Flags().BoolVar(&headless, "headless", true, "")
	cmd.Flags().StringVar(&debuggerURL, "debugger-url", "", "")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")

	require.NoError(t, cmd.ParseFlags([]string{"-u", "alice", "--headless=false"}))

	flags := commandFlags(cmd)
	assert.Equal(t, map[string]interface{}{"username": "alice", "headless": false}, flags)
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"follow", "restriction", "config", "auth"} {
		assert.True(t, names[want], want)
	}
}

func TestConfigInitIsFoundByLoad(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("HOME", t.TempDir())
	configFile = ""
	printer = ui.NewPrinter(io.Discard)

	runConfigInit(initCmd, nil)
	require.FileExists(t, filepath.Join(dir, "twfollow.yaml"))

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "YOUR_USERNAME", cfg.Account.Username)
	assert.Equal(t, 48, cfg.Quota.Peaks["follows"].Hourly)
	assert.Equal(t, 14*time.Second, cfg.Browser.StatusRetryWait)
}

func TestFollowFromPostReturnsNavigationError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Account.Username = "me"
	followPost = "https://twitter.com/alice/status/1"
	t.Cleanup(func() { followPost = "" })

	drv := browser.New(cfg, logger.NewNopLogger())
	err := followFromPost(context.Background(), cfg, follow.Deps{}, drv, "alice", logger.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open the post")
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
