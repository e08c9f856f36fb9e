package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"twfollow/pkg/browser"
	"twfollow/pkg/checkpoint"
	"twfollow/pkg/config"
	"twfollow/pkg/follow"
	"twfollow/pkg/followlog"
	"twfollow/pkg/logger"
	"twfollow/pkg/quota"
	"twfollow/pkg/storage"
	"twfollow/pkg/ui"
)

var (
	followTimes int
	followFile  string
	followPost  string
	followTrack string
	resume      bool
)

// followCmd represents the follow command
var followCmd = &cobra.Command{
	Use:   "follow [usernames...]",
	Short: "Follow one or more twitter accounts",
	Long: `Follow twitter accounts through the browser.

Usernames come from the arguments and from --file (one per line, '#' starts a
comment). Accounts already followed --times times are skipped, and the run
stops after too many consecutive quota jumps or when the session looks broken.

Use --post to follow the author of a post from the post page itself.`,
	Example: `  # Follow a few accounts
  twfollow follow -u mylogin jack biz

  # Follow a list, allowing each account to be followed twice
  twfollow follow -u mylogin --file targets.txt --times 2

  # Continue an interrupted run
  twfollow follow -u mylogin --file targets.txt --resume

  # Follow the author of a post
  twfollow follow -u mylogin jack --post https://twitter.com/jack/status/20`,
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().IntVarP(&followTimes, "times", "t", 0, "follow each account at most this many times (default from config)")
	followCmd.Flags().StringVarP(&followFile, "file", "f", "", "read usernames from a file")
	followCmd.Flags().StringVar(&followPost, "post", "", "follow from this post page instead of the profile")
	followCmd.Flags().StringVar(&followTrack, "track", string(follow.TrackProfile), "where the follow button is (profile, post)")
	followCmd.Flags().BoolVar(&resume, "resume", false, "skip accounts handled by an interrupted run")
}

func runFollow(cmd *cobra.Command, args []string) error {
	targets, err := collectTargets(args, followFile)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no usernames given")
	}

	track, err := follow.ParseTrack(followTrack)
	if err != nil {
		return err
	}
	if followPost != "" {
		track = follow.TrackPost
	}
	switch track {
	case follow.TrackDialog:
		return fmt.Errorf("the dialog track needs a button from a followers dialog and cannot be used here")
	case follow.TrackPost:
		if followPost == "" || len(targets) != 1 {
			return fmt.Errorf("the post track follows exactly one author with --post <url>")
		}
	}

	extra := map[string]interface{}{}
	if followTimes > 0 {
		extra["times"] = followTimes
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	if cfg.Account.AuthToken == "" {
		printer.Warning("No auth_token cookie configured. Run 'twfollow auth login' first.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv := browser.New(cfg, log)
	printer.Highlight("[STARTING BROWSER]")
	if err := drv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the browser: %w", err)
	}
	defer drv.Close()

	store := storage.New(cfg.Database.Path, cfg.Account.Username, log)
	deps := follow.Deps{
		Browser: drv,
		Counter: store,
		Quota:   quota.NewSupervisor(cfg.Quota, store, log),
		Pool:    followlog.New(cfg.Follow.LogFolder, log),
		Delays:  quota.NewDelays(cfg.Follow),
	}

	if track == follow.TrackPost {
		return followFromPost(ctx, cfg, deps, drv, targets[0], log)
	}

	var tracker *checkpoint.Tracker
	if resume || len(targets) > 1 {
		tracker, err = startTracker(cfg, targets)
		if err != nil {
			log.WithError(err).Warn("Follow run will not be resumable")
		} else {
			deps.Progress = tracker
		}
	}

	follower := follow.New(cfg, deps, log)
	summary := follower.FollowList(ctx, targets)

	printSummary(summary)

	if tracker != nil && summary.StoppedBy == "" {
		if err := tracker.Finish(); err != nil {
			log.WithError(err).Warn("Failed to remove checkpoint")
		}
	}
	if summary.StoppedBy != "" {
		printer.Warning(fmt.Sprintf("Stopped early: %s", summary.StoppedBy))
		if tracker != nil {
			printer.Plain("Run again with --resume to continue where this run stopped.")
		}
	}

	return nil
}

func followFromPost(ctx context.Context, cfg *config.Config, deps follow.Deps, drv *browser.Driver, target string, log logger.Logger) error {
	if err := drv.Navigate(ctx, followPost); err != nil {
		return fmt.Errorf("failed to open the post: %w", err)
	}

	res := follow.New(cfg, deps, log).FollowUser(ctx, follow.TrackPost, target, nil)
	if res.Success {
		printer.Success(fmt.Sprintf("Followed %s", target))
		return nil
	}
	printer.Warning(fmt.Sprintf("%s not followed: %s", target, res.Reason))
	return nil
}

// startTracker resumes the saved run, or starts a new one when --resume is off
func startTracker(cfg *config.Config, targets []string) (*checkpoint.Tracker, error) {
	manager, err := checkpoint.NewManager(filepath.Dir(cfg.Database.Path), cfg.Account.Username)
	if err != nil {
		return nil, err
	}
	if !resume {
		if err := manager.Delete(); err != nil {
			return nil, err
		}
	}
	tracker, err := manager.Resume(cfg.Account.Username, targets)
	if err != nil {
		return nil, err
	}
	if done := len(tracker.Checkpoint().Processed); resume && done > 0 {
		printer.Info("Resuming", fmt.Sprintf("%d accounts already handled", done))
	}
	return tracker, nil
}

// collectTargets merges argument usernames with those read from path
func collectTargets(args []string, path string) ([]string, error) {
	targets := append([]string(nil), args...)
	if path == "" {
		return targets, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open username file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read username file: %w", err)
	}
	return targets, nil
}

func printSummary(s follow.Summary) {
	printer.Summary("Follow run finished", ui.Counts{
		{Label: "followed", Value: s.Followed},
		{Label: "already followed", Value: s.AlreadyFollowed},
		{Label: "restricted", Value: s.Restricted},
		{Label: "jumped", Value: s.Jumped},
		{Label: "failed", Value: s.Failed},
		{Label: "skipped", Value: s.Skipped},
	})
}
