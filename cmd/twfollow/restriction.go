package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	errs "twfollow/pkg/errors"
	"twfollow/pkg/followlog"
	"twfollow/pkg/logger"
	"twfollow/pkg/storage"
	"twfollow/pkg/ui"
)

var checkLimit int

// restrictionCmd groups commands reading the follow counters
var restrictionCmd = &cobra.Command{
	Use:   "restriction",
	Short: "Inspect follow counters, quota usage and the follow pool",
}

var restrictionCheckCmd = &cobra.Command{
	Use:     "check <username>",
	Short:   "Show how many times an account was followed",
	Example: `  twfollow restriction check -u mylogin jack --limit 2`,
	Args:    cobra.ExactArgs(1),
	Run:     runRestrictionCheck,
}

var restrictionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every follow counter of the logged-in account",
	Run:   runRestrictionList,
}

var restrictionPoolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Print the follow pool of the logged-in account",
	Run:   runRestrictionPool,
}

var restrictionQuotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show hourly and daily usage against the configured peaks",
	Run:   runRestrictionQuota,
}

func init() {
	rootCmd.AddCommand(restrictionCmd)
	restrictionCmd.AddCommand(restrictionCheckCmd)
	restrictionCmd.AddCommand(restrictionListCmd)
	restrictionCmd.AddCommand(restrictionPoolCmd)
	restrictionCmd.AddCommand(restrictionQuotaCmd)

	restrictionCheckCmd.Flags().IntVar(&checkLimit, "limit", 0, "follow limit to check against (default from config)")
}

func openStore(cmd *cobra.Command) (*storage.Store, int) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		os.Exit(1)
	}
	return storage.New(cfg.Database.Path, cfg.Account.Username, logger.GetLogger()), cfg.Follow.Times
}

func runRestrictionCheck(cmd *cobra.Command, args []string) {
	store, times := openStore(cmd)
	limit := checkLimit
	if limit <= 0 {
		limit = times
	}
	ctx := context.Background()

	record, err := store.Lookup(ctx, args[0])
	switch {
	case errs.IsNotFound(err):
		printer.Info(args[0], "never followed")
		return
	case err != nil:
		printer.Error("Failed to read the counter", err)
		os.Exit(1)
	}

	printer.Info(record.Username, fmt.Sprintf("followed %d times (limit %d)", record.Times, limit))
	if record.Times >= limit {
		printer.Warning(fmt.Sprintf("%s is restricted", record.Username))
	}
}

func runRestrictionList(cmd *cobra.Command, args []string) {
	store, _ := openStore(cmd)

	records, err := store.List(context.Background())
	if err != nil {
		printer.Error("Failed to list counters", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		printer.Plain("No accounts followed yet.")
		return
	}
	for _, r := range records {
		printer.Plain(fmt.Sprintf("%-24s %d", r.Username, r.Times))
	}
}

func runRestrictionPool(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		os.Exit(1)
	}

	entries, err := followlog.New(cfg.Follow.LogFolder, logger.GetLogger()).Read(cfg.Account.Username)
	if err != nil {
		printer.Error("Failed to read the follow pool", err)
		os.Exit(1)
	}
	for _, e := range entries {
		printer.Plain(e.String())
	}
	printer.Info("Total", fmt.Sprintf("%d", len(entries)))
}

func runRestrictionQuota(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		os.Exit(1)
	}
	store := storage.New(cfg.Database.Path, cfg.Account.Username, logger.GetLogger())
	ctx := context.Background()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	actions := make([]string, 0, len(cfg.Quota.Peaks))
	for action := range cfg.Quota.Peaks {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	if !cfg.Quota.Enabled {
		printer.Warning("Quota supervision is disabled")
	}
	for _, action := range actions {
		peak := cfg.Quota.Peaks[action]
		hourly, err := store.ActivityCount(ctx, action, now)
		if err != nil {
			printer.Error("Failed to read activity", err)
			os.Exit(1)
		}
		daily, err := store.ActivityCount(ctx, action, today)
		if err != nil {
			printer.Error("Failed to read activity", err)
			os.Exit(1)
		}
		printer.Highlight(action)
		printer.Info("  hour", ui.QuotaBar(hourly, peak.Hourly))
		printer.Info("  day", ui.QuotaBar(daily, peak.Daily))
	}
}
