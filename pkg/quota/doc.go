// Package quota keeps the follow run under the configured hourly and daily
// peaks and computes the pause after each action.
//
// Activity is counted in the storage package's recordActivity table, so the
// peaks hold across runs of the CLI.
package quota
