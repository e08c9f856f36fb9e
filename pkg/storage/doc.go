// Package storage keeps the follow restriction counters and the hourly
// activity buckets of one logged-in account in a SQLite file.
//
// Tables:
//   - profiles: one row per account name
//   - followRestriction: (profile_id, username, times), unique per pair
//   - recordActivity: (profile_id, action, hour, count), unique per bucket
//
// Write, Read and RecordActivity never return errors; they log failures and
// carry on so a broken database cannot stop a follow run. Lookup, Increment,
// Exceeded, List and ActivityCount return typed errors from pkg/errors and
// distinguish a missing record (errors.ErrNotFound) from a database failure.
//
// Usage:
//
//	store := storage.New(cfg.Database.Path, cfg.Account.Username, log)
//	if !store.Read(ctx, "alice", cfg.Follow.Times) {
//	    // follow alice, then
//	    store.Write(ctx, "alice")
//	}
package storage
