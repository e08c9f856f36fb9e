// Package follow reads the follow button of twitter accounts and follows
// them, one at a time.
//
// A Follower combines the browser driver, the follow restriction counters,
// the quota supervisor and the follow pool:
//
//	f := follow.New(cfg, follow.Deps{
//		Browser: drv,
//		Counter: store,
//		Quota:   quota.NewSupervisor(cfg.Quota, store, log),
//		Pool:    followlog.New(cfg.Follow.LogFolder, log),
//		Delays:  quota.NewDelays(cfg.Follow),
//	}, log)
//	res := f.FollowUser(ctx, follow.TrackProfile, "alice", nil)
//
// FollowUser never returns an error. Its Result carries success and a reason:
// "success", "jumped", "already followed", "unexpected failure",
// "unknown status", "unverified follow", a blocking label such as
// "UNAVAILABLE", or an emergency reason from the browser.
package follow
