// Package checkpoint lets an interrupted follow run resume where it stopped.
//
// The checkpoint of a login lists the run's targets and the result reason of
// every username already handled. It lives under <data dir>/checkpoints/ and
// is saved atomically after each result; a completed run deletes it.
package checkpoint
