// Package notifier announces schedule changes.
//
// A Notifier receives the sessions that appeared since the previous run of a site. The
// dry-run notifier prints the messages that would be sent; the Twitter notifier posts one
// status per new session, pausing between posts.
package notifier
