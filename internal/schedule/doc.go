// Package schedule provides the canonical schedule model and the normalization steps that
// turn raw session records into it.
//
// The schedule package handles text cleanup, date and clock-time resolution (including the
// year-rollover correction for partial dates scraped near a year boundary), the alias tables
// that map inconsistent source schemas onto a canonical session, and grouping sessions into
// date-sorted day buckets. It also diffs two schedules so callers can report what changed
// between runs.
package schedule
