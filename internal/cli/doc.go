// Package cli implements the command-line interface for centretracker.
//
// The Cobra commands capture a page (headless browser, plain HTTP, or a saved snapshot or
// HTML file), extract the weekly schedule, write it under the data directory, report changes
// since the previous run and print the result as text, JSON or iCalendar. New sessions can be
// announced through a notifier. The watch command repeats this for every configured site on a
// cron schedule.
package cli
