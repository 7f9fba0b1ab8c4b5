// Package calendar exports schedules as iCalendar feeds.
//
// Each session becomes one VEVENT. Sessions whose time reads as a clock range such as
// "6:00am - 9:00am" are timed in the configured zone; anything else is an all-day entry.
// Days whose date never resolved are left out.
package calendar
