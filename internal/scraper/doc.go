// Package scraper turns a captured page snapshot into a schedule.
//
// A Snapshot holds everything captured from one page load: the page signature, JSON network
// responses, inline script text and the rendered markup (plus the shadow-root markup of a
// calendar web component when present). The Extractor certifies the snapshot with the page
// guard and then tries its strategies in order: structured data (captured responses, then
// scripts), the calendar time-grid, and finally day-header/time-range heuristics over plain
// markup. The first strategy that yields records wins; if none does the result is empty but
// not an error.
//
// Snapshots can also be built from static HTML fetched over plain HTTP.
package scraper
