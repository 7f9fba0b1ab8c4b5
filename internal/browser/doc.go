// Package browser captures page snapshots with a headless Chromium driven over the DevTools
// protocol.
//
// JSON responses are recorded from the moment navigation starts, so payloads fetched by the
// page's own scripts are available to the structured extraction strategies. Once the page has
// settled the title, first heading, inline scripts, rendered markup and the calendar web
// component's shadow-root markup are read. Snapshots are complete when returned; nothing is
// streamed to the extraction pipeline.
package browser
