// Package storage persists schedules and captured snapshots.
//
// Results are written as indented JSON under the data directory (default
// ~/.local/share/centretracker/), one file per site, replaced atomically so a reader never
// sees a partial file. The previous result is loaded back for change detection. Raw snapshots
// and debug HTML are kept alongside for offline replay and inspection.
//
// Publishers deliver a finished schedule somewhere: the local Storage itself, or an S3 bucket.
package storage
