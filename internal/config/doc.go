// Package config loads and saves the YAML configuration: where data is kept, which sites are
// tracked, how the browser is driven and where schedules are published.
//
// A missing config file is created with defaults on first load.
package config
