package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/vipteryx/centretracker/internal/notifier"
	"github.com/vipteryx/centretracker/internal/page"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir  = "~/.local/share/centretracker"
	DefaultTimezone = "America/Vancouver"
	DefaultRefresh  = "0 */6 * * *"
	DefaultLogLevel = "info"

	// KindSchedule sites produce a weekly schedule, KindSummary sites only a page summary.
	// KindHours sites publish their opening hours as tables under fixed headings.
	KindSchedule = "schedule"
	KindSummary  = "summary"
	KindHours    = "hours"

	// FetchBrowser renders the page in Chromium; FetchHTTP reads static markup only
	FetchBrowser = "browser"
	FetchHTTP    = "http"
)

// BrowserConfig controls the headless browser
type BrowserConfig struct {
	ExecPath    string        `yaml:"exec_path,omitempty"`
	Headless    *bool         `yaml:"headless,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
	HeadingWait time.Duration `yaml:"heading_wait"`
	Settle      time.Duration `yaml:"settle"`
}

// IsHeadless reports the headless setting, defaulting to true
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// SiteConfig is one tracked page
type SiteConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Output string `yaml:"output"`
	Kind   string `yaml:"kind,omitempty"`
	Fetch  string `yaml:"fetch,omitempty"`
}

// S3Config enables publishing to a bucket when Bucket is set
type S3Config struct {
	Bucket  string `yaml:"bucket,omitempty"`
	Region  string `yaml:"region,omitempty"`
	Profile string `yaml:"profile,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
}

// Enabled reports whether S3 publishing is configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Config is the top-level application configuration
type Config struct {
	DataDir  string `yaml:"data_dir"`
	Timezone string `yaml:"timezone"`

	// Refresh is the cron spec used by the watch command
	Refresh  string `yaml:"refresh"`
	LogLevel string `yaml:"log_level"`

	// BlockPhrases mark a page as blocked when found in its title or heading
	BlockPhrases []string `yaml:"block_phrases"`

	// Notify selects how added sessions are announced: none, dry-run or twitter
	Notify string `yaml:"notify,omitempty"`

	Browser BrowserConfig `yaml:"browser"`
	Sites   []SiteConfig  `yaml:"sites"`
	S3      S3Config      `yaml:"s3,omitempty"`
}

// DefaultSites are the pages tracked out of the box
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Name:   "britannia-pool",
			URL:    "https://anc.ca.apm.activecommunities.com/vancouver/calendars?onlineSiteId=0&no_scroll_top=true&defaultCalendarId=55&locationId=59&displayType=0&view=2",
			Output: "pool-times.json",
			Kind:   KindSchedule,
			Fetch:  FetchBrowser,
		},
		{
			Name:   "britannia-hours",
			URL:    "https://vancouver.ca/parks-recreation-culture/britannia-pool.aspx",
			Output: "britannia-hours.json",
			Kind:   KindHours,
			Fetch:  FetchHTTP,
		},
		{
			Name:   "vancouver-aquatic-centre",
			URL:    "https://vancouver.ca/parks-recreation-culture/vancouver-aquatic-centre.aspx",
			Output: "vancouver-aquatic-centre-hours.json",
			Kind:   KindSummary,
			Fetch:  FetchBrowser,
		},
		{
			Name:   "britanniacentre-pool",
			URL:    "https://britanniacentre.org/pool/",
			Output: "britanniacentre-pool-hours.json",
			Kind:   KindSummary,
			Fetch:  FetchBrowser,
		},
	}
}

// DefaultConfig returns an in-memory default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		DataDir:      DefaultDataDir,
		Timezone:     DefaultTimezone,
		Refresh:      DefaultRefresh,
		LogLevel:     DefaultLogLevel,
		BlockPhrases: append([]string(nil), page.DefaultBlockPhrases...),
		Sites:        DefaultSites(),
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values so partially written configs still work
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Refresh == "" {
		c.Refresh = DefaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.BlockPhrases == nil {
		c.BlockPhrases = append([]string(nil), page.DefaultBlockPhrases...)
	}
	if c.Notify == "" {
		c.Notify = notifier.ChannelNone
	}

	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 60 * time.Second
	}
	if c.Browser.HeadingWait <= 0 {
		c.Browser.HeadingWait = 15 * time.Second
	}
	if c.Browser.Settle < 0 {
		c.Browser.Settle = 0
	}

	if c.Sites == nil {
		c.Sites = DefaultSites()
	}
	for i := range c.Sites {
		s := &c.Sites[i]
		switch s.Kind {
		case KindSummary, KindHours:
		default:
			s.Kind = KindSchedule
		}
		if s.Fetch != FetchHTTP {
			s.Fetch = FetchBrowser
		}
		if s.Output == "" && s.Name != "" {
			s.Output = s.Name + ".json"
		}
	}
}

// Validate reports configuration that cannot be used
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	switch c.Notify {
	case notifier.ChannelNone, notifier.ChannelDryRun, notifier.ChannelTwitter:
	default:
		return fmt.Errorf("invalid notify channel %q (must be 'none', 'dry-run' or 'twitter')", c.Notify)
	}
	seen := make(map[string]bool)
	for i, s := range c.Sites {
		if s.Name == "" {
			return fmt.Errorf("site %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("site %q: url is required", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("site %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Site returns the site with the given name
func (c *Config) Site(name string) (SiteConfig, bool) {
	for _, s := range c.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return SiteConfig{}, false
}

// Location returns the configured time zone, or UTC when it does not load
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the YAML file at path. When the file does not exist a default config is written
// there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save writes the config to path
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// DefaultPath returns ~/.config/centretracker/config.yaml, falling back to the working
// directory when there is no home directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "centretracker.yaml"
	}
	return filepath.Join(dir, "centretracker", "config.yaml")
}
