package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Len(t, cfg.Sites, 4)
	assert.Equal(t, []string{"attention required", "sorry, you have been blocked", "cloudflare"}, cfg.BlockPhrases)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /var/lib/centretracker
browser:
  headless: false
  timeout: 90s
sites:
  - name: pool
    url: https://example.com/pool
  - name: hours
    url: https://example.com/hours
    kind: summary
    fetch: http
    output: hours.json
s3:
  bucket: schedules
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/centretracker", cfg.DataDir)
	assert.Equal(t, DefaultRefresh, cfg.Refresh)
	assert.False(t, cfg.Browser.IsHeadless())
	assert.Equal(t, 90*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Browser.HeadingWait)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "none", cfg.Notify)

	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, SiteConfig{Name: "pool", URL: "https://example.com/pool", Output: "pool.json", Kind: KindSchedule, Fetch: FetchBrowser}, cfg.Sites[0])
	assert.Equal(t, KindSummary, cfg.Sites[1].Kind)
	assert.Equal(t, FetchHTTP, cfg.Sites[1].Fetch)
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sites: [:"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Browser.Settle = 3 * time.Second
	cfg.S3 = S3Config{Bucket: "b", Region: "ca-central-1", Prefix: "pools"}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"missing name", func(c *Config) { c.Sites = []SiteConfig{{URL: "https://example.com"}} }, true},
		{"missing url", func(c *Config) { c.Sites = []SiteConfig{{Name: "pool"}} }, true},
		{"duplicate", func(c *Config) { c.Sites = append(c.Sites, c.Sites[0]) }, true},
		{"dry-run notify", func(c *Config) { c.Notify = "dry-run" }, false},
		{"unknown notify", func(c *Config) { c.Notify = "pager" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSiteLookup(t *testing.T) {
	cfg := DefaultConfig()

	site, ok := cfg.Site("britanniacentre-pool")
	require.True(t, ok)
	assert.Equal(t, "https://britanniacentre.org/pool/", site.URL)

	_, ok = cfg.Site("nope")
	assert.False(t, ok)
}

func TestDefaultSiteKinds(t *testing.T) {
	want := map[string]string{
		"britannia-pool":           KindSchedule,
		"britannia-hours":          KindHours,
		"vancouver-aquatic-centre": KindSummary,
		"britanniacentre-pool":     KindSummary,
	}
	for _, s := range DefaultSites() {
		assert.Equal(t, want[s.Name], s.Kind, s.Name)
	}

	site, ok := DefaultConfig().Site("britannia-hours")
	require.True(t, ok)
	assert.Equal(t, FetchHTTP, site.Fetch)
}

func TestNormalizeSiteKinds(t *testing.T) {
	cfg := &Config{Sites: []SiteConfig{
		{Name: "hours", Kind: KindHours},
		{Name: "summary", Kind: KindSummary},
		{Name: "odd", Kind: "weekly"},
		{Name: "blank"},
	}}
	cfg.Normalize()

	assert.Equal(t, KindHours, cfg.Sites[0].Kind)
	assert.Equal(t, KindSummary, cfg.Sites[1].Kind)
	assert.Equal(t, KindSchedule, cfg.Sites[2].Kind)
	assert.Equal(t, KindSchedule, cfg.Sites[3].Kind)
	assert.Equal(t, "hours.json", cfg.Sites[0].Output)
}

func TestLocationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/Special"
	assert.Equal(t, time.UTC, cfg.Location())
}
