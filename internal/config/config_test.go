//go:build unit

package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Blog.ListMode != "grouped" {
		t.Errorf("expected default list mode 'grouped', got %s", cfg.Blog.ListMode)
	}
	if cfg.Blog.PageSize != 6 {
		t.Errorf("expected default page size 6, got %d", cfg.Blog.PageSize)
	}
	if cfg.Blog.LifestyleCategory != "LifeStyle" {
		t.Errorf("expected lifestyle category 'LifeStyle', got %s", cfg.Blog.LifestyleCategory)
	}
	if len(cfg.Blog.ThumbnailPresets) != 3 {
		t.Errorf("expected 3 thumbnail presets, got %d", len(cfg.Blog.ThumbnailPresets))
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	os.Setenv("BLOG_BLOG_LIST_MODE", "paged")
	os.Setenv("BLOG_BLOG_ADMIN_EMAIL", "admin@example.com")
	defer os.Unsetenv("BLOG_BLOG_LIST_MODE")
	defer os.Unsetenv("BLOG_BLOG_ADMIN_EMAIL")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Blog.ListMode != "paged" {
		t.Errorf("expected list mode 'paged', got %s", cfg.Blog.ListMode)
	}
	if cfg.Blog.AdminEmail != "admin@example.com" {
		t.Errorf("expected admin email override, got %s", cfg.Blog.AdminEmail)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{BaseURL: "http://localhost:8080"},
			DB:     DBConfig{Driver: "sqlite3"},
			Blog: BlogConfig{
				AdminEmail:       "admin@example.com",
				ListMode:         "grouped",
				PageSize:         6,
				ThumbnailPresets: []string{"a", "b", "c"},
			},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad driver", func(c *Config) { c.DB.Driver = "oracle" }, true},
		{"bad admin email", func(c *Config) { c.Blog.AdminEmail = "not-an-email" }, true},
		{"empty admin email", func(c *Config) { c.Blog.AdminEmail = "" }, false},
		{"bad list mode", func(c *Config) { c.Blog.ListMode = "infinite" }, true},
		{"zero page size", func(c *Config) { c.Blog.PageSize = 0 }, true},
		{"two presets", func(c *Config) { c.Blog.ThumbnailPresets = []string{"a", "b"} }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
