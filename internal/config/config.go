package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	OIDC     OIDCConfig     `mapstructure:"oidc"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Blog     BlogConfig     `mapstructure:"blog"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"base_url"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
// Driver is one of "postgres", "mysql" or "sqlite3".
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// OIDCConfig holds OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	Lifetime int `mapstructure:"lifetime"` // hours
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// CacheConfig holds the taxonomy cache configuration.
type CacheConfig struct {
	FilePath string `mapstructure:"file_path"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// StorageConfig holds the S3 compatible object store configuration.
// An empty Endpoint selects the in-memory store.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	PublicURL       string `mapstructure:"public_url"`
	ThumbnailBucket string `mapstructure:"thumbnail_bucket"`
	FilesBucket     string `mapstructure:"files_bucket"`
	CacheControl    string `mapstructure:"cache_control"`
}

// BlogConfig holds the blog behaviour knobs.
type BlogConfig struct {
	AdminEmail        string   `mapstructure:"admin_email"`
	LifestyleCategory string   `mapstructure:"lifestyle_category"`
	ListMode          string   `mapstructure:"list_mode"` // "grouped" or "paged"
	PageSize          int      `mapstructure:"page_size"`
	DefaultThumbnail  string   `mapstructure:"default_thumbnail"`
	ThumbnailPresets  []string `mapstructure:"thumbnail_presets"`
}

// RealtimeConfig holds the change feed endpoint configuration.
type RealtimeConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "blog.db?_foreign_keys=on")
	v.SetDefault("session.lifetime", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cache.file_path", "cache.db")
	v.SetDefault("cache.ttl", 300)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.thumbnail_bucket", "blog-thumbnails")
	v.SetDefault("storage.files_bucket", "filehoster-files")
	v.SetDefault("storage.cache_control", "3600")
	v.SetDefault("blog.lifestyle_category", "LifeStyle")
	v.SetDefault("blog.list_mode", "grouped")
	v.SetDefault("blog.page_size", 6)
	v.SetDefault("blog.default_thumbnail", "/static/thumbnails/default.svg")
	v.SetDefault("blog.thumbnail_presets", []string{
		"/static/thumbnails/preset-1.svg",
		"/static/thumbnails/preset-2.svg",
		"/static/thumbnails/preset-3.svg",
	})
	v.SetDefault("realtime.allowed_origins", []string{"*"})

	// Set up viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/portfolio-blog/")
	v.AddConfigPath("$HOME/.portfolio-blog")

	// Attempt to read the config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite3":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.Blog.AdminEmail != "" && !govalidator.IsEmail(c.Blog.AdminEmail) {
		return fmt.Errorf("invalid admin email %q", c.Blog.AdminEmail)
	}
	if !govalidator.IsURL(c.Server.BaseURL) {
		return fmt.Errorf("invalid base url %q", c.Server.BaseURL)
	}
	switch c.Blog.ListMode {
	case "grouped", "paged":
	default:
		return fmt.Errorf("unsupported list mode %q", c.Blog.ListMode)
	}
	if c.Blog.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	if len(c.Blog.ThumbnailPresets) != 3 {
		return fmt.Errorf("expected 3 thumbnail presets, got %d", len(c.Blog.ThumbnailPresets))
	}
	return nil
}
