package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CacheBackend selects where upstream payloads are kept between requests
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheBolt   CacheBackend = "bolt"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// Config holds all application configuration
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Region   RegionConfig   `mapstructure:"region"`
	Home     HomeConfig     `mapstructure:"home"`
	Search   SearchConfig   `mapstructure:"search"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Browser  BrowserConfig  `mapstructure:"browser"`
}

// UpstreamConfig holds metadata service configuration
type UpstreamConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // Requests per second
	RateBurst    int           `mapstructure:"rate_burst"`
}

// LocaleConfig holds content language settings
type LocaleConfig struct {
	Supported []string `mapstructure:"supported"`
	Default   string   `mapstructure:"default"`
	Fallback  string   `mapstructure:"fallback"`
}

// RegionConfig holds availability region settings
type RegionConfig struct {
	Default   string   `mapstructure:"default"`
	Fallbacks []string `mapstructure:"fallbacks"` // Tried after the session region
	Pin       string   `mapstructure:"pin"`       // Skips timezone detection when set
}

// ShelfConfig describes one home shelf
type ShelfConfig struct {
	ID           string `mapstructure:"id"`
	Title        string `mapstructure:"title"`
	Source       string `mapstructure:"source"` // "trending", "discover" or "now_playing"
	Window       string `mapstructure:"window"`
	SortBy       string `mapstructure:"sort_by"`
	Monetization string `mapstructure:"monetization"`
	ProviderID   int    `mapstructure:"provider_id"`
	Regional     bool   `mapstructure:"regional"` // Filter by the session region
	Limit        int    `mapstructure:"limit"`    // Overrides home.display_cap
}

// HomeConfig holds the home view shelves
type HomeConfig struct {
	DisplayCap int           `mapstructure:"display_cap"`
	Shelves    []ShelfConfig `mapstructure:"shelves"`
}

// SearchConfig holds search behavior
type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig holds the revalidation cache configuration
type CacheConfig struct {
	Backend       CacheBackend  `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	Size          int           `mapstructure:"size"` // Memory backend entries
	Path          string        `mapstructure:"path"` // Bolt backend file
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// StoreConfig holds the local session store location
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// BrowserConfig holds the command used to open watch links
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty uses the system default handler
	Args    []string `mapstructure:"args"`
}

// DefaultShelves returns the stock home layout
func DefaultShelves() []ShelfConfig {
	return []ShelfConfig{
		{ID: "local", Title: "Popular near you", Source: "discover", SortBy: "popularity.desc", Monetization: "flatrate", Regional: true},
		{ID: "global", Title: "Trending this week", Source: "trending", Window: "week"},
		{ID: "netflix", Title: "On Netflix", Source: "discover", SortBy: "popularity.desc", ProviderID: 8, Regional: true},
		{ID: "disney", Title: "On Disney+", Source: "discover", SortBy: "popularity.desc", ProviderID: 337, Regional: true},
		{ID: "prime", Title: "On Prime Video", Source: "discover", SortBy: "popularity.desc", ProviderID: 119, Regional: true},
		{ID: "apple", Title: "On Apple TV+", Source: "discover", SortBy: "popularity.desc", ProviderID: 350, Regional: true},
		{ID: "now_playing", Title: "Now in theaters", Source: "now_playing"},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      15 * time.Second,
			RateLimit:    20,
			RateBurst:    20,
		},
		Locale: LocaleConfig{
			Supported: []string{"ar", "fr", "en"},
			Default:   "ar",
			Fallback:  "en",
		},
		Region: RegionConfig{
			Default:   "QA",
			Fallbacks: []string{"FR", "US"},
		},
		Home: HomeConfig{
			DisplayCap: 20,
			Shelves:    DefaultShelves(),
		},
		Search: SearchConfig{
			Debounce: 600 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     5 * time.Minute,
			Size:    512,
			Path:    filepath.Join(defaultDataPath(), "cache.db"),
		},
		Store: StoreConfig{
			Path: filepath.Join(defaultDataPath(), "zapit.db"),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "zapit.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "zapit")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "zapit")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "zapit")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "zapit")
	}
}

// LoadConfig loads configuration from file and environment.
// An explicit path overrides the default search locations.
func LoadConfig(path string) (*Config, error) {
	// A .env next to the binary may carry the API key
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: ZAPIT_UPSTREAM_API_KEY, ZAPIT_LOGGING_LEVEL, ...
	v.SetEnvPrefix("ZAPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if len(cfg.Home.Shelves) == 0 {
		cfg.Home.Shelves = DefaultShelves()
	}

	return cfg, nil
}

// setDefaults registers every scalar default so AutomaticEnv can see the keys
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	v.SetDefault("upstream.image_base_url", d.Upstream.ImageBaseURL)
	v.SetDefault("upstream.api_key", d.Upstream.APIKey)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	v.SetDefault("upstream.rate_limit", d.Upstream.RateLimit)
	v.SetDefault("upstream.rate_burst", d.Upstream.RateBurst)

	v.SetDefault("locale.supported", d.Locale.Supported)
	v.SetDefault("locale.default", d.Locale.Default)
	v.SetDefault("locale.fallback", d.Locale.Fallback)

	v.SetDefault("region.default", d.Region.Default)
	v.SetDefault("region.fallbacks", d.Region.Fallbacks)
	v.SetDefault("region.pin", d.Region.Pin)

	v.SetDefault("home.display_cap", d.Home.DisplayCap)

	v.SetDefault("search.debounce", d.Search.Debounce)

	v.SetDefault("cache.backend", string(d.Cache.Backend))
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", d.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("browser.command", d.Browser.Command)
	v.SetDefault("browser.args", d.Browser.Args)
}

// Validate reports configuration that cannot produce a working session
func (c *Config) Validate() error {
	if c.Upstream.APIKey == "" {
		return errors.New("upstream.api_key is required (set ZAPIT_UPSTREAM_API_KEY)")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if len(c.Locale.Supported) == 0 {
		return errors.New("locale.supported must list at least one language")
	}
	if !contains(c.Locale.Supported, c.Locale.Default) {
		return fmt.Errorf("locale.default %q is not in locale.supported", c.Locale.Default)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheBolt, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	for _, s := range c.Home.Shelves {
		switch s.Source {
		case "trending", "discover", "now_playing":
		default:
			return fmt.Errorf("shelf %q: unknown source %q", s.ID, s.Source)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
