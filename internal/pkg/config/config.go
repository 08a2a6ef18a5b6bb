package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Map       MapConfig       `mapstructure:"map"`
	LocalWiki LocalWikiConfig `mapstructure:"localwiki"`
	Murals    MuralsConfig    `mapstructure:"murals"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	PublicURL    string `mapstructure:"public_url"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort     string `mapstructure:"host_port"`
	TaskQueue    string `mapstructure:"task_queue"`
	CronSchedule string `mapstructure:"cron_schedule"`
}

// MapConfig describes the initial map view and its base tile layer.
type MapConfig struct {
	CenterLat        float64 `mapstructure:"center_lat"`
	CenterLon        float64 `mapstructure:"center_lon"`
	Zoom             float64 `mapstructure:"zoom"`
	TileURL          string  `mapstructure:"tile_url"`
	TileID           string  `mapstructure:"tile_id"`
	AccessToken      string  `mapstructure:"access_token"`
	MaxZoom          int     `mapstructure:"max_zoom"`
	Attribution      string  `mapstructure:"attribution"`
	MaxClusterRadius float64 `mapstructure:"max_cluster_radius"`
}

type LocalWikiConfig struct {
	IndexURL      string `mapstructure:"index_url"`
	BaseURL       string `mapstructure:"base_url"`
	SiteURL       string `mapstructure:"site_url"`
	ThrottleMS    int    `mapstructure:"throttle_ms"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	UserAgent     string `mapstructure:"user_agent"`
	MaxPages      int    `mapstructure:"max_pages"`
	CreditHelpURL string `mapstructure:"credit_help_url"`
}

// MuralsConfig controls how the published dataset is assembled.
type MuralsConfig struct {
	FirstID         int    `mapstructure:"first_id"`
	ReserveUntilID  int    `mapstructure:"reserve_until_id"`
	Address         string `mapstructure:"address"`
	Zoom            int    `mapstructure:"zoom"`
	Icon            string `mapstructure:"icon"`
	ReservedIcon    string `mapstructure:"reserved_icon"`
	VisibleMap      int    `mapstructure:"visible_map"`
	ReserveMap      int    `mapstructure:"reserve_map"`
	ExtrasCSV       string `mapstructure:"extras_csv"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type ViewerConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	MaxSessions     int    `mapstructure:"max_sessions"`
	SessionIdleSecs int    `mapstructure:"session_idle_secs"`
}

// Load reads configuration from .env, file, and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "murals")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "muralmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 5)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "mural-refresh")
	v.SetDefault("temporal.cron_schedule", "0 */6 * * *")

	v.SetDefault("map.center_lat", 37.8)
	v.SetDefault("map.center_lon", -122.25)
	v.SetDefault("map.zoom", 11.5)
	v.SetDefault("map.tile_url", "https://api.tiles.mapbox.com/v4/{id}/{z}/{x}/{y}.png?access_token={accessToken}")
	v.SetDefault("map.tile_id", "mapbox.streets")
	v.SetDefault("map.access_token", "")
	v.SetDefault("map.max_zoom", 15)
	v.SetDefault("map.attribution", `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, <a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`)
	v.SetDefault("map.max_cluster_radius", 40)

	v.SetDefault("localwiki.index_url", "https://localwiki.org/oakland/Murals")
	v.SetDefault("localwiki.base_url", "https://localwiki.org/oakland/")
	v.SetDefault("localwiki.site_url", "https://localwiki.org")
	v.SetDefault("localwiki.throttle_ms", 500)
	v.SetDefault("localwiki.timeout_secs", 30)
	v.SetDefault("localwiki.user_agent", "muralmap/1.0 (+https://localwiki.org/oakland/Murals)")
	v.SetDefault("localwiki.max_pages", 0)
	v.SetDefault("localwiki.credit_help_url", "https://andrewguenthner.com/help-oakland-art-murmur-identify-mural-artists/")

	v.SetDefault("murals.first_id", 707)
	v.SetDefault("murals.reserve_until_id", 1600)
	v.SetDefault("murals.address", "Oakland, CA")
	v.SetDefault("murals.zoom", 13)
	v.SetDefault("murals.icon", "art_black_t.png")
	v.SetDefault("murals.reserved_icon", "art_blank_t.png")
	v.SetDefault("murals.visible_map", 17)
	v.SetDefault("murals.reserve_map", 21)
	v.SetDefault("murals.extras_csv", "extra_murals.csv")
	v.SetDefault("murals.cache_ttl_seconds", 6*3600)

	v.SetDefault("viewer.endpoint", "/get_mural_data")
	v.SetDefault("viewer.max_sessions", 1000)
	v.SetDefault("viewer.session_idle_secs", 1800)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MURALMAP_MAP_ACCESS_TOKEN → map.access_token
	v.SetEnvPrefix("MURALMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be within [-90, 90], got %g", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be within [-180, 180], got %g", c.Map.CenterLon))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > float64(c.Map.MaxZoom) {
		errs = append(errs, fmt.Sprintf("map.zoom must be within [0, map.max_zoom], got %g", c.Map.Zoom))
	}
	if c.Map.TileURL == "" {
		errs = append(errs, "map.tile_url is required")
	}
	if c.Map.Attribution == "" {
		errs = append(errs, "map.attribution is required")
	}
	if c.Map.MaxClusterRadius <= 0 {
		errs = append(errs, "map.max_cluster_radius must be positive")
	}
	if c.LocalWiki.IndexURL == "" {
		errs = append(errs, "localwiki.index_url is required")
	}
	if c.LocalWiki.ThrottleMS < 0 {
		errs = append(errs, "localwiki.throttle_ms must not be negative")
	}
	if c.Murals.FirstID <= 0 {
		errs = append(errs, "murals.first_id must be positive")
	}
	if c.Murals.CacheTTLSeconds <= 0 {
		errs = append(errs, "murals.cache_ttl_seconds must be positive")
	}
	if c.Viewer.MaxSessions <= 0 {
		errs = append(errs, "viewer.max_sessions must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
