package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Security  SecurityConfig  `mapstructure:"security"`
	Reward    RewardConfig    `mapstructure:"reward"`
	Quest     QuestConfig     `mapstructure:"quest"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode       string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath string        `mapstructure:"sqlite_path"`
	DSN        string        `mapstructure:"dsn"` // mysql / postgres
	MaxOpen    int           `mapstructure:"max_open"`
	MaxIdle    int           `mapstructure:"max_idle"`
	MaxLife    time.Duration `mapstructure:"max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	// JWTSecret enables bearer-token player authentication. When empty the
	// player id is taken from the X-Player-Id header set by the gateway.
	JWTSecret      string  `mapstructure:"jwt_secret"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AllowedOrigins lists the CORS origins for client routes.
	// An empty slice allows all origins (useful for local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// ServerAllowedIPs restricts /server and /admin routes. Empty allows all.
	ServerAllowedIPs []string `mapstructure:"server_allowed_ips"`
}

type RewardConfig struct {
	Mode    string        `mapstructure:"mode"`     // http | local | "" (local on sqlite, http otherwise)
	BaseURL string        `mapstructure:"base_url"` // collection service root
	Timeout time.Duration `mapstructure:"timeout"`
}

type QuestConfig struct {
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	LockWait time.Duration `mapstructure:"lock_wait"`
	Seed     int64         `mapstructure:"seed"` // 0 = seeded from the clock
}

type AuditConfig struct {
	RetentionDays int           `mapstructure:"retention_days"` // 0 = keep forever
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

type LogConfig struct {
	FilePath   string `mapstructure:"file_path"` // empty = stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP/HTTP; empty = stdout exporter
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load reads config from the given YAML file path. Every key can be
// overridden by an environment variable, e.g. QUESTS_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("quests")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/quests.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("reward.mode", "")
	v.SetDefault("reward.base_url", "")
	v.SetDefault("reward.timeout", "5s")
	v.SetDefault("quest.lock_ttl", "10s")
	v.SetDefault("quest.lock_wait", "3s")
	v.SetDefault("quest.seed", 0)
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.prune_interval", "1h")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "quests")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 0.1)
}
