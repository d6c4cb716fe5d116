package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaultJWTSecret is only acceptable outside production
const defaultJWTSecret = "dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Returns  ReturnsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// ReturnsConfig holds return-processing settings
type ReturnsConfig struct {
	// IdempotencyTTL is how long a processed return request key is remembered
	IdempotencyTTL time.Duration
	// IdempotencyEnabled toggles request deduplication
	IdempotencyEnabled bool
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the redis address in host:port form
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Environment variables use the GESTION_ prefix with underscores,
// e.g. GESTION_DATABASE_HOST overrides database.host.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GESTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.App.Env == "production" && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("jwt.secret must be set in production")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d is out of range", c.Database.Port)
	}
	if c.Database.MaxOpenConns < c.Database.MaxIdleConns {
		return fmt.Errorf("database.max_open_conns must be >= max_idle_conns")
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gestion")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "gestion")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 30)
	v.SetDefault("database.connmaxidletime", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("jwt.issuer", "gestion")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.readtimeout", 15*time.Second)
	v.SetDefault("http.writetimeout", 15*time.Second)
	v.SetDefault("http.idletimeout", 60*time.Second)
	v.SetDefault("http.maxheaderbytes", 1<<20)

	v.SetDefault("returns.idempotencyttl", 24*time.Hour)
	v.SetDefault("returns.idempotencyenabled", true)
}
