package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Scheduler   SchedulerConfig
	Adjustments AdjustmentsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the tunable weights of the greedy matching pass.
type SchedulerConfig struct {
	MinCapacity       int
	EarlinessWeight   float64
	WeekdayBonus      float64
	LunchPenalty      float64
	CongestionPenalty float64
	DefaultMaxHours   float64
}

// AdjustmentsConfig toggles the optional collaborators of an adjustment session.
type AdjustmentsConfig struct {
	RosterFromDB      bool
	RosterFile        string
	PersistLedger     bool
	ExportCacheEnable bool
	ExportCacheTTL    time.Duration
	SessionID         string
	ListenerTimeout   time.Duration
	LedgerQueueSize   int
	LedgerMaxRetries  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		MinCapacity:       v.GetInt("SCHEDULER_MIN_CAPACITY"),
		EarlinessWeight:   v.GetFloat64("SCHEDULER_WEIGHT_EARLINESS"),
		WeekdayBonus:      v.GetFloat64("SCHEDULER_WEIGHT_WEEKDAY"),
		LunchPenalty:      v.GetFloat64("SCHEDULER_PENALTY_LUNCH"),
		CongestionPenalty: v.GetFloat64("SCHEDULER_PENALTY_CONGESTION"),
		DefaultMaxHours:   v.GetFloat64("SCHEDULER_DEFAULT_MAX_HOURS"),
	}

	cfg.Adjustments = AdjustmentsConfig{
		RosterFromDB:      v.GetBool("ENABLE_ROSTER_DB"),
		RosterFile:        v.GetString("ROSTER_FILE"),
		PersistLedger:     v.GetBool("ENABLE_LEDGER_PERSISTENCE"),
		ExportCacheEnable: v.GetBool("ENABLE_EXPORT_CACHE"),
		ExportCacheTTL:    parseDuration(v.GetString("EXPORT_CACHE_TTL"), 5*time.Minute),
		SessionID:         v.GetString("ADJUSTMENT_SESSION_ID"),
		ListenerTimeout:   parseDuration(v.GetString("LISTENER_TIMEOUT"), 2*time.Second),
		LedgerQueueSize:   v.GetInt("LEDGER_QUEUE_SIZE"),
		LedgerMaxRetries:  v.GetInt("LEDGER_MAX_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutoring_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "tutoring-scheduler")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_MIN_CAPACITY", 2)
	v.SetDefault("SCHEDULER_WEIGHT_EARLINESS", 20)
	v.SetDefault("SCHEDULER_WEIGHT_WEEKDAY", 10)
	v.SetDefault("SCHEDULER_PENALTY_LUNCH", 5)
	v.SetDefault("SCHEDULER_PENALTY_CONGESTION", 3)
	v.SetDefault("SCHEDULER_DEFAULT_MAX_HOURS", 40)

	v.SetDefault("ENABLE_ROSTER_DB", false)
	v.SetDefault("ROSTER_FILE", "")
	v.SetDefault("ENABLE_LEDGER_PERSISTENCE", false)
	v.SetDefault("ENABLE_EXPORT_CACHE", false)
	v.SetDefault("EXPORT_CACHE_TTL", "5m")
	v.SetDefault("ADJUSTMENT_SESSION_ID", "default")
	v.SetDefault("LISTENER_TIMEOUT", "2s")
	v.SetDefault("LEDGER_QUEUE_SIZE", 256)
	v.SetDefault("LEDGER_MAX_RETRIES", 3)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
