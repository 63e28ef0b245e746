package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Redis     RedisConfig     `mapstructure:"redis"`
	DynamoDB  DynamoDBConfig  `mapstructure:"dynamodb"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Model     ModelConfig     `mapstructure:"model"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr          string        `mapstructure:"http_addr"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig configures the postgres-backed repository. An empty DSN keeps
// identities, predictions and alerts in process memory.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
	SeedUsers []SeedUser    `mapstructure:"seed_users"`
}

type SeedUser struct {
	Email string `mapstructure:"email"`
	Name  string `mapstructure:"name"`
}

type OTPConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	CodeDigits    int           `mapstructure:"code_digits"`
	Store         string        `mapstructure:"store"`
	PurgeSchedule string        `mapstructure:"purge_schedule"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Table    string `mapstructure:"table"`
	Endpoint string `mapstructure:"endpoint"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

type DeliveryConfig struct {
	QueueSize   int            `mapstructure:"queue_size"`
	Workers     int            `mapstructure:"workers"`
	SendTimeout time.Duration  `mapstructure:"send_timeout"`
	SMTP        SMTPConfig     `mapstructure:"smtp"`
	WebhookURL  string         `mapstructure:"webhook_url"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	OTPPerIdentity int           `mapstructure:"otp_per_identity"`
	OTPPerIP       int           `mapstructure:"otp_per_ip"`
	Window         time.Duration `mapstructure:"window"`
}

type ModelConfig struct {
	Seed            int64   `mapstructure:"seed"`
	NEstimators     int     `mapstructure:"n_estimators"`
	MaxDepth        int     `mapstructure:"max_depth"`
	MinSamplesSplit int     `mapstructure:"min_samples_split"`
	MaxFeatures     int     `mapstructure:"max_features"`
	TestSize        float64 `mapstructure:"test_size"`
}

type DatasetConfig struct {
	Source           string `mapstructure:"source"`
	CSVPath          string `mapstructure:"csv_path"`
	Machines         int    `mapstructure:"machines"`
	PointsPerMachine int    `mapstructure:"points_per_machine"`
	Seed             int64  `mapstructure:"seed"`
}

type AlertingConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Schedule       string   `mapstructure:"schedule"`
	NotifyChannels []string `mapstructure:"notify_channels"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TURBINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:3001"})
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("auth.jwt_secret", "default-secret-change-in-production")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "turbine-ai")
	v.SetDefault("auth.seed_users", []map[string]any{
		{"email": "admin@turbineai.com", "name": "Admin User"},
		{"email": "operator@turbineai.com", "name": "Operator"},
		{"email": "demo@example.com", "name": "Demo User"},
	})

	v.SetDefault("otp.ttl", "5m")
	v.SetDefault("otp.max_attempts", 3)
	v.SetDefault("otp.code_digits", 6)
	v.SetDefault("otp.store", "memory")
	v.SetDefault("otp.purge_schedule", "@every 1m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "turbine:")
	v.SetDefault("dynamodb.region", "eu-west-1")
	v.SetDefault("dynamodb.table", "TurbineOtp")
	v.SetDefault("cache.backend", "memory")

	v.SetDefault("delivery.queue_size", 256)
	v.SetDefault("delivery.workers", 2)
	v.SetDefault("delivery.send_timeout", "10s")
	v.SetDefault("delivery.smtp.host", "smtp.gmail.com")
	v.SetDefault("delivery.smtp.port", 587)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.otp_per_identity", 5)
	v.SetDefault("rate_limit.otp_per_ip", 20)
	v.SetDefault("rate_limit.window", "10m")

	v.SetDefault("model.seed", 42)
	v.SetDefault("model.n_estimators", 100)
	v.SetDefault("model.max_depth", 10)
	v.SetDefault("model.min_samples_split", 2)
	v.SetDefault("model.max_features", 3)
	v.SetDefault("model.test_size", 0.2)

	v.SetDefault("dataset.source", "synthetic")
	v.SetDefault("dataset.machines", 50)
	v.SetDefault("dataset.points_per_machine", 100)
	v.SetDefault("dataset.seed", 42)

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.schedule", "@every 1m")
	v.SetDefault("alerting.notify_channels", []string{})

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return Config{}, errors.New("auth.jwt_secret must be at least 16 bytes")
	}
	if frontend := strings.TrimSpace(v.GetString("frontend_url")); frontend != "" {
		cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, frontend)
	}
	cfg.OTP.Store = strings.ToLower(strings.TrimSpace(cfg.OTP.Store))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	return cfg, nil
}
