package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joy095/parlour/logger"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// insecureSecrets are placeholder values that must never sign production tokens.
var insecureSecrets = map[string]bool{
	"your_jwt_secret_key_here": true,
	"secret":                   true,
	"changeme":                 true,
}

// Config is the process configuration, read from the environment.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"3000"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	AutoMigrate   bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"8h"`

	// Seed admin for STORAGE_DRIVER=memory, which starts empty.
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	BookingFee       float64       `envconfig:"BOOKING_FEE" default:"100"`
	PendingRetention time.Duration `envconfig:"PENDING_RETENTION" default:"24h"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`

	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername  string `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	FromEmail     string `envconfig:"FROM_EMAIL"`
	FromName      string `envconfig:"FROM_NAME" default:"Orchid Beauty Parlour"`
	BusinessEmail string `envconfig:"BUSINESS_EMAIL"`

	RedisURL         string `envconfig:"REDIS_URL"`
	LoginRateLimits  []string `envconfig:"LOGIN_RATE_LIMIT" default:"10-2m,30-1h"`
	BookingRateLimit string `envconfig:"BOOKING_RATE_LIMIT" default:"20-1m"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"parlour.bookings"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	LogDir string `envconfig:"LOG_DIR" default:"logs"`
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		logger.WarnLogger.Warnf("Failed to load env file %s: %v", path, err)
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot safely start with.
func (c *Config) Validate() error {
	var problems []string

	secret := strings.TrimSpace(c.JWTSecret)
	switch {
	case secret == "":
		problems = append(problems, "JWT_SECRET must be set")
	case insecureSecrets[strings.ToLower(secret)]:
		problems = append(problems, "JWT_SECRET uses a well-known placeholder value")
	case c.IsProduction() && len(secret) < 32:
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL must be set when STORAGE_DRIVER=postgres")
		}
	case DriverMemory:
		if c.IsProduction() {
			problems = append(problems, "STORAGE_DRIVER=memory is not allowed in production")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.BookingFee < 0 {
		problems = append(problems, "BOOKING_FEE must not be negative")
	}
	if c.PendingRetention <= 0 || c.SweepInterval <= 0 {
		problems = append(problems, "PENDING_RETENTION and SWEEP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// SMTPConfigured reports whether outbound mail can be delivered.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}
