package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	LogFile     string        `env:"LOG_FILE"`
	StoreDriver string        `env:"STORE_DRIVER, default=mongo"`
	FrontendURL string        `env:"FRONTEND_URL, default=http://localhost:5173"`

	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Scheduler SchedulerConfig
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=project_management"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SMTPConfig is optional: with an empty Host, mail is logged instead of sent.
type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT,      default=587"`
	User     string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASS"`
	From     string        `env:"SMTP_FROM,      default=no-reply@projecthub.local"`
	FromName string        `env:"SMTP_FROM_NAME, default=ProjectHub"`
	Timeout  time.Duration `env:"MAIL_TIMEOUT,   default=10s"`
}

type SchedulerConfig struct {
	Enabled      bool   `env:"SCHEDULER_ENABLED,       default=true"`
	Timezone     string `env:"SCHEDULER_TIMEZONE,      default=America/New_York"`
	DeadlineSpec string `env:"SCHEDULER_DEADLINE_SPEC, default=0 8-18 * * *"`
	OverdueSpec  string `env:"SCHEDULER_OVERDUE_SPEC,  default=0 */6 * * *"`
	WeeklySpec   string `env:"SCHEDULER_WEEKLY_SPEC,   default=0 9 * * *"`
}

// BootstrapConfig describes the admin account ensured at startup.
// Nothing is created when Email is empty.
type BootstrapConfig struct {
	AdminName     string `env:"ADMIN_NAME, default=Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Location resolves the scheduler timezone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: scheduler timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	switch cfg.StoreDriver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", cfg.StoreDriver)
	}
	return &cfg, nil
}
