package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/zetas/barbershop/internal/core/schedule"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	BodyLimit   string `env:"BODY_LIMIT,   default=12M"`
	CORSOrigins string `env:"CORS_ORIGINS"`

	Store    StoreConfig
	Uploads  UploadsConfig
	Admin    AdminConfig
	Schedule ScheduleConfig
	Twilio   TwilioConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=file"`
	DataDir string `env:"DATA_DIR,      default=data"`
}

type UploadsConfig struct {
	PublicDir      string `env:"PUBLIC_DIR,             default=public"`
	Subdir         string `env:"UPLOADS_SUBDIR,         default=uploads/services"`
	CleanupWorkers int    `env:"UPLOAD_CLEANUP_WORKERS, default=2"`
}

type AdminConfig struct {
	Password     string        `env:"ADMIN_PASSWORD"`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"ADMIN_SESSION_TTL, default=12h"`
}

type ScheduleConfig struct {
	ClosedDays          string        `env:"SCHEDULE_CLOSED_DAYS, default=sunday,monday"`
	Windows             string        `env:"SCHEDULE_WINDOWS,     default=09:00-12:30,15:00-20:30"`
	PublicStep          time.Duration `env:"SCHEDULE_PUBLIC_STEP, default=30m"`
	AdminStep           time.Duration `env:"SCHEDULE_ADMIN_STEP,  default=15m"`
	AppointmentDuration time.Duration `env:"APPOINTMENT_DURATION, default=30m"`
	TimeZone            string        `env:"SCHEDULE_TZ,          default=Local"`
}

type TwilioConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"TWILIO_FROM_NUMBER"`
	BaseURL    string `env:"TWILIO_BASE_URL, default=https://api.twilio.com"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=barbershop"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// DeskConfig configures the admin desk CLI.
type DeskConfig struct {
	APIURL        string        `env:"DESK_API_URL,       default=http://localhost:8080"`
	CacheDir      string        `env:"DESK_CACHE_DIR,     default=.deskctl"`
	PollInterval  time.Duration `env:"DESK_POLL_INTERVAL, default=30s"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	LogLevel      string        `env:"LOG_LEVEL,          default=info"`
	Bell          bool          `env:"DESK_BELL,          default=true"`
	SMSReminders  bool          `env:"DESK_SMS_REMINDERS, default=false"`
	RedisAddr     string        `env:"DESK_REDIS_ADDR"`

	Twilio TwilioConfig
}

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	loadDotEnv()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith decodes and validates configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDesk loads the CLI configuration.
func LoadDesk(ctx context.Context) (*DeskConfig, error) {
	loadDotEnv()
	var cfg DeskConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load desk config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if _, err := c.Schedule.Public(); err != nil {
		return err
	}
	if c.Schedule.AppointmentDuration <= 0 {
		return errors.New("config: APPOINTMENT_DURATION must be positive")
	}
	return nil
}

// IsDevelopment reports whether human-friendly logs should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Origins splits CORS_ORIGINS. An empty result means any origin.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Public returns the policy used by the public booking calendar.
func (s ScheduleConfig) Public() (schedule.Policy, error) {
	return s.policy(s.PublicStep)
}

// Admin returns the policy used by the admin calendar.
func (s ScheduleConfig) Admin() (schedule.Policy, error) {
	return s.policy(s.AdminStep)
}

func (s ScheduleConfig) policy(step time.Duration) (schedule.Policy, error) {
	if step <= 0 {
		return schedule.Policy{}, fmt.Errorf("config: %w", schedule.ErrInvalidStep)
	}
	closed, err := schedule.ParseWeekdays(s.ClosedDays)
	if err != nil {
		return schedule.Policy{}, fmt.Errorf("config: SCHEDULE_CLOSED_DAYS: %w", err)
	}
	windows, err := schedule.ParseWindows(s.Windows)
	if err != nil {
		return schedule.Policy{}, fmt.Errorf("config: SCHEDULE_WINDOWS: %w", err)
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return schedule.Policy{}, fmt.Errorf("config: SCHEDULE_TZ: %w", err)
	}
	return schedule.Policy{ClosedDays: closed, Windows: windows, Step: step, Location: loc}, nil
}
