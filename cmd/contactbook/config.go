package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/contactbook/internal/logger"
)

const (
	defaultListenAddr      = "localhost:8000"
	defaultLoggingLevel    = logger.LevelInfo
	defaultEnvironment     = logger.EnvProduction
	defaultRedisAddr       = "localhost:6379"
	defaultRateLimitMax    = 60
	defaultRateLimitWindow = time.Minute
	defaultBirthdayWindow  = 7
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the contactbook service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis address for the cache, denylist and rate limit backend
	RedisAddr string

	// Independent secret keys, one per token purpose
	// Keeping them disjoint is the point: a leaked secret compromises one
	// token purpose only
	AccessSecret  string
	RefreshSecret string
	EmailSecret   string

	// Rate limiting: max requests per client within the window
	RateLimitMax    int64
	RateLimitWindow time.Duration

	// How many days ahead the upcoming birthday report looks
	BirthdayWindowDays int

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		RedisAddr:          defaultRedisAddr,
		RateLimitMax:       defaultRateLimitMax,
		RateLimitWindow:    defaultRateLimitWindow,
		BirthdayWindowDays: defaultBirthdayWindow,
		Environment:        defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt64 := func(o *int64) func(value string) {
		return func(value string) {
			if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
				*o = parsed
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if parsed, err := time.ParseDuration(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"REDIS_ADDRESS":        setString(&c.RedisAddr),
		"ACCESS_SECRET_KEY":    setString(&c.AccessSecret),
		"REFRESH_SECRET_KEY":   setString(&c.RefreshSecret),
		"EMAIL_SECRET_KEY":     setString(&c.EmailSecret),
		"RATE_LIMIT_MAX":       setInt64(&c.RateLimitMax),
		"RATE_LIMIT_WINDOW":    setDuration(&c.RateLimitWindow),
		"BIRTHDAY_WINDOW_DAYS": setInt(&c.BirthdayWindowDays),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("contactbook", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisAddr, "redis", "r", c.RedisAddr, "Redis address")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Access token secret key")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token secret key")
	fs.StringVar(&c.EmailSecret, "email-secret", c.EmailSecret, "Email verification token secret key")
	fs.Int64Var(&c.RateLimitMax, "rate-limit-max", c.RateLimitMax, "Max requests per client per window")
	fs.DurationVar(&c.RateLimitWindow, "rate-limit-window", c.RateLimitWindow, "Rate limit window")
	fs.IntVar(&c.BirthdayWindowDays, "birthday-window", c.BirthdayWindowDays, "Upcoming birthdays window in days")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
