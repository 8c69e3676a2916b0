package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/reviveshine/lib2usexpress/internal/logger"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultAuthRateLimit = 20
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the marketplace service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis to back the auth rate limiter. Empty falls back to the in-memory limiter
	RedisURL string

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Carrier quote endpoints as "name=url" pairs separated by commas
	Carriers string

	// Requests per minute allowed on auth endpoints per client IP
	AuthRateLimit int

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		AuthRateLimit: defaultAuthRateLimit,
		Environment:   defaultEnvironment,
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

	envMap := map[string]func(string){
		"RUN_ADDRESS":  setString(&c.ListenAddr),
		"DATABASE_URI": setString(&c.DatabaseDSN),
		"REDIS_URL":    setString(&c.RedisURL),
		"SECRET_KEY":   setString(&c.SecretKey),
		"LOG_LEVEL":    setString(&c.LogLevel),
		"CARRIERS":     setString(&c.Carriers),
		"ENVIRONMENT":  setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("marketplace", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisURL, "redis", "r", c.RedisURL, "Redis connection url for rate limiting")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Carriers, "carriers", "c", c.Carriers, "Carrier endpoints as name=url pairs separated by commas")
	fs.IntVar(&c.AuthRateLimit, "auth-rate-limit", c.AuthRateLimit, "Requests per minute on auth endpoints per client IP")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")

	return fs.Parse(args)
}

// ParseCarriers splits the raw carriers option into a name to url map
func (c *Config) ParseCarriers() (map[string]string, error) {
	carriers := map[string]string{}

	if c.Carriers == "" {
		return carriers, nil
	}

	for _, pair := range strings.Split(c.Carriers, ",") {
		name, url, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" || url == "" {
			return nil, errors.New("carriers must be 'name=url' pairs separated by commas")
		}
		carriers[name] = url
	}

	return carriers, nil
}
