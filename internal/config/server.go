package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Переменные окружения сервера
const (
	EnvConfig    = "WORDKEEPER_CONFIG"
	EnvAddr      = "WORDKEEPER_ADDR"
	EnvDB        = "WORDKEEPER_DB"
	EnvJWTSecret = "WORDKEEPER_JWT_SECRET"
	EnvLogLevel  = "WORDKEEPER_LOG_LEVEL"
)

// ErrHelp запрошена справка по флагам
var ErrHelp = flag.ErrHelp

// Server runtime settings for the sync server
type Server struct {
	Address         string        `yaml:"address"`
	DatabasePath    string        `yaml:"database_path"`
	JWTSecret       string        `yaml:"jwt_secret"`
	SeedFile        string        `yaml:"seed_file"` // YAML со справочными данными, импортируется при старте
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"` // text | json
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"` // запросов в секунду на пользователя или IP
	RateBurst       int           `yaml:"rate_burst"`
}

// DefaultServer значения для локальной разработки.
// JWTSecret не задан: его нужно передать явно.
func DefaultServer() Server {
	return Server{
		Address:         ":8080",
		DatabasePath:    "wordkeeper.db",
		LogLevel:        "info",
		LogFormat:       "text",
		AccessTokenTTL:  24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       20,
		RateBurst:       40,
	}
}

// LoadServer собирает конфигурацию: defaults -> YAML -> env -> flags.
// Путь к YAML берется из флага -config или из WORDKEEPER_CONFIG.
func LoadServer(args []string, getenv func(string) string) (Server, error) {
	cfg := DefaultServer()

	fs := flag.NewFlagSet("wordkeeper-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	flags := cfg
	fs.StringVar(&flags.Address, "addr", cfg.Address, "address and port to listen on")
	fs.StringVar(&flags.DatabasePath, "db", cfg.DatabasePath, "path to the SQLite database")
	fs.StringVar(&flags.JWTSecret, "jwt-secret", cfg.JWTSecret, "HMAC secret for access tokens")
	fs.StringVar(&flags.SeedFile, "seed", cfg.SeedFile, "YAML file with reference data to import")
	fs.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&flags.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.DurationVar(&flags.AccessTokenTTL, "token-ttl", cfg.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&flags.RequestTimeout, "request-timeout", cfg.RequestTimeout, "HTTP read/write timeout")
	fs.DurationVar(&flags.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	fs.Float64Var(&flags.RateLimit, "rate-limit", cfg.RateLimit, "requests per second per user")
	fs.IntVar(&flags.RateBurst, "rate-burst", cfg.RateBurst, "rate limiter burst")

	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}

	path := *configPath
	if path == "" {
		path = getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Server{}, err
		}
	}

	cfg.mergeEnv(getenv)

	// Флаги применяются только явно заданные
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Address = flags.Address
		case "db":
			cfg.DatabasePath = flags.DatabasePath
		case "jwt-secret":
			cfg.JWTSecret = flags.JWTSecret
		case "seed":
			cfg.SeedFile = flags.SeedFile
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-format":
			cfg.LogFormat = flags.LogFormat
		case "token-ttl":
			cfg.AccessTokenTTL = flags.AccessTokenTTL
		case "request-timeout":
			cfg.RequestTimeout = flags.RequestTimeout
		case "shutdown-timeout":
			cfg.ShutdownTimeout = flags.ShutdownTimeout
		case "rate-limit":
			cfg.RateLimit = flags.RateLimit
		case "rate-burst":
			cfg.RateBurst = flags.RateBurst
		}
	})

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s *Server) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (s *Server) mergeEnv(getenv func(string) string) {
	if v := getenv(EnvAddr); v != "" {
		s.Address = v
	}
	if v := getenv(EnvDB); v != "" {
		s.DatabasePath = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		s.JWTSecret = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
}

// Validate проверяет обязательные поля
func (s Server) Validate() error {
	var errs []error
	if s.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if s.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if len(s.JWTSecret) < 16 {
		errs = append(errs, fmt.Errorf("jwt secret must be at least 16 characters (set %s)", EnvJWTSecret))
	}
	if s.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if s.RateLimit <= 0 || s.RateBurst <= 0 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %s", strconv.Quote(s.LogFormat)))
	}
	return errors.Join(errs...)
}
