// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/codec"
	handler "github.com/unkn0wn-root/greetcount/handler/http"
)

// Supported stores.
const (
	StoreRedis     = "redis"
	StoreMemory    = "memory"
	StoreRistretto = "ristretto"
	StoreBigcache  = "bigcache"
)

// Supported log backends.
const (
	LogZap    = "zap"
	LogLogrus = "logrus"
	LogSlog   = "slog"
)

// Defaults.
const (
	defaultPort          = "8080"
	defaultRedisAddr     = "127.0.0.1:6379"
	defaultTelemetryAddr = ":9000"
	defaultWriteTimeout  = 5 * time.Second
	defaultLogLevel      = "info"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Port          string
	TelemetryAddr string // empty when disabled

	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Namespace     string
	TTL           time.Duration
	WriteTimeout  time.Duration
	Mode          greetcount.Mode
	Codec         string
	OnMalformed   greetcount.MalformedPolicy
	OnReadFailure handler.FailurePolicy
	RateLimit     float64

	LogBackend string
	LogLevel   string
}

// Addr is the HTTP listen address derived from Port.
func (c Config) Addr() string { return ":" + c.Port }

// FromEnv builds a Config from getenv, usually os.Getenv. Unset and empty
// variables take their default.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Port:          get("PORT", defaultPort),
		TelemetryAddr: defaultTelemetryAddr,
		Store:         get("CACHE_STORE", StoreRedis),
		RedisAddr:     get("REDIS_ADDR", defaultRedisAddr),
		RedisPassword: getenv("REDIS_PASSWORD"),
		Namespace:     getenv("CACHE_NAMESPACE"),
		Codec:         get("COUNTER_CODEC", codec.NameDecimal),
		LogBackend:    get("LOG_BACKEND", LogZap),
		LogLevel:      get("LOG_LEVEL", defaultLogLevel),
	}
	// "off" disables the telemetry listener
	if v := getenv("TELEMETRY_ADDR"); v != "" {
		c.TelemetryAddr = v
		if v == "off" {
			c.TelemetryAddr = ""
		}
	}

	var err error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return Config{}, fmt.Errorf("%w: PORT %q", ErrInvalid, c.Port)
	}

	if c.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil || c.RedisDB < 0 {
		return Config{}, fmt.Errorf("%w: REDIS_DB %q", ErrInvalid, getenv("REDIS_DB"))
	}

	if c.TTL, err = time.ParseDuration(get("CACHE_TTL", "0s")); err != nil || c.TTL < 0 {
		return Config{}, fmt.Errorf("%w: CACHE_TTL %q", ErrInvalid, getenv("CACHE_TTL"))
	}

	c.WriteTimeout, err = time.ParseDuration(get("WRITE_TIMEOUT", defaultWriteTimeout.String()))
	if err != nil || c.WriteTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: WRITE_TIMEOUT %q", ErrInvalid, getenv("WRITE_TIMEOUT"))
	}

	if c.RateLimit, err = strconv.ParseFloat(get("RATE_LIMIT", "0"), 64); err != nil || c.RateLimit < 0 {
		return Config{}, fmt.Errorf("%w: RATE_LIMIT %q", ErrInvalid, getenv("RATE_LIMIT"))
	}

	switch m := get("COUNTER_MODE", "rmw"); m {
	case "rmw":
		c.Mode = greetcount.ModeReadModifyWrite
	case "atomic":
		c.Mode = greetcount.ModeAtomic
	default:
		return Config{}, fmt.Errorf("%w: COUNTER_MODE %q", ErrInvalid, m)
	}

	switch m := get("ON_MALFORMED", "reset"); m {
	case "reset":
		c.OnMalformed = greetcount.ResetMalformed
	case "fail":
		c.OnMalformed = greetcount.FailMalformed
	default:
		return Config{}, fmt.Errorf("%w: ON_MALFORMED %q", ErrInvalid, m)
	}

	if c.OnReadFailure, err = handler.ParseFailurePolicy(getenv("ON_READ_FAILURE")); err != nil {
		return Config{}, fmt.Errorf("%w: ON_READ_FAILURE: %v", ErrInvalid, err)
	}

	switch c.Store {
	case StoreRedis, StoreMemory, StoreRistretto, StoreBigcache:
	default:
		return Config{}, fmt.Errorf("%w: CACHE_STORE %q", ErrInvalid, c.Store)
	}

	switch c.LogBackend {
	case LogZap, LogLogrus, LogSlog:
	default:
		return Config{}, fmt.Errorf("%w: LOG_BACKEND %q", ErrInvalid, c.LogBackend)
	}

	if _, err := codec.ByName(c.Codec); err != nil {
		return Config{}, fmt.Errorf("%w: COUNTER_CODEC: %v", ErrInvalid, err)
	}

	return c, nil
}
