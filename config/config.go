package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RouteConfig describes one forwarding rule. Exactly one of Target and Pool
// must be set. A nil Retries means the route uses the default retry budget.
type RouteConfig struct {
	Name        string            `mapstructure:"name"`
	Pattern     string            `mapstructure:"pattern"`
	Target      string            `mapstructure:"target"`
	Pool        string            `mapstructure:"pool"`
	Methods     []string          `mapstructure:"methods"`
	StripPrefix bool              `mapstructure:"strip_prefix"`
	Timeout     string            `mapstructure:"timeout"`
	Retries     *int              `mapstructure:"retries"`
	Headers     map[string]string `mapstructure:"headers"`
	CacheTTL    string            `mapstructure:"cache_ttl"`
}

type PoolConfig struct {
	Name      string   `mapstructure:"name"`
	Strategy  string   `mapstructure:"strategy"`
	Instances []string `mapstructure:"instances"`
}

type GatewayConfig struct {
	Routes []RouteConfig `mapstructure:"routes"`
	Pools  []PoolConfig  `mapstructure:"pools"`
}

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("health_check.interval", "10s")
	viper.SetDefault("rate_limit.enabled", false)
	viper.SetDefault("rate_limit.requests_per_second", 100.0)
	viper.SetDefault("rate_limit.burst", 200)
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.address", "localhost:6379")
	viper.SetDefault("cache.db", 0)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.RateLimit,
			validation.By(func(value interface{}) error {
				rl, ok := value.(RateLimitConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RateLimitConfig")
				}
				if !rl.Enabled {
					return nil
				}
				return validation.ValidateStruct(&rl,
					validation.Field(&rl.RequestsPerSecond, validation.Required, validation.Min(0.0).Exclusive()),
					validation.Field(&rl.Burst, validation.Required, validation.Min(1)),
				)
			}),
		),
		validation.Field(&c.Cache,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CacheConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CacheConfig")
				}
				if !cc.Enabled {
					return nil
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.Address, validation.Required, validation.By(validateHostPort)),
					validation.Field(&cc.DB, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.Gateway,
			validation.Required,
			validation.By(validateGatewayConfig),
		),
	)
}

func validateGatewayConfig(value interface{}) error {
	gc, ok := value.(GatewayConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a GatewayConfig")
	}

	pools := make(map[string]bool, len(gc.Pools))
	for _, p := range gc.Pools {
		if pools[p.Name] {
			return validation.NewError("validation_duplicate_pool", "duplicate pool name: "+p.Name)
		}
		pools[p.Name] = true
	}

	if err := validation.ValidateStruct(&gc,
		validation.Field(&gc.Routes,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateRouteConfig)),
		),
		validation.Field(&gc.Pools,
			validation.Each(validation.By(validatePoolConfig)),
		),
	); err != nil {
		return err
	}

	for _, r := range gc.Routes {
		if r.Pool != "" && !pools[r.Pool] {
			return validation.NewError("validation_unknown_pool", "route "+r.Name+" references unknown pool: "+r.Pool)
		}
	}

	return nil
}

func validateRouteConfig(value interface{}) error {
	rc, ok := value.(RouteConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a RouteConfig")
	}

	if rc.Pattern == "" || !strings.HasPrefix(rc.Pattern, "/") {
		return validation.NewError("validation_invalid_pattern", "pattern must start with /")
	}

	if (rc.Target == "") == (rc.Pool == "") {
		return validation.NewError("validation_invalid_destination", "exactly one of target and pool must be set")
	}

	if rc.Target != "" {
		if err := validateServerURL(rc.Target); err != nil {
			return err
		}
	}

	if rc.Timeout != "" {
		if err := validateDuration(rc.Timeout); err != nil {
			return err
		}
	}

	if rc.CacheTTL != "" {
		if err := validateDuration(rc.CacheTTL); err != nil {
			return err
		}
	}

	if rc.Retries != nil && *rc.Retries < 0 {
		return validation.NewError("validation_invalid_retries", "retries cannot be negative")
	}

	return nil
}

func validatePoolConfig(value interface{}) error {
	pc, ok := value.(PoolConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a PoolConfig")
	}

	if pc.Name == "" {
		return validation.NewError("validation_empty_pool_name", "pool name cannot be empty")
	}

	if _, err := strategy.New(pc.Strategy); err != nil {
		return validation.NewError("validation_invalid_strategy", err.Error())
	}

	if len(pc.Instances) == 0 {
		return validation.NewError("validation_empty_pool", "pool must have at least one instance")
	}

	for _, instance := range pc.Instances {
		if err := validateServerURL(instance); err != nil {
			return err
		}
	}

	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if durationStr == "" {
		return nil
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if serverURL == "" {
		return validation.NewError("validation_empty_url", "server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
