package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"

	// Торгуем одной парой фиксированным объёмом.
	DefaultPair         = "SOLUSD"
	DefaultPositionSize = "2.22"

	DefaultKrakenURL = "https://api.kraken.com"
)

// Config собирается один раз на старте и дальше только читается.
type Config struct {
	Service struct {
		Host       string
		PublicPort int
		AdminPort  int
	}

	Kraken struct {
		APIKey       string
		APISecret    string
		BaseURL      string
		Timeout      time.Duration
		ValidateOnly bool // validate=true у Kraken: ордер проверяется, но не ставится
	}

	SMTP struct {
		Host     string
		Port     int
		Address  string
		Password string
		To       string
		Timeout  time.Duration
		// AllowPlaintext разрешает relay без STARTTLS (локальный MTA). По умолчанию TLS обязателен.
		AllowPlaintext bool
	}

	Telegram struct {
		Token  string
		ChatID int64
	}

	Trading struct {
		Pair         string
		PositionSize decimal.Decimal
	}

	Dispatch struct {
		Serialize  bool
		RatePerSec float64 // 0 = без лимита
	}

	Notify struct {
		Async     bool
		QueueSize int
		Timeout   time.Duration
	}

	Log struct {
		Level string
		File  string
	}

	Tracing struct {
		Enabled     bool
		Host        string
		Port        int
		ServiceName string
	}
}

// fileConfig то, что можно задать в yaml. Секреты только через env.
type fileConfig struct {
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`
	Kraken struct {
		BaseURL      string `yaml:"base_url"`
		Timeout      string `yaml:"timeout"`
		ValidateOnly *bool  `yaml:"validate_only"`
	} `yaml:"kraken"`
	SMTP struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		To      string `yaml:"to"`
		Timeout string `yaml:"timeout"`
	} `yaml:"smtp"`
	Trading struct {
		Pair         string `yaml:"pair"`
		PositionSize string `yaml:"position_size"`
	} `yaml:"trading"`
	Dispatch struct {
		Serialize  *bool   `yaml:"serialize"`
		RatePerSec float64 `yaml:"rate_per_sec"`
	} `yaml:"dispatch"`
	Notify struct {
		Async     *bool  `yaml:"async"`
		QueueSize int    `yaml:"queue_size"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"notify"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Tracing struct {
		Enabled     *bool  `yaml:"enabled"`
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"tracing"`
}

// Error ошибка конкретного поля конфига.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string { return "config error [" + e.Field + "]: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ключ viper -> переменная окружения
var envKeys = map[string]string{
	"service.host":          "BIND_HOST",
	"service.public_port":   "PORT",
	"service.admin_port":    "ADMIN_PORT",
	"kraken.api_key":        "KRAKEN_API_KEY",
	"kraken.api_secret":     "KRAKEN_API_SECRET",
	"kraken.base_url":       "KRAKEN_BASE_URL",
	"kraken.timeout":        "KRAKEN_TIMEOUT",
	"kraken.validate_only":  "KRAKEN_VALIDATE_ONLY",
	"smtp.host":             "EMAIL_HOST",
	"smtp.port":             "EMAIL_PORT",
	"smtp.address":          "EMAIL_ADDRESS",
	"smtp.password":         "EMAIL_PASSWORD",
	"smtp.to":               "EMAIL_TO",
	"smtp.timeout":          "EMAIL_TIMEOUT",
	"smtp.allow_plaintext":  "EMAIL_ALLOW_PLAINTEXT",
	"telegram.token":        "TELEGRAM_TOKEN",
	"telegram.chat_id":      "TELEGRAM_CHAT_ID",
	"trading.pair":          "TRADING_PAIR",
	"trading.position_size": "POSITION_SIZE",
	"dispatch.serialize":    "DISPATCH_SERIALIZE",
	"dispatch.rate_per_sec": "DISPATCH_RATE_PER_SEC",
	"notify.async":          "NOTIFY_ASYNC",
	"notify.queue_size":     "NOTIFY_QUEUE_SIZE",
	"notify.timeout":        "NOTIFY_TIMEOUT",
	"log.level":             "LOG_LEVEL",
	"log.file":              "LOG_FILE",
	"tracing.enabled":       "TRACING_ENABLED",
	"tracing.host":          "JAEGER_HOST",
	"tracing.port":          "JAEGER_PORT",
	"tracing.service_name":  "TRACING_SERVICE_NAME",
}

// NewConfig: .env -> дефолты -> yaml из CONFIG_FILE -> переменные окружения.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(configFilePathENV); path != "" {
		if err := applyFile(v, path); err != nil {
			return nil, err
		}
	}

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", env)
		}
	}

	cfg, err := build(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.public_port", 5001)
	v.SetDefault("service.admin_port", 8080)

	v.SetDefault("kraken.base_url", DefaultKrakenURL)
	v.SetDefault("kraken.timeout", "10s")
	v.SetDefault("kraken.validate_only", false)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.timeout", "10s")

	v.SetDefault("trading.pair", DefaultPair)
	v.SetDefault("trading.position_size", DefaultPositionSize)

	v.SetDefault("dispatch.serialize", true)
	v.SetDefault("dispatch.rate_per_sec", 0.0)

	v.SetDefault("notify.async", false)
	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("notify.timeout", "15s")

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
	v.SetDefault("tracing.service_name", "kraken_bot")
}

// applyFile кладёт значения из yaml поверх дефолтов, env по-прежнему главнее.
func applyFile(v *viper.Viper, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()

	var fc fileConfig
	if err := yaml.NewDecoder(file).Decode(&fc); err != nil {
		return errors.Wrap(err, "decode config file")
	}

	setString(v, "service.host", fc.Service.Host)
	setInt(v, "service.public_port", fc.Service.PublicPort)
	setInt(v, "service.admin_port", fc.Service.AdminPort)

	setString(v, "kraken.base_url", fc.Kraken.BaseURL)
	setString(v, "kraken.timeout", fc.Kraken.Timeout)
	setBool(v, "kraken.validate_only", fc.Kraken.ValidateOnly)

	setString(v, "smtp.host", fc.SMTP.Host)
	setInt(v, "smtp.port", fc.SMTP.Port)
	setString(v, "smtp.to", fc.SMTP.To)
	setString(v, "smtp.timeout", fc.SMTP.Timeout)

	setString(v, "trading.pair", fc.Trading.Pair)
	setString(v, "trading.position_size", fc.Trading.PositionSize)

	setBool(v, "dispatch.serialize", fc.Dispatch.Serialize)
	if fc.Dispatch.RatePerSec > 0 {
		v.SetDefault("dispatch.rate_per_sec", fc.Dispatch.RatePerSec)
	}

	setBool(v, "notify.async", fc.Notify.Async)
	setInt(v, "notify.queue_size", fc.Notify.QueueSize)
	setString(v, "notify.timeout", fc.Notify.Timeout)

	setString(v, "log.level", fc.Log.Level)
	setString(v, "log.file", fc.Log.File)

	setBool(v, "tracing.enabled", fc.Tracing.Enabled)
	setString(v, "tracing.host", fc.Tracing.Host)
	setInt(v, "tracing.port", fc.Tracing.Port)
	setString(v, "tracing.service_name", fc.Tracing.ServiceName)
	return nil
}

func setString(v *viper.Viper, key, val string) {
	if val != "" {
		v.SetDefault(key, val)
	}
}

func setInt(v *viper.Viper, key string, val int) {
	if val != 0 {
		v.SetDefault(key, val)
	}
}

func setBool(v *viper.Viper, key string, val *bool) {
	if val != nil {
		v.SetDefault(key, *val)
	}
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Service.Host = v.GetString("service.host")
	cfg.Service.PublicPort = v.GetInt("service.public_port")
	cfg.Service.AdminPort = v.GetInt("service.admin_port")

	cfg.Kraken.APIKey = v.GetString("kraken.api_key")
	cfg.Kraken.APISecret = v.GetString("kraken.api_secret")
	cfg.Kraken.BaseURL = v.GetString("kraken.base_url")
	cfg.Kraken.ValidateOnly = v.GetBool("kraken.validate_only")

	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Address = v.GetString("smtp.address")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.To = v.GetString("smtp.to")
	cfg.SMTP.AllowPlaintext = v.GetBool("smtp.allow_plaintext")

	cfg.Telegram.Token = v.GetString("telegram.token")
	if raw := v.GetString("telegram.chat_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &Error{Field: "telegram.chat_id", Err: err}
		}
		cfg.Telegram.ChatID = id
	}

	cfg.Trading.Pair = v.GetString("trading.pair")
	size, err := decimal.NewFromString(v.GetString("trading.position_size"))
	if err != nil {
		return nil, &Error{Field: "trading.position_size", Err: err}
	}
	cfg.Trading.PositionSize = size

	cfg.Dispatch.Serialize = v.GetBool("dispatch.serialize")
	cfg.Dispatch.RatePerSec = v.GetFloat64("dispatch.rate_per_sec")

	cfg.Notify.Async = v.GetBool("notify.async")
	cfg.Notify.QueueSize = v.GetInt("notify.queue_size")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = v.GetString("log.file")

	cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	cfg.Tracing.Host = v.GetString("tracing.host")
	cfg.Tracing.Port = v.GetInt("tracing.port")
	cfg.Tracing.ServiceName = v.GetString("tracing.service_name")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"kraken.timeout", &cfg.Kraken.Timeout},
		{"smtp.timeout", &cfg.SMTP.Timeout},
		{"notify.timeout", &cfg.Notify.Timeout},
	}
	for _, d := range durations {
		val, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, &Error{Field: d.key, Err: err}
		}
		*d.dst = val
	}

	return cfg, nil
}

// Validate проверяет то, без чего сервис не поднимется корректно.
// Пустые ключи Kraken не ошибка: каждый ордер тогда упадёт с понятной причиной.
func (c *Config) Validate() error {
	if err := checkPort("service.public_port", c.Service.PublicPort); err != nil {
		return err
	}
	if err := checkPort("service.admin_port", c.Service.AdminPort); err != nil {
		return err
	}
	if c.Service.PublicPort == c.Service.AdminPort {
		return &Error{Field: "service.admin_port", Err: fmt.Errorf("must differ from public port %d", c.Service.PublicPort)}
	}
	if c.Trading.Pair == "" {
		return &Error{Field: "trading.pair", Err: errors.New("is empty")}
	}
	if !c.Trading.PositionSize.IsPositive() {
		return &Error{Field: "trading.position_size", Err: fmt.Errorf("must be > 0, got %s", c.Trading.PositionSize)}
	}
	if c.Kraken.Timeout <= 0 {
		return &Error{Field: "kraken.timeout", Err: errors.New("must be > 0")}
	}
	if c.SMTP.Host != "" {
		if err := checkPort("smtp.port", c.SMTP.Port); err != nil {
			return err
		}
		if c.SMTP.Address == "" || c.SMTP.To == "" {
			return &Error{Field: "smtp", Err: errors.New("EMAIL_ADDRESS and EMAIL_TO are required when EMAIL_HOST is set")}
		}
		if c.SMTP.Timeout <= 0 {
			return &Error{Field: "smtp.timeout", Err: errors.New("must be > 0")}
		}
	}
	if c.Dispatch.RatePerSec < 0 {
		return &Error{Field: "dispatch.rate_per_sec", Err: errors.New("must be >= 0")}
	}
	if c.Notify.Async && c.Notify.QueueSize <= 0 {
		return &Error{Field: "notify.queue_size", Err: errors.New("must be > 0 when notify.async is on")}
	}
	return nil
}

func checkPort(field string, port int) error {
	if port <= 0 || port > 65535 {
		return &Error{Field: field, Err: fmt.Errorf("invalid port %d", port)}
	}
	return nil
}

func (c *Config) PublicAddr() string {
	return net.JoinHostPort(c.Service.Host, strconv.Itoa(c.Service.PublicPort))
}

func (c *Config) AdminAddr() string {
	return net.JoinHostPort(c.Service.Host, strconv.Itoa(c.Service.AdminPort))
}

func (c *Config) HasKrakenCreds() bool { return c.Kraken.APIKey != "" && c.Kraken.APISecret != "" }
