package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Analyzer struct {
		BiasLow     float64  `yaml:"bias_low"`
		BiasCaution float64  `yaml:"bias_caution"`
		MaxWorkers  int      `yaml:"max_workers"`
		Timeframe   string   `yaml:"timeframe"`
		KlineLimit  int      `yaml:"kline_limit"`
		Watchlist   []string `yaml:"watchlist"`
	} `yaml:"analyzer"`
	Exchange struct {
		Name           string        `yaml:"name"`
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		StreamSymbols  []string      `yaml:"stream_symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"exchange"`
	Onchain struct {
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		RateLimitRPS float64       `yaml:"rate_limit_rps"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"onchain"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ONCHAIN_API_KEY"); v != "" {
		c.Onchain.APIKey = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Analyzer.Watchlist = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Analyzer.BiasLow == 0 {
		c.Analyzer.BiasLow = 5.0
	}
	if c.Analyzer.BiasCaution == 0 {
		c.Analyzer.BiasCaution = 10.0
	}
	if c.Analyzer.MaxWorkers == 0 {
		c.Analyzer.MaxWorkers = 3
	}
	if c.Analyzer.Timeframe == "" {
		c.Analyzer.Timeframe = "4h"
	}
	if c.Analyzer.KlineLimit == 0 {
		c.Analyzer.KlineLimit = 100
	}
	if c.Exchange.Name == "" {
		c.Exchange.Name = "binance"
	}
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.binance.com"
	}
	if c.Exchange.WebSocketURL == "" {
		c.Exchange.WebSocketURL = "wss://stream.binance.com:9443"
	}
	if c.Exchange.RateLimitRPS == 0 {
		c.Exchange.RateLimitRPS = 10
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = 10 * time.Second
	}
	if c.Exchange.ReconnectDelay == 0 {
		c.Exchange.ReconnectDelay = 5 * time.Second
	}
	if c.Exchange.PingInterval == 0 {
		c.Exchange.PingInterval = 30 * time.Second
	}
	if c.Onchain.BaseURL == "" {
		c.Onchain.BaseURL = "https://api.geckoterminal.com/api/v2"
	}
	if c.Onchain.RateLimitRPS == 0 {
		c.Onchain.RateLimitRPS = 2
	}
	if c.Onchain.Timeout == 0 {
		c.Onchain.Timeout = 15 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Analyzer.Timeframe {
	case "1h", "4h", "1d":
	default:
		return fmt.Errorf("analyzer.timeframe must be '1h', '4h' or '1d', got '%s'", c.Analyzer.Timeframe)
	}
	if c.Analyzer.BiasLow <= 0 || c.Analyzer.BiasCaution <= 0 {
		return fmt.Errorf("analyzer bias thresholds must be positive")
	}
	if c.Analyzer.BiasCaution <= c.Analyzer.BiasLow {
		return fmt.Errorf("analyzer.bias_caution must be greater than analyzer.bias_low")
	}
	if c.Analyzer.MaxWorkers < 1 {
		return fmt.Errorf("analyzer.max_workers must be at least 1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Exchange.Timeout <= 0 {
		return fmt.Errorf("exchange.timeout must be positive")
	}
	return nil
}
