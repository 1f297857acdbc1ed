package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"Halcon/internal/domain/models"
	"Halcon/internal/services/features"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			Capacity     float64 `yaml:"capacity" default:"20" validate:"gte=1"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"5" validate:"gt=0"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Provider   ProviderConfig     `yaml:"provider"`
	Screener   ScreenerConfig     `yaml:"screener"`
	Valuation  models.Assumptions `yaml:"valuation"`
	Simulation SimulationConfig   `yaml:"simulation"`
	Cache      CacheConfig        `yaml:"cache"`
	Kafka      KafkaConfig        `yaml:"kafka"`
	ClickHouse ClickHouseConfig   `yaml:"clickhouse"`
}

// ProviderConfig selects and tunes the market data source.
type ProviderConfig struct {
	Type              string          `yaml:"type" default:"yahoo" validate:"oneof=yahoo clickhouse"`
	LookbackDays      int             `yaml:"lookback_days" default:"60" validate:"gte=41,lte=3650"`
	Interval          models.Interval `yaml:"interval" default:"1d" validate:"oneof=1d 1wk"`
	RetryCount        int             `yaml:"retry_count" default:"3" validate:"gte=1,lte=10"`
	RetryDelay        time.Duration   `yaml:"retry_delay" default:"1s" validate:"gte=0"`
	Timeout           time.Duration   `yaml:"timeout" default:"30s"`
	RequestsPerSecond float64         `yaml:"requests_per_second" default:"2" validate:"gt=0"`
	Burst             int             `yaml:"burst" default:"2" validate:"gte=1"`
	Concurrency       int             `yaml:"concurrency" default:"4" validate:"gte=1,lte=32"`
	QuoteSummaryURL   string          `yaml:"quote_summary_url" default:"https://query2.finance.yahoo.com" validate:"url"`
}

type ScreenerConfig struct {
	Symbols  []string        `yaml:"symbols" default:"[\"EURUSD=X\",\"GBPUSD=X\",\"USDJPY=X\",\"BTC-USD\",\"GC=F\",\"ES=F\"]" validate:"required,min=1,dive,required"`
	Features features.Params `yaml:"features"`
	Cooldown time.Duration   `yaml:"cooldown" default:"5m"`
}

type SimulationConfig struct {
	Paths   int   `yaml:"paths" default:"100" validate:"gte=100,lte=250"`
	Horizon int   `yaml:"horizon" default:"5" validate:"gte=1,lte=60"`
	Seed    int64 `yaml:"seed"`
}

type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl" default:"10m" validate:"gte=1s,lte=24h"`
	MaxSize int           `yaml:"max_size" default:"1000" validate:"gte=1"`
	Redis   struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"halcon"`
	} `yaml:"redis"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"halcon.screens"`
	LogTopic     string   `yaml:"log_topic" default:"halcon.logs"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"halcon"`
	Table            string        `yaml:"table" default:"daily_bars"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads a .env file when present, then the YAML file, then
// applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HALCON_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HALCON_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HALCON_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("HALCON_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("HALCON_SYMBOLS"); v != "" {
		c.Screener.Symbols = models.SplitSymbols(v)
	}
	if v := os.Getenv("HALCON_PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("HALCON_RETRY_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HALCON_RETRY_COUNT: %w", err)
		}
		c.Provider.RetryCount = n
	}
	if v := os.Getenv("HALCON_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HALCON_RETRY_DELAY: %w", err)
		}
		c.Provider.RetryDelay = d
	}
	if v := os.Getenv("HALCON_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HALCON_CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	return nil
}

// Validate checks struct tags and the cross-section rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on '%s' (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return err
	}
	if c.Provider.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when provider.type is 'clickhouse'")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Valuation.DiscountRate <= c.Valuation.DividendGrowthRate {
		return fmt.Errorf("valuation.discount_rate must exceed valuation.dividend_growth_rate")
	}
	return nil
}
