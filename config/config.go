package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Chart    ChartConfig    `mapstructure:"chart"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// FeedConfig points at the upstream trade-tick stream.
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Symbols []string      `mapstructure:"symbols"` // extra symbols to subscribe beyond those found in trade history
}

// AMQPConfig holds the RabbitMQ connection used for chart update fan-out.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// ChartConfig carries the candle engine tunables.
type ChartConfig struct {
	SeriesRetention   int     `mapstructure:"series_retention"`    // candles kept per (symbol, timeframe)
	RawTradeRetention int     `mapstructure:"raw_trade_retention"` // raw trades kept per symbol for bootstrap/fallback
	DefaultPrice      float64 `mapstructure:"default_price"`       // flat price for symbols with no trade history
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Engine tunables have working defaults so a minimal config.yaml still runs.
	v.SetDefault("chart.series_retention", 100)
	v.SetDefault("chart.raw_trade_retention", 1000)
	v.SetDefault("chart.default_price", 100)
	v.SetDefault("amqp.exchange", "chart")
	v.SetDefault("http.addr", ":8080")

	// Support environment variables with dot notation (e.g., AMQP_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
