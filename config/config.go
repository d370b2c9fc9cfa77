package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger     `mapstructure:"logger"`
	DB         Database   `mapstructure:"database"`
	API        API        `mapstructure:"api"`
	Cache      Cache      `mapstructure:"cache"`
	MarketData MarketData `mapstructure:"market_data"`
	Advisors   Advisors   `mapstructure:"advisors"`
	Analysis   Analysis   `mapstructure:"analysis"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_min"`
	QuoteCacheDuration  time.Duration `mapstructure:"quote_cache_duration"`
}

type AdvisorAPI struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_min"`
}

type Advisors struct {
	Finnhub AdvisorAPI `mapstructure:"finnhub"`
	FMP     AdvisorAPI `mapstructure:"fmp"`
}

type Analysis struct {
	// FreshnessWindow bounds how long an advisor recommendation is reused
	// before the collector queries the source again.
	FreshnessWindow   time.Duration `mapstructure:"freshness_window"`
	RecommendationTTL time.Duration `mapstructure:"recommendation_ttl"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	MaxUsers          int           `mapstructure:"max_users"`
	MinCash           float64       `mapstructure:"min_cash"`
	Watchlist         []string      `mapstructure:"watchlist"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	CronExpression  string        `mapstructure:"cron_expression"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
	AutoExecute     bool          `mapstructure:"auto_execute"`
}

func Load() (*Config, error) {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("cache.default_expiration", 6*time.Hour)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)
	viper.SetDefault("market_data.timeout", 10*time.Second)
	viper.SetDefault("market_data.max_request_per_min", 60)
	viper.SetDefault("market_data.quote_cache_duration", 5*time.Minute)
	viper.SetDefault("analysis.freshness_window", 6*time.Hour)
	viper.SetDefault("analysis.recommendation_ttl", 7*24*time.Hour)
	viper.SetDefault("analysis.max_concurrency", 5)
	viper.SetDefault("analysis.max_users", 50)
	viper.SetDefault("analysis.min_cash", 100.0)
	viper.SetDefault("scheduler.timeout_duration", 15*time.Minute)
}
