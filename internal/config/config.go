package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config is the top level configuration loaded from config/config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Business BusinessConfig `mapstructure:"business"`
	Sitemap  SitemapConfig  `mapstructure:"sitemap"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	PaymentEvents string `mapstructure:"payment_events"`
	TaskEvents    string `mapstructure:"task_events"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// GatewayConfig holds the payment gateway credentials used to verify
// callback signatures. KeySecret is the HMAC key.
type GatewayConfig struct {
	Provider        string `mapstructure:"provider"`
	KeyID           string `mapstructure:"key_id"`
	KeySecret       string `mapstructure:"key_secret"`
	OrderTTLMinutes int    `mapstructure:"order_ttl_minutes"`
}

type BusinessConfig struct {
	GSTRatePercent    int `mapstructure:"gst_rate_percent"`
	WorkerMaxJobs     int `mapstructure:"worker_max_jobs"`
	WorkerTimeoutMin  int `mapstructure:"worker_timeout_minutes"`
	JobRetentionDays  int `mapstructure:"job_retention_days"`
	MaxRetryCount     int `mapstructure:"max_retry_count"`
	PaymentLockSecond int `mapstructure:"payment_lock_seconds"`
}

type SitemapConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	StaticPaths []string `mapstructure:"static_paths"`
	CacheTTLMin int      `mapstructure:"cache_ttl_minutes"`
}

var GlobalConfig *Config

// LoadConfig reads and parses the yaml configuration file.
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	applyDefaults(config)

	GlobalConfig = config
	return config
}

func applyDefaults(c *Config) {
	if c.Business.GSTRatePercent == 0 {
		c.Business.GSTRatePercent = 18
	}
	if c.Business.WorkerMaxJobs == 0 {
		c.Business.WorkerMaxJobs = 10
	}
	if c.Business.WorkerTimeoutMin == 0 {
		c.Business.WorkerTimeoutMin = 5
	}
	if c.Business.JobRetentionDays == 0 {
		c.Business.JobRetentionDays = 7
	}
	if c.Business.MaxRetryCount == 0 {
		c.Business.MaxRetryCount = 3
	}
	if c.Business.PaymentLockSecond == 0 {
		c.Business.PaymentLockSecond = 30
	}
	if c.Gateway.OrderTTLMinutes == 0 {
		c.Gateway.OrderTTLMinutes = 30
	}
	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 24
	}
	if c.Sitemap.CacheTTLMin == 0 {
		c.Sitemap.CacheTTLMin = 60
	}
}
