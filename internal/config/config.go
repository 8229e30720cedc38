package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config is the full service configuration, loaded once in main and passed
// down explicitly. Nothing below main reads the environment on its own.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Payme    PaymeConfig    `mapstructure:"payme"`
	Business BusinessConfig `mapstructure:"business"`
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
	PaymentResult string `mapstructure:"payment_result"`
	Entitlement   string `mapstructure:"entitlement"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	Issuer        string `mapstructure:"issuer"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

// PaymeConfig holds the merchant-cabinet credentials the gateway
// authenticates with, plus checkout-link options.
type PaymeConfig struct {
	MerchantID  string `mapstructure:"merchant_id"`
	MerchantKey string `mapstructure:"merchant_key"`
	IsTestMode  bool   `mapstructure:"is_test_mode"`
	CallbackURL string `mapstructure:"callback_url"` // browser return URL after checkout
}

type BusinessConfig struct {
	OrderTimeoutMinutes int `mapstructure:"order_timeout_minutes"`
	MaxRetryCount       int `mapstructure:"max_retry_count"`
}

// LoadConfig reads and parses the YAML config file.
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

	return config
}
