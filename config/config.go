// Package config loads process configuration via viper, adapted from the
// teacher's config/config.go: defaults set in code, overridable by an
// optional YAML file and always by environment variables.
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds every environment-driven value the service needs (§6
// "Environment configuration").
type Config struct {
	AppPort              string `mapstructure:"APP_PORT"`
	Env                  string `mapstructure:"ENV"`
	LogLevel             string `mapstructure:"LOG_LEVEL"`
	MongoURI             string `mapstructure:"MONGO_URI"`
	MongoDatabase        string `mapstructure:"MONGO_DATABASE"`
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthCacheDB     int    `mapstructure:"REDIS_AUTH_CACHE_DB"`
	RedisRateLimitDB     int    `mapstructure:"REDIS_RATE_LIMIT_DB"`
	RedisAsynqDB         int    `mapstructure:"REDIS_ASYNQ_DB"`
	AccessTokenSecret    string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret   string `mapstructure:"REFRESH_TOKEN_SECRET"`
	FieldEncryptionKey   string `mapstructure:"FIELD_ENCRYPTION_KEY"`
}

// AppConfig is the process-wide configuration, populated by Load.
var AppConfig Config

// Load initializes viper and populates AppConfig, the same
// defaults-then-file-then-env precedence the teacher's LoadConfig uses.
func Load() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "caretime")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_AUTH_CACHE_DB", 1)
	viper.SetDefault("REDIS_RATE_LIMIT_DB", 2)
	viper.SetDefault("REDIS_ASYNQ_DB", 3)
	viper.SetDefault("ACCESS_TOKEN_SECRET", "")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "")
	viper.SetDefault("FIELD_ENCRYPTION_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("no config file found, using environment variables only")
	}
	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}

// IsProduction reports whether the service is running in production mode.
func IsProduction() bool {
	return AppConfig.Env == "production"
}
