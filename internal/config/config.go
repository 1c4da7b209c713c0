package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Consumer  ConsumerConfig  `mapstructure:"consumer"`
	AI        AIConfig        `mapstructure:"ai"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// ConsumerConfig holds queue consumer configuration
type ConsumerConfig struct {
	IntervalSeconds int           `mapstructure:"interval_seconds"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	BackoffBase     time.Duration `mapstructure:"backoff_base"`
	DedupCacheSize  int           `mapstructure:"dedup_cache_size"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DeliveryConfig holds outbound email delivery configuration
type DeliveryConfig struct {
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	RefreshToken  string `mapstructure:"refresh_token"`
	UserEmail     string `mapstructure:"user_email"`
	FromEmail     string `mapstructure:"from_email"`
	FromName      string `mapstructure:"from_name"`
	ReplyToEmail  string `mapstructure:"reply_to_email"`
	CompanionName string `mapstructure:"companion_name"`
}

// IngestConfig holds optional IMAP ingestion configuration
type IngestConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	IMAPHost        string `mapstructure:"imap_host"`
	IMAPPort        int    `mapstructure:"imap_port"`
	IMAPUser        string `mapstructure:"imap_user"`
	IMAPPass        string `mapstructure:"imap_password"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

// BroadcastConfig holds periodic broadcast configuration
type BroadcastConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	DailySchedule  string `mapstructure:"daily_schedule"`
	WeeklySchedule string `mapstructure:"weekly_schedule"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("consumer.interval_seconds", 10)
	viper.SetDefault("consumer.max_attempts", 5)
	viper.SetDefault("consumer.backoff_base", "1m")
	viper.SetDefault("consumer.dedup_cache_size", 1000)

	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.timeout", "30s")

	viper.SetDefault("delivery.from_name", "Flappy from Featherweight")
	viper.SetDefault("delivery.companion_name", "Flappy")

	viper.SetDefault("ingest.enabled", false)
	viper.SetDefault("ingest.imap_host", "imap.gmail.com")
	viper.SetDefault("ingest.imap_port", 993)
	viper.SetDefault("ingest.interval_seconds", 60)

	viper.SetDefault("broadcast.enabled", false)
	viper.SetDefault("broadcast.daily_schedule", "0 0 8 * * *")
	viper.SetDefault("broadcast.weekly_schedule", "0 0 9 * * 0")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	viper.BindEnv("consumer.interval_seconds", "CONSUMER_INTERVAL_SECONDS")
	viper.BindEnv("consumer.max_attempts", "CONSUMER_MAX_ATTEMPTS")
	viper.BindEnv("consumer.backoff_base", "CONSUMER_BACKOFF_BASE")
	viper.BindEnv("consumer.dedup_cache_size", "CONSUMER_DEDUP_CACHE_SIZE")

	viper.BindEnv("ai.provider", "AI_PROVIDER")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.timeout", "AI_TIMEOUT")

	viper.BindEnv("delivery.client_id", "DELIVERY_CLIENT_ID")
	viper.BindEnv("delivery.client_secret", "DELIVERY_CLIENT_SECRET")
	viper.BindEnv("delivery.refresh_token", "DELIVERY_REFRESH_TOKEN")
	viper.BindEnv("delivery.user_email", "DELIVERY_USER_EMAIL")
	viper.BindEnv("delivery.from_email", "DELIVERY_FROM_EMAIL")
	viper.BindEnv("delivery.from_name", "DELIVERY_FROM_NAME")
	viper.BindEnv("delivery.reply_to_email", "DELIVERY_REPLY_TO_EMAIL")
	viper.BindEnv("delivery.companion_name", "DELIVERY_COMPANION_NAME")

	viper.BindEnv("ingest.enabled", "INGEST_ENABLED")
	viper.BindEnv("ingest.imap_host", "INGEST_IMAP_HOST")
	viper.BindEnv("ingest.imap_port", "INGEST_IMAP_PORT")
	viper.BindEnv("ingest.imap_user", "INGEST_IMAP_USER")
	viper.BindEnv("ingest.imap_password", "INGEST_IMAP_PASSWORD")
	viper.BindEnv("ingest.interval_seconds", "INGEST_INTERVAL_SECONDS")

	viper.BindEnv("broadcast.enabled", "BROADCAST_ENABLED")
	viper.BindEnv("broadcast.daily_schedule", "BROADCAST_DAILY_SCHEDULE")
	viper.BindEnv("broadcast.weekly_schedule", "BROADCAST_WEEKLY_SCHEDULE")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Consumer.IntervalSeconds <= 0 {
		return fmt.Errorf("consumer interval must be greater than 0")
	}
	if c.Consumer.MaxAttempts <= 0 {
		return fmt.Errorf("consumer max attempts must be greater than 0")
	}
	if c.Consumer.DedupCacheSize <= 0 {
		return fmt.Errorf("dedup cache size must be greater than 0")
	}

	if c.Delivery.FromEmail == "" || c.Delivery.ReplyToEmail == "" {
		return fmt.Errorf("delivery from_email and reply_to_email are required")
	}

	if c.Ingest.Enabled {
		if c.Ingest.IMAPUser == "" || c.Ingest.IMAPPass == "" {
			return fmt.Errorf("IMAP credentials are required when ingest is enabled")
		}
	}

	return nil
}
