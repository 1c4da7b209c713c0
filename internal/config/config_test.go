package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Consumer: ConsumerConfig{
			IntervalSeconds: 10,
			MaxAttempts:     5,
			DedupCacheSize:  1000,
		},
		Delivery: DeliveryConfig{
			FromEmail:    "companion@example.com",
			ReplyToEmail: "journal@example.com",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missingPort := validConfig()
	missingPort.Server.Port = ""
	assert.Error(t, missingPort.Validate())

	missingDB := validConfig()
	missingDB.Database.User = ""
	assert.Error(t, missingDB.Validate())

	badInterval := validConfig()
	badInterval.Consumer.IntervalSeconds = 0
	assert.Error(t, badInterval.Validate())

	badAttempts := validConfig()
	badAttempts.Consumer.MaxAttempts = 0
	assert.Error(t, badAttempts.Validate())

	missingDelivery := validConfig()
	missingDelivery.Delivery.ReplyToEmail = ""
	assert.Error(t, missingDelivery.Validate())
}

func TestConfigValidationIngest(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Ingest.IMAPUser = "user@example.com"
	cfg.Ingest.IMAPPass = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := config.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
