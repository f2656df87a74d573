package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	HTTPPort       int
	MigrationsPath string
	Env            string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.DBConfig.Host = getEnvOrDefault("BANK_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("BANK_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("BANK_DB_USER", "user")
	cfg.DBConfig.Password = getEnvOrDefault("BANK_DB_PASSWORD", "password")
	cfg.DBConfig.Name = getEnvOrDefault("BANK_DB_NAME", "bank_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("BANK_DB_SSLMODE", "disable")

	cfg.HTTPPort = getEnvAsInt("HTTP_PORT", 8080)
	cfg.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", "migrations")
	cfg.Env = getEnvOrDefault("APP_ENV", "production")

	return cfg, nil
}

// IsDevelopment reports whether internal error details may be exposed to
// API clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
