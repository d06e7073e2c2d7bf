// Package config assembles runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything main needs to boot the server.
type Config struct {
	Port             string
	StoreType        string
	SQLitePath       string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBDatabase       string
	MaxConversations int
}

// Load reads settings from the environment, applying defaults for a local
// sqlite deployment.
func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		StoreType:        getEnv("STORE_TYPE", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "chat_history.sqlite"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", ""),
		DBUser:           getEnv("DB_USER", ""),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBDatabase:       getEnv("DB_DATABASE", "aiweb"),
		MaxConversations: getEnvInt("MAX_CONVERSATIONS", 0),
	}
	if cfg.DBPort == "" {
		switch cfg.StoreType {
		case "postgres":
			cfg.DBPort = "5432"
		case "mysql":
			cfg.DBPort = "3306"
		}
	}
	return cfg
}

// DSN builds the driver connection string for the configured store type.
func (c *Config) DSN() string {
	switch c.StoreType {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBDatabase, c.DBPort)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBDatabase)
	default:
		return c.SQLitePath
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
