package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all service settings. Values come from environment
// variables; godotenv loads a .env file into the environment before
// Load is called (see main.go).
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	RabbitURI      string
	RabbitExchange string

	RedisAddr string
	RedisPwd  string
	RedisDB   int

	SuperAdminID int64

	QuestionsPerTest    int
	ResultsHistoryLimit int

	TranslationsDir string

	SupportedLanguages []string
	DefaultLanguage    string
	Subjects           []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "6666"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "dtm_test"),
		RabbitURI:           os.Getenv("RABBITMQ_URI"),
		RabbitExchange:      os.Getenv("RABBITMQ_EXCHANGE"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPwd:            os.Getenv("REDIS_PWD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		SuperAdminID:        getEnvInt64("SUPER_ADMIN_ID", 0),
		QuestionsPerTest:    getEnvInt("QUESTIONS_PER_TEST", 10),
		ResultsHistoryLimit: getEnvInt("RESULTS_HISTORY_LIMIT", 5),
		TranslationsDir:     getEnv("TRANSLATIONS_DIR", "translations"),
		SupportedLanguages:  []string{"uz", "ru", "en"},
		DefaultLanguage:     "uz",
		Subjects: []string{
			"mathematics",
			"history",
			"english",
			"biology",
			"chemistry",
			"law",
		},
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.QuestionsPerTest <= 0 {
		return nil, fmt.Errorf("QUESTIONS_PER_TEST must be positive, got %d", cfg.QuestionsPerTest)
	}
	if cfg.ResultsHistoryLimit <= 0 {
		return nil, fmt.Errorf("RESULTS_HISTORY_LIMIT must be positive, got %d", cfg.ResultsHistoryLimit)
	}
	return cfg, nil
}

// IsSupportedLanguage reports whether lang is one of the configured
// interface languages.
func (c *Config) IsSupportedLanguage(lang string) bool {
	for _, l := range c.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// IsKnownSubject reports whether subject is one of the configured subjects.
func (c *Config) IsKnownSubject(subject string) bool {
	for _, s := range c.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
