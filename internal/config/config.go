package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (reviewer tools)
	JWTSecret string

	// Cinder case service
	CinderBaseURL         string
	CinderAPIToken        string
	CinderWebhookToken    string
	CinderQueueSlug       string
	CinderAppealQueueSlug string
	CinderLegalQueueSlug  string

	// LocallyResolvableQueues are the external queues whose cases our own
	// reviewer tools may adjudicate.
	LocallyResolvableQueues []string

	// Appeals
	AppealWindowDays int
	AppealURL        string

	// Task queue
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	TaskQueueName   string
	TaskMaxAttempts int

	// Operators
	OperatorEmails []string
	AdminEmails    string
	AdminToken     string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CinderBaseURL:         getEnv("CINDER_BASE_URL", "http://localhost:9000/api/v1"),
		CinderAPIToken:        getEnv("CINDER_API_TOKEN", ""),
		CinderWebhookToken:    getEnv("CINDER_WEBHOOK_TOKEN", ""),
		CinderQueueSlug:       getEnv("CINDER_QUEUE_SLUG", "listings"),
		CinderAppealQueueSlug: getEnv("CINDER_APPEAL_QUEUE_SLUG", "appeals"),
		CinderLegalQueueSlug:  getEnv("CINDER_LEGAL_QUEUE_SLUG", "legal-escalations"),

		LocallyResolvableQueues: parseCSV(getEnv("LOCALLY_RESOLVABLE_QUEUES", "listing-review")),

		AppealWindowDays: parseInt(getEnv("APPEAL_WINDOW_DAYS", "184"), 184),
		AppealURL:        getEnv("APPEAL_URL", "https://example.com/appeal"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         parseInt(getEnv("REDIS_DB", "0"), 0),
		TaskQueueName:   getEnv("TASK_QUEUE_NAME", "moderation:tasks"),
		TaskMaxAttempts: parseInt(getEnv("TASK_MAX_ATTEMPTS", "5"), 5),

		OperatorEmails: parseCSV(getEnv("OPERATOR_EMAILS", "")),
		AdminEmails:    getEnv("ADMIN_EMAILS", ""),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}


func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
