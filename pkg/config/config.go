package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	Env            string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	JWTSecret      string
	SocketTokenTTL time.Duration
	ModerationURL  string
	DirectoryURL   string
	ProjectsURL    string
	PresenceGrace  time.Duration
	TypingTTL      time.Duration
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "marketplace_chat"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretjwtkey"),
		SocketTokenTTL: getDuration("SOCKET_TOKEN_TTL", 60*time.Second),
		ModerationURL:  getEnv("MODERATION_URL", ""),
		DirectoryURL:   getEnv("DIRECTORY_URL", ""),
		ProjectsURL:    getEnv("PROJECTS_URL", ""),
		PresenceGrace:  getDuration("PRESENCE_GRACE", 5*time.Second),
		TypingTTL:      getDuration("TYPING_TTL", 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// bare integers are treated as seconds
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
