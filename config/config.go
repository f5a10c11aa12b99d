package config

import (
	"os"
	"strconv"
	"strings"
)

func getEnvOrDefault(key, default_ string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return default_
}

func getIntEnv(key string, default_ int) int {
	val, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil || val <= 0 {
		return default_
	}

	return val
}

func getBoolEnv(key string) bool {
	if val := strings.ToLower(os.Getenv(key)); val == "yes" || val == "on" || val == "true" {
		return true
	}

	return false
}

type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	BindAddr    string
	DebugMode   bool

	RenderWorkers  int
	StorePageSize  int
	ShareThreshold int
	SolutionCols   int
	QuizPlacement  string

	// hex encoded AES key and IV used by the decrypt maintenance command
	QuizKey string
	QuizIV  string

	ProgressWebhook string
}

// Load reads the configuration from the environment. Values missing from the
// environment fall back to the defaults used by the exporter.
func Load() *Config {
	return &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		LogLevel:        strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		BindAddr:        getEnvOrDefault("BIND_ADDR", ":8080"),
		DebugMode:       getBoolEnv("DEBUG_MODE"),
		RenderWorkers:   getIntEnv("RENDER_WORKERS", 20),
		StorePageSize:   getIntEnv("STORE_PAGE_SIZE", 500),
		ShareThreshold:  getIntEnv("QUIZ_SHARE_THRESHOLD", 3),
		SolutionCols:    getIntEnv("QUIZ_SOLUTION_COLUMNS", 3),
		QuizPlacement:   strings.ToLower(getEnvOrDefault("QUIZ_PLACEMENT", "end")),
		QuizKey:         os.Getenv("QUIZ_KEY"),
		QuizIV:          os.Getenv("QUIZ_IV"),
		ProgressWebhook: os.Getenv("PROGRESS_WEBHOOK_URL"),
	}
}
