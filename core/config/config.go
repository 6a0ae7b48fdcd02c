package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App       AppConfig
	Paths     PathsConfig
	Database  DatabaseConfig
	AI        AIConfig
	Assistant AssistantConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	BaseUrl            string
	CorsAllowedOrigins []string
	TrustedProxies     []string
	BasicAuth          []string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
	Seed     bool   // Load the demo catalog/sales when the store is empty
}

type AIConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	APIVersion    string
	TimeoutMs     int
	MaxInputChars int // User text is truncated to this many runes before prompting
	Timezone      string
}

type AssistantConfig struct {
	Greeting      string // Reply for conversational turns with an empty hosted message
	DefaultDias   int
	DefaultUmbral int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		BasicAuth:          basicAuth,
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "ventia.db")),
		Seed:     getEnvBool("DB_SEED_DEMO", false),
	}

	aiCfg := AIConfig{
		APIKey:        getEnv("GEMINI_API_KEY", ""),
		Model:         getEnv("GEMINI_MODEL", ""),
		BaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIVersion:    getEnv("GEMINI_API_VERSION", "v1beta"),
		TimeoutMs:     getEnvInt("GEMINI_TIMEOUT_MS", 15000),
		MaxInputChars: getEnvInt("GEMINI_MAX_INPUT_CHARS", 500),
		Timezone:      getEnv("AI_TIMEZONE", ""),
	}

	assistantCfg := AssistantConfig{
		Greeting:      getEnv("ASSISTANT_GREETING", "¡Hola! Soy tu asistente de reportes. Pregúntame por ventas, productos o stock."),
		DefaultDias:   getEnvInt("ASSISTANT_DEFAULT_DIAS", 30),
		DefaultUmbral: getEnvInt("ASSISTANT_DEFAULT_UMBRAL", 5),
	}

	cfg := &Config{
		App:       appCfg,
		Paths:     pathsCfg,
		Database:  dbCfg,
		AI:        aiCfg,
		Assistant: assistantCfg,
	}

	Global = cfg
	return cfg, nil
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}
