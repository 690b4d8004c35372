package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Render   RenderConfig
	Analysis AnalysisConfig
	Qdrant   QdrantConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
	Backend    string
	Project    string
	Location   string
	// Zero keeps the model call blocking.
	Timeout time.Duration
}

type StorageConfig struct {
	MaxFileSize int64
}

type RenderConfig struct {
	PdftoppmPath string
	DPI          int
	JPEGQuality  int
}

type AnalysisConfig struct {
	PersistFailedInference bool
	HistoryLimit           int
	StatsWindow            time.Duration
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", "60s"),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ats_resume"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			Backend:    strings.ToLower(getEnv("GEMINI_BACKEND", BackendGemini)),
			Project:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:   getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Timeout:    getEnvAsDuration("INFERENCE_TIMEOUT", "0s"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 16*1024*1024),
		},
		Render: RenderConfig{
			PdftoppmPath: getEnv("PDFTOPPM_PATH", "pdftoppm"),
			DPI:          getEnvAsInt("RENDER_DPI", 150),
			JPEGQuality:  getEnvAsInt("JPEG_QUALITY", 90),
		},
		Analysis: AnalysisConfig{
			PersistFailedInference: getEnvAsBool("PERSIST_FAILED_INFERENCE", true),
			HistoryLimit:           getEnvAsInt("HISTORY_LIMIT", 50),
			StatsWindow:            time.Duration(getEnvAsInt("STATS_WINDOW_DAYS", 7)) * 24 * time.Hour,
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "ats_analyses"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "ats_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", "24h"),
			Secure:     getEnvAsBool("SESSION_SECURE", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// IndexEnabled reports whether similar-analysis search is configured.
func (c *Config) IndexEnabled() bool {
	return c.Qdrant.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
