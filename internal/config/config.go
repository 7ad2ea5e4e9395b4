package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Storage backend identifiers accepted in STORAGE_BACKEND.
const (
	BackendFile   = "file"
	BackendDB     = "db"
	BackendRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	Port      string
	JWTSecret string

	// Single shared credential pair gating every route.
	Username string
	Password string

	DataDir   string
	UploadDir string

	StorageBackend string
	Database       DatabaseConfig
	Remote         RemoteConfig
}

// DatabaseConfig holds PostgreSQL configuration for the db backend.
// An empty Host selects the embedded server.
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// RemoteConfig holds the remote-repository sync target for the remote
// backend. An empty Token disables sync without failing local operations.
type RemoteConfig struct {
	Token   string
	Repo    string // "owner/name"
	Branch  string
	Path    string // path of the collection file inside the repo
	APIBase string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "5000"),
		JWTSecret: getEnv("JWT_SECRET", "DC_g&rad0r"),
		Username:  getEnv("DC_USERNAME", "defesacivil"),
		Password:  getEnv("DC_PASSWORD", "DC_g&rad0r"),

		DataDir:   getEnv("DATA_DIR", "data"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		Database: DatabaseConfig{
			Host:     os.Getenv("PG_HOST"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "laudos"),
		},
		Remote: RemoteConfig{
			Token:   os.Getenv("GITHUB_TOKEN"),
			Repo:    os.Getenv("GITHUB_REPO"),
			Branch:  getEnv("GITHUB_BRANCH", "main"),
			Path:    getEnv("GITHUB_PATH", "data/atendimentos.json"),
			APIBase: getEnv("GITHUB_API_BASE", "https://api.github.com"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
