package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the server. It is constructed once at
// startup and read-only afterwards.
type Config struct {
	// Server configuration
	RootDir         string        `json:"root_dir" validate:"required"`
	Host            string        `json:"host"`
	Port            int           `json:"port" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`

	// Audio serving behavior
	AudioExtensions []string          `json:"audio_extensions"`
	CacheMaxAge     int               `json:"cache_max_age"`
	MIMEOverrides   map[string]string `json:"mime_overrides"`

	// Request log filter: only paths containing one of these extensions are logged
	LogExtensions []string `json:"log_extensions"`

	// Report discovery. The pattern list and depth bound come from the original
	// reporting workflow; they are overridable rather than hard-coded.
	ReportPatterns    []string `json:"report_patterns"`
	ReportSearchDepth int      `json:"report_search_depth" validate:"min=0,max=5"`

	// Logging
	LogLevel string `json:"log_level"`
}

// DefaultPort is used when neither the PORT variable nor --port is given.
const DefaultPort = 8000

// Load builds the configuration from the environment (and an optional .env
// file), rooted at dir. An empty dir means the current working directory.
func Load(dir string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = cwd
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %q: %w", dir, err)
	}

	cfg := &Config{
		RootDir:         absDir,
		Host:            getEnv("HOST", ""),
		Port:            getEnvAsInt("PORT", DefaultPort),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 0),

		AudioExtensions: []string{".wav", ".mp3"},
		CacheMaxAge:     3600,
		MIMEOverrides: map[string]string{
			".wav": "audio/wav",
		},

		LogExtensions: []string{".wav", ".mp3", ".html", ".htm"},

		ReportPatterns: getEnvAsSlice("REPORT_PATTERNS", []string{
			"audiomoth_reporte.html",
			"reporte.html",
			"*audiomoth*.html",
		}),
		ReportSearchDepth: getEnvAsInt("REPORT_SEARCH_DEPTH", 2),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	info, err := os.Stat(c.RootDir)
	if err != nil {
		return fmt.Errorf("'%s' is not a valid directory: %w", c.RootDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a valid directory", c.RootDir)
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ServerAddress returns the host:port the server binds to.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsAudioPath reports whether the request path names an audio file.
func (c *Config) IsAudioPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.AudioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsLoggablePath reports whether requests for path should appear in the log.
// The match is a substring check so query strings do not hide audio requests.
func (c *Config) IsLoggablePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.LogExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsSlice(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
