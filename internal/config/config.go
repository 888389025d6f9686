package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = "8080"
	defaultVertexModel       = "gemini-2.5-flash"
	defaultGenerationTimeout = 120 * time.Second
	defaultDeckTTL           = 30 * 24 * time.Hour
	defaultLocale            = "zh-CN"
	defaultChatModel         = "Pro/zai-org/GLM-4.7"
)

type Config struct {
	ProjectID         string
	Region            string
	LogLevel          string
	Port              string
	VertexModel       string
	GenerationTimeout time.Duration
	DeckTTL           time.Duration
	KMSKeyName        string
	OpenWebUIURL      string
	OpenWebUIAPIKey   string
	// OpenWebUISecret names a Secret Manager version holding the Open WebUI
	// key; it is only read when OpenWebUIAPIKey is empty.
	OpenWebUISecret string
	OpenWebUIModel  string
	RedisAddr       string
	Locale          string
	AuthDisabled    bool
}

// Load reads a .env file when one is present, then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return New(), nil
}

func New() *Config {
	return &Config{
		ProjectID:         os.Getenv("PROJECTID"),
		Region:            os.Getenv("REGION"),
		LogLevel:          os.Getenv("LOGLEVEL"),
		Port:              getString("PORT", defaultPort),
		VertexModel:       getString("VERTEXMODEL", defaultVertexModel),
		GenerationTimeout: getDuration("GENERATIONTIMEOUT", defaultGenerationTimeout),
		DeckTTL:           getDuration("DECKTTL", defaultDeckTTL),
		KMSKeyName:        os.Getenv("KMSKEYNAME"),
		OpenWebUIURL:      strings.TrimRight(os.Getenv("OPENWEBUIURL"), "/"),
		OpenWebUIAPIKey:   os.Getenv("OPENWEBUIAPIKEY"),
		OpenWebUISecret:   os.Getenv("OPENWEBUISECRET"),
		OpenWebUIModel:    getString("OPENWEBUIMODEL", defaultChatModel),
		RedisAddr:         os.Getenv("REDISADDR"),
		Locale:            getString("LOCALE", defaultLocale),
		AuthDisabled:      getBool("AUTHDISABLED"),
	}
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}
