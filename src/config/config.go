package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	DatabasePath       string
	OutputDir          string
	JWTSecret          string
	APIKeyHash         string
	AccessTokenExpiry  time.Duration
	MaxUploadSizeBytes int64

	// Statement ingestion rules. Entries whose type is not in
	// AllowedEntryTypes, or whose ISIN starts with one of the
	// ExcludedISINPrefixes, are skipped before reaching the engine.
	AllowedEntryTypes    []string
	ExcludedISINPrefixes []string

	EmailServiceProvider string
	MailgunDomain        string
	MailgunPrivateAPIKey string
	SenderEmail          string
	RecipientEmail       string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	accessTokenExpiryStr := getEnv("ACCESS_TOKEN_EXPIRY", "60m")
	accessTokenExpiry, err := time.ParseDuration(accessTokenExpiryStr)
	if err != nil {
		log.Printf("WARNING: Invalid ACCESS_TOKEN_EXPIRY format '%s'. Using default 60m. Error: %v", accessTokenExpiryStr, err)
		accessTokenExpiry = 60 * time.Minute
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabasePath:       getEnv("DATABASE_PATH", "./plusvalia.db"),
		OutputDir:          getEnv("OUTPUT_DIR", "data/output"),
		JWTSecret:          jwtSecret,
		APIKeyHash:         getEnv("API_KEY_HASH", ""),
		AccessTokenExpiry:  accessTokenExpiry,
		MaxUploadSizeBytes: maxUploadSizeBytes,

		AllowedEntryTypes:    getEnvAsList("ALLOWED_ENTRY_TYPES", "Operar"),
		ExcludedISINPrefixes: getEnvAsList("EXCLUDED_ISIN_PREFIXES", "XF"),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "none"),
		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),
		SenderEmail:          getEnv("SENDER_EMAIL", "noreply@example.com"),
		RecipientEmail:       getEnv("RECIPIENT_EMAIL", ""),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, OutputDir=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.OutputDir)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
