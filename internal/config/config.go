package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        int
	Environment string
	Database    DatabaseConfig

	// SessionSecret signs session tokens; StateSecret signs the short-lived
	// OAuth redirect state. They must differ so compromise of one does not
	// compromise the other.
	SessionSecret string
	SessionTTL    time.Duration
	StateSecret   string
	StateTTL      time.Duration

	// FrontendOrigin is where OAuth callbacks send the browser after setting
	// the session cookie; it is also the allowed CORS origin.
	FrontendOrigin string

	Google OAuthProviderConfig
	Github OAuthProviderConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type         string // postgres
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// OAuthProviderConfig holds one provider's OAuth application credentials
type OAuthProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("ENVIRONMENT", "production")

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: env,
		Database: DatabaseConfig{
			Type:         getEnv("DATABASE_TYPE", "postgres"),
			DSN:          getEnv("DATABASE_DSN", buildPostgresDSN()),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		SessionSecret:  loadSecret("JWT_SECRET", env),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		StateSecret:    loadSecret("STATE_SECRET", env),
		StateTTL:       time.Duration(getEnvInt("STATE_TTL_MINUTES", 5)) * time.Minute,
		FrontendOrigin: getFrontendOrigin(env),
		Google:         loadProviderConfig("GOOGLE", "google"),
		Github:         loadProviderConfig("GITHUB", "github"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

func buildPostgresDSN() string {
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "authgate")
	password := getEnv("POSTGRES_PASSWORD", "secret")
	dbName := getEnv("POSTGRES_DB", "authgate")
	sslMode := getEnv("POSTGRES_SSLMODE", "disable")

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   dbName,
	}

	query := u.Query()
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if len(c.StateSecret) < 32 {
			return fmt.Errorf("STATE_SECRET must be at least 32 characters in production")
		}

		// Check for insecure default secrets
		insecureSecrets := []string{
			"change-this-secret-in-production",
			"change-me-in-production",
			"secret",
			"password",
			"changeme",
		}
		for _, insecure := range insecureSecrets {
			if c.SessionSecret == insecure || c.StateSecret == insecure {
				return fmt.Errorf("signing secret is set to an insecure default value. Please set a strong random secret")
			}
		}
	}

	if c.SessionSecret == c.StateSecret {
		return fmt.Errorf("JWT_SECRET and STATE_SECRET must differ")
	}

	if c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.FrontendOrigin == "" {
		return fmt.Errorf("a front-end origin must be configured")
	}

	providers := map[string]OAuthProviderConfig{"google": c.Google, "github": c.Github}
	for name, p := range providers {
		if p.Enabled && (p.ClientID == "" || p.ClientSecret == "") {
			return fmt.Errorf("%s OAuth is enabled but client credentials are missing", name)
		}
	}

	return nil
}

func loadSecret(key, env string) string {
	secret := os.Getenv(key)

	// If the secret is not set, generate a random one for development
	if secret == "" {
		if env == "production" {
			log.Fatalf("FATAL: %s environment variable is required in production", key)
		}

		log.Printf("WARNING: %s not set. Generating random secret for development.", key)
		log.Printf("WARNING: This secret will change on restart. Set %s in production!", key)
		return generateRandomSecret()
	}

	if len(secret) < 16 {
		log.Fatalf("FATAL: %s must be at least 16 characters long", key)
	}

	return secret
}

func getFrontendOrigin(env string) string {
	if appURL := getAppURL(); appURL != "" {
		return appURL
	}

	if env == "development" {
		return "http://localhost:3000"
	}

	log.Println("WARNING: APP_URL not set. Using default localhost origin.")
	log.Println("WARNING: Set APP_URL environment variable for production deployments.")
	return "http://localhost:3000"
}

func loadProviderConfig(prefix, provider string) OAuthProviderConfig {
	clientID := os.Getenv(prefix + "_CLIENT_ID")
	clientSecret := os.Getenv(prefix + "_CLIENT_SECRET")

	if clientID == "" && clientSecret == "" {
		return OAuthProviderConfig{Enabled: false}
	}
	if clientID == "" || clientSecret == "" {
		log.Printf("WARNING: incomplete %s OAuth credentials. Provider will be disabled.", provider)
		return OAuthProviderConfig{Enabled: false}
	}

	redirectURI := os.Getenv(prefix + "_REDIRECT_URI")
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("%s/auth/%s/callback", getAPIURL(), provider)
	}

	return OAuthProviderConfig{
		Enabled:      true,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func generateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate random secret:", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func getAppURL() string {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		return ""
	}
	return strings.TrimRight(appURL, "/")
}

func getAPIURL() string {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		return "http://localhost:8080"
	}
	return strings.TrimRight(apiURL, "/")
}
