package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AppConfig is loaded once at startup and handed to constructors.
type AppConfig struct {
	Port          string
	BaseURL       string
	PostLoginPath string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string

	SteamOpenIDURL string
	SteamAPIKey    string
	SteamAPIURL    string

	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	ProviderTimeout time.Duration

	LogLevel  string
	LogFormat string
}

var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.base_url":       "BASE_URL",
	"server.post_login":     "POST_LOGIN_PATH",
	"database.host":         "DATABASE_HOST",
	"database.port":         "DATABASE_PORT",
	"database.user":         "DATABASE_USER",
	"database.password":     "DATABASE_PASSWORD",
	"database.name":         "DATABASE_NAME",
	"database.ssl_mode":     "DATABASE_SSL_MODE",
	"redis.host":            "REDIS_HOST",
	"redis.port":            "REDIS_PORT",
	"redis.password":        "REDIS_PASSWORD",
	"redis.db":              "REDIS_DB",
	"stripe.secret_key":     "STRIPE_SECRET_KEY",
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"stripe.api_url":        "STRIPE_API_URL",
	"steam.openid_url":      "STEAM_OPENID_URL",
	"steam.api_key":         "STEAM_API_KEY",
	"steam.api_url":         "STEAM_API_URL",
	"session.secret":        "SESSION_SECRET",
	"session.ttl":           "SESSION_TTL",
	"session.cookie_name":   "SESSION_COOKIE_NAME",
	"session.cookie_secure": "SESSION_COOKIE_SECURE",
	"provider.timeout":      "PROVIDER_TIMEOUT",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
}

// Init reads .env and binds environment variables. Safe to call more than once.
func Init(file string) {
	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.post_login", "/api/v1/me")
	viper.SetDefault("steam.openid_url", "https://steamcommunity.com/openid/login")
	viper.SetDefault("steam.api_url", "https://api.steampowered.com")
	viper.SetDefault("session.ttl", 14*24*time.Hour)
	viper.SetDefault("session.cookie_name", "dinostore_session")
	viper.SetDefault("session.cookie_secure", true)
	viper.SetDefault("provider.timeout", 10*time.Second)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	if err := viper.ReadInConfig(); err != nil {
		log.Infof("[CONFIG] Config file not found, using environment and defaults: %v", err)
	}
}

// Load builds the AppConfig from viper and validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                viper.GetString("server.port"),
		BaseURL:             strings.TrimRight(viper.GetString("server.base_url"), "/"),
		PostLoginPath:       viper.GetString("server.post_login"),
		StripeSecretKey:     viper.GetString("stripe.secret_key"),
		StripeWebhookSecret: viper.GetString("stripe.webhook_secret"),
		StripeAPIURL:        viper.GetString("stripe.api_url"),
		SteamOpenIDURL:      viper.GetString("steam.openid_url"),
		SteamAPIKey:         viper.GetString("steam.api_key"),
		SteamAPIURL:         strings.TrimRight(viper.GetString("steam.api_url"), "/"),
		SessionSecret:       viper.GetString("session.secret"),
		SessionTTL:          viper.GetDuration("session.ttl"),
		SessionCookieName:   viper.GetString("session.cookie_name"),
		SessionCookieSecure: viper.GetBool("session.cookie_secure"),
		ProviderTimeout:     viper.GetDuration("provider.timeout"),
		LogLevel:            viper.GetString("log.level"),
		LogFormat:           viper.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.StripeSecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.StripeWebhookSecret == "" {
		errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET is required"))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout))
	}
	// Same-origin paths only, so a misconfiguration cannot become an open redirect.
	if !strings.HasPrefix(c.PostLoginPath, "/") || strings.HasPrefix(c.PostLoginPath, "//") {
		errs = append(errs, fmt.Errorf("POST_LOGIN_PATH must be an absolute path, got %q", c.PostLoginPath))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// ConfigureLogging applies the level and format to the global logrus logger.
func (c *AppConfig) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("[CONFIG] Unknown log level %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
