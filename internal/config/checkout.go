package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CheckoutConfig tunes coin checkout and the abandoned checkout sweep.
type CheckoutConfig struct {
	Currency     string        `envconfig:"CURRENCY" default:"usd"`
	SuccessPath  string        `envconfig:"SUCCESS_PATH" default:"/coins/success"`
	CancelPath   string        `envconfig:"CANCEL_PATH" default:"/coins/cancel"`
	PendingTTL   time.Duration `envconfig:"PENDING_TTL" default:"48h"`
	SweepSpec    string        `envconfig:"SWEEP_SPEC" default:"@every 15m"`
	SweepEnabled bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	// RateLimit is checkouts per player per RateWindow; 0 disables the limit.
	RateLimit  int           `envconfig:"RATE_LIMIT" default:"10"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"1h"`
}

// LoadCheckoutConfig reads CHECKOUT_* environment variables.
func LoadCheckoutConfig() (*CheckoutConfig, error) {
	var cfg CheckoutConfig
	if err := envconfig.Process("CHECKOUT", &cfg); err != nil {
		return nil, fmt.Errorf("load checkout config: %w", err)
	}
	if len(cfg.Currency) != 3 {
		return nil, fmt.Errorf("CHECKOUT_CURRENCY must be a 3-letter code, got %q", cfg.Currency)
	}
	// Provider checkout sessions live at most 24h; expiring earlier could drop a real payment.
	if cfg.PendingTTL < 24*time.Hour {
		return nil, fmt.Errorf("CHECKOUT_PENDING_TTL must be at least 24h, got %s", cfg.PendingTTL)
	}
	if cfg.RateLimit < 0 || (cfg.RateLimit > 0 && cfg.RateWindow <= 0) {
		return nil, fmt.Errorf("CHECKOUT_RATE_LIMIT/CHECKOUT_RATE_WINDOW invalid: %d per %s", cfg.RateLimit, cfg.RateWindow)
	}
	return &cfg, nil
}
