package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("NOTIFICATION_INTERVAL", "")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 30*24*time.Hour {
		t.Errorf("Expected 30 day token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.NotificationInterval != time.Minute {
		t.Errorf("Expected 60s notification interval, got %v", cfg.NotificationInterval)
	}
	if cfg.Cloudinary.Enabled() {
		t.Errorf("Cloudinary should be disabled without credentials")
	}
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("NOTIFICATION_INTERVAL", "15")
	t.Setenv("TOKEN_TTL", "2h")

	cfg := Load()
	if cfg.NotificationInterval != 15*time.Second {
		t.Errorf("Expected 15s, got %v", cfg.NotificationInterval)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("Expected 2h, got %v", cfg.TokenTTL)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("NOTIFICATION_INTERVAL", "soon")

	if got := Load().NotificationInterval; got != time.Minute {
		t.Errorf("Expected fallback of 60s, got %v", got)
	}
}

func TestLoadNonPositiveDurationFallsBack(t *testing.T) {
	for _, value := range []string{"0", "0s", "-5s", "-5"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("NOTIFICATION_INTERVAL", value)
			t.Setenv("TOKEN_TTL", value)

			cfg := Load()
			if cfg.NotificationInterval != time.Minute {
				t.Errorf("Expected fallback of 60s, got %v", cfg.NotificationInterval)
			}
			if cfg.TokenTTL != 30*24*time.Hour {
				t.Errorf("Expected fallback of 30 days, got %v", cfg.TokenTTL)
			}

			// the interval must be usable by a ticker
			ticker := time.NewTicker(cfg.NotificationInterval)
			ticker.Stop()
		})
	}
}
