package config

import (
	"database/sql"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_DSN", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Shop.OpenMinute != 8*60 || cfg.Shop.CloseMinute != 18*60 {
		t.Fatalf("expected shop hours 08:00-18:00, got %d-%d", cfg.Shop.OpenMinute, cfg.Shop.CloseMinute)
	}
	if cfg.Shop.Buffer != 15*time.Minute {
		t.Fatalf("expected 15m buffer, got %v", cfg.Shop.Buffer)
	}
	if cfg.Shop.SlotStep != 30*time.Minute {
		t.Fatalf("expected 30m slot step, got %v", cfg.Shop.SlotStep)
	}
	if cfg.Shop.TaxRate.String() != "0.1" {
		t.Fatalf("expected tax rate 0.1, got %s", cfg.Shop.TaxRate)
	}
	if cfg.Database.TxIsolation != sql.LevelSerializable {
		t.Fatalf("expected serializable isolation, got %v", cfg.Database.TxIsolation)
	}
	if cfg.Database.DSN == "" {
		t.Fatalf("expected a generated mysql DSN")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"SHOP_OPEN_TIME":         "8am",
		"BOOKING_BUFFER_MINUTES": "fifteen",
		"DB_TX_ISOLATION":        "snapshot",
		"DB_DRIVER":              "oracle",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("16:30")
	if err != nil || got != 990 {
		t.Fatalf("expected 990, got %d (err=%v)", got, err)
	}
	got, err = ParseClock("09:15:00")
	if err != nil || got != 555 {
		t.Fatalf("expected 555, got %d (err=%v)", got, err)
	}
}

func TestTxOptions(t *testing.T) {
	if (DatabaseConfig{}).TxOptions() != nil {
		t.Fatalf("default isolation should produce nil options")
	}
	opts := DatabaseConfig{TxIsolation: sql.LevelSerializable}.TxOptions()
	if opts == nil || opts.Isolation != sql.LevelSerializable {
		t.Fatalf("expected serializable options, got %+v", opts)
	}
}
