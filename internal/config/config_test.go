package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"shiftdesk/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Bootstrap.Username != "hakim" || cfg.Bootstrap.Password != "123456" {
		t.Fatalf("bootstrap account = %+v", cfg.Bootstrap)
	}
	if cfg.ShiftStart(1) != "07:00" || cfg.ShiftStart(2) != "15:00" || cfg.ShiftStart(3) != "23:00" {
		t.Fatalf("shift starts = %s %s %s", cfg.ShiftStart(1), cfg.ShiftStart(2), cfg.ShiftStart(3))
	}
	if cfg.ShiftStart(4) != "" {
		t.Fatalf("unknown shift should have empty start")
	}
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	cfg, err := config.FromYAML([]byte(config.GenerateDefault()))
	if err != nil {
		t.Fatalf("parse generated default: %v", err)
	}
	if cfg.Hotel.ID == "" {
		t.Fatalf("generated default missing hotel id")
	}
}

func TestValidateRejectsBadClock(t *testing.T) {
	cases := []string{
		"shifts:\n  1:\n    start: \"7:00\"\nhotel:\n  id: h\nbootstrap:\n  username: u\n  password: p\n  shift: 1\n",
		"shifts:\n  1:\n    start: \"25:00\"\nhotel:\n  id: h\nbootstrap:\n  username: u\n  password: p\n  shift: 1\n",
		"shifts:\n  1:\n    start: \"07:61\"\nhotel:\n  id: h\nbootstrap:\n  username: u\n  password: p\n  shift: 1\n",
	}
	for _, yml := range cases {
		if _, err := config.FromYAML([]byte(yml)); err == nil {
			t.Errorf("expected rejection for %q", yml)
		}
	}
}

func TestValidateRejectsBootstrapWithoutShift(t *testing.T) {
	yml := "hotel:\n  id: h\nshifts:\n  1:\n    start: \"07:00\"\nbootstrap:\n  username: u\n  password: p\n  shift: 2\n"
	if _, err := config.FromYAML([]byte(yml)); err == nil {
		t.Fatalf("expected bootstrap shift mismatch rejection")
	}
}

func TestLoadOptionalFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.Bootstrap.Username != "hakim" {
		t.Fatalf("fallback config = %+v", cfg.Bootstrap)
	}

	custom := "hotel:\n  id: riad\nshifts:\n  1:\n    start: \"06:00\"\n    end: \"14:00\"\nbootstrap:\n  username: admin\n  password: pw\n  name: Admin\n  shift: 1\nauth:\n  jwt_secret: s\n"
	if err := os.WriteFile(filepath.Join(dir, "shiftdesk.yml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("load optional with file: %v", err)
	}
	if cfg.Hotel.ID != "riad" || cfg.ShiftStart(1) != "06:00" {
		t.Fatalf("custom config = %+v", cfg)
	}
}
