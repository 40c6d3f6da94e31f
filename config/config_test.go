package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CarrierID != "afdemo" {
		t.Errorf("CarrierID = %v, want afdemo", cfg.CarrierID)
	}
	if cfg.BackendURL != "https://backend.northghost.com" {
		t.Errorf("BackendURL = %v, want backend.northghost.com", cfg.BackendURL)
	}
	if cfg.ServiceName != "hydrasvc" {
		t.Errorf("ServiceName = %v, want hydrasvc", cfg.ServiceName)
	}
	if cfg.TrafficPollInterval != 10*time.Second {
		t.Errorf("TrafficPollInterval = %v, want 10s", cfg.TrafficPollInterval)
	}
	if len(cfg.BypassDomains) == 0 {
		t.Error("BypassDomains should not be empty by default")
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.CarrierID != "afdemo" {
		t.Errorf("CarrierID = %v, want default afdemo", cfg.CarrierID)
	}

	// Missing file should have been created
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestLoadFrom_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := DefaultConfig()
	original.CarrierID = "testcarrier"
	original.BackendURL = "https://backend.example.com"
	original.ReconnectOnWakeUp = false

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if loaded.CarrierID != "testcarrier" {
		t.Errorf("CarrierID = %v, want testcarrier", loaded.CarrierID)
	}
	if loaded.BackendURL != "https://backend.example.com" {
		t.Errorf("BackendURL = %v, want backend.example.com", loaded.BackendURL)
	}
	if loaded.ReconnectOnWakeUp {
		t.Error("ReconnectOnWakeUp should round-trip as false")
	}
}

func TestLoadFrom_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := "carrier_id: afdemo\nbogus_field: true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should reject unknown fields")
	}
}

func TestValidate_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{}

	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.CarrierID != "afdemo" {
		t.Errorf("empty CarrierID should fall back to afdemo, got %v", cfg.CarrierID)
	}
	if cfg.TrafficPollInterval != 10*time.Second {
		t.Errorf("zero TrafficPollInterval should fall back to 10s, got %v", cfg.TrafficPollInterval)
	}
}

func TestValidate_RejectsBadURL(t *testing.T) {
	cfg := &Config{BackendURL: "not a url"}

	if err := cfg.validate(); err == nil {
		t.Error("validate() should reject malformed backend_url")
	}
}
