// Package config provides configuration management for VPN Demo.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// CarrierID identifies the partner carrier on the backend.
	CarrierID string `yaml:"carrier_id"`
	// BackendURL is the partner backend endpoint.
	BackendURL string `yaml:"backend_url"`
	// ServiceName is the background tunneling service to use.
	ServiceName string `yaml:"service_name"`
	// BypassDomains lists domains excluded from the tunnel.
	BypassDomains []string `yaml:"bypass_domains,omitempty"`
	// ReconnectOnWakeUp re-establishes the tunnel after system wakeup.
	ReconnectOnWakeUp bool `yaml:"reconnect_on_wakeup"`
	// GithubClientID is the OAuth application client id.
	GithubClientID string `yaml:"github_client_id"`
	// GithubClientSecret is the OAuth application client secret.
	GithubClientSecret string `yaml:"github_client_secret"`
	// TrafficPollInterval is how often remaining traffic is refreshed.
	TrafficPollInterval time.Duration `yaml:"traffic_poll_interval"`
	// DriverDir is the directory holding the bundled driver installer.
	DriverDir string `yaml:"driver_dir"`
	// DriverDevicePath is the device node the driver exposes when loaded.
	DriverDevicePath string `yaml:"driver_device_path"`
	// DriverUnit is the driver's service unit name.
	DriverUnit string `yaml:"driver_unit"`
	// ServiceBinary is the bundled service executable used for
	// installation and staleness comparison.
	ServiceBinary string `yaml:"service_binary"`
	// ShowNotifications enables desktop notifications for connection events.
	ShowNotifications bool `yaml:"show_notifications"`
}

// DefaultConfig returns the default configuration.
// These are sensible defaults for the demo carrier.
func DefaultConfig() *Config {
	return &Config{
		CarrierID:           common.DefaultCarrierID,
		BackendURL:          common.DefaultBackendURL,
		ServiceName:         common.DefaultServiceName,
		BypassDomains:       []string{"iplocation.net", "*.iplocation.net"},
		ReconnectOnWakeUp:   true,
		GithubClientID:      "70ed6ffd4b08b3119208",
		GithubClientSecret:  "fe02229ef77aa489f748f346e3e337490fd5b8ce",
		TrafficPollInterval: common.TrafficPollInterval,
		DriverDir:           "driver",
		DriverDevicePath:    "/dev/net/tun",
		DriverUnit:          "vpn-demo-tap",
		ServiceBinary:       "vpn-demo-service",
		ShowNotifications:   true,
	}
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, common.WrapError(err, "error opening configuration")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, common.WrapError(err, "error parsing configuration")
	}

	if err := config.validate(); err != nil {
		return nil, common.WrapError(err, "invalid configuration")
	}

	return &config, nil
}

// validate verifies configuration values, falling back to defaults
// for fields that cannot be left empty.
func (c *Config) validate() error {
	defaults := DefaultConfig()

	if c.CarrierID == "" {
		c.CarrierID = defaults.CarrierID
	}
	if c.ServiceName == "" {
		c.ServiceName = defaults.ServiceName
	}
	if c.TrafficPollInterval <= 0 {
		c.TrafficPollInterval = defaults.TrafficPollInterval
	}

	if c.BackendURL == "" {
		c.BackendURL = defaults.BackendURL
	} else if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("backend_url %q is not a valid URL", c.BackendURL)
	}

	return nil
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return common.WrapError(err, "error creating config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(err, "error serializing configuration")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return common.WrapError(err, "error saving configuration")
	}

	return nil
}

func getConfigPath() (string, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, common.ConfigFileName), nil
}
