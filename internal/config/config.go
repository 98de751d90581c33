// Package config loads the portal's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Agent    AgentConfig    `yaml:"agent"`
	Mail     MailConfig     `yaml:"mail"`
	ZeroTier ZeroTierConfig `yaml:"zerotier"`
	Network  NetworkConfig  `yaml:"network"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                 int      `yaml:"port"`
	BindAddress          string   `yaml:"bindAddress"`
	EnableCORS           bool     `yaml:"enableCors"`
	AllowOrigins         []string `yaml:"allowOrigins"`
	ReadTimeoutSeconds   int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds  int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds   int      `yaml:"idleTimeoutSeconds"`
	BodyLimit            string   `yaml:"bodyLimit"`
	EnableRequestLogging bool     `yaml:"enableRequestLogging"`
}

// StorageConfig contains the user database location.
type StorageConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// AgentConfig points at the lab server agent.
type AgentConfig struct {
	BaseURL             string `yaml:"baseUrl"`
	TimeoutSeconds      int    `yaml:"timeoutSeconds"`
	PollIntervalSeconds int    `yaml:"pollIntervalSeconds"`
	// Timezone is the zone the agent writes last_updated stamps in.
	Timezone string `yaml:"timezone"`
	// StatsFile selects a non-default monitored server; empty for the default.
	StatsFile string `yaml:"statsFile"`
}

// MailConfig points at the outbound mail relay.
type MailConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// ZeroTierConfig points at the network-policy authority.
type ZeroTierConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// NetworkConfig controls member address allocation.
type NetworkConfig struct {
	SubnetPrefix string `yaml:"subnetPrefix"`
}

// AuthConfig controls sessions and the login handshake.
type AuthConfig struct {
	SessionTTLHours         int `yaml:"sessionTtlHours"`
	HandshakeTimeoutSeconds int `yaml:"handshakeTimeoutSeconds"`
}

// AdminConfig identifies the administrator notified of new requests.
type AdminConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                 8089,
			BindAddress:          "0.0.0.0",
			EnableCORS:           true,
			AllowOrigins:         []string{"*"},
			ReadTimeoutSeconds:   30,
			WriteTimeoutSeconds:  30,
			IdleTimeoutSeconds:   120,
			BodyLimit:            "2M",
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			DatabasePath: "./data/portal.db",
		},
		Agent: AgentConfig{
			BaseURL:             "http://localhost:9000",
			TimeoutSeconds:      15,
			PollIntervalSeconds: 20,
			Timezone:            "America/Chicago",
		},
		Mail: MailConfig{
			TimeoutSeconds: 15,
		},
		ZeroTier: ZeroTierConfig{
			TimeoutSeconds: 15,
		},
		Network: NetworkConfig{
			SubnetPrefix: "10.144.172.",
		},
		Auth: AuthConfig{
			SessionTTLHours:         12,
			HandshakeTimeoutSeconds: 60,
		},
	}
}

// Load reads the YAML file at path, layered over the defaults.
// A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ServerAddr returns the listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AgentTimeout returns the agent HTTP timeout.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutSeconds) * time.Second
}

// PollInterval returns the telemetry poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Agent.PollIntervalSeconds) * time.Second
}

// AgentZone resolves the agent's timezone, falling back to UTC.
func (c *Config) AgentZone() *time.Location {
	loc, err := time.LoadLocation(c.Agent.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SessionTTL returns the session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// HandshakeTimeout returns the login handshake timeout.
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.Auth.HandshakeTimeoutSeconds) * time.Second
}
