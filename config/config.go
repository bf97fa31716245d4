package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Agent   AgentConfig   `yaml:"agent"`
	Upload  UploadConfig  `yaml:"upload"`
	Archive ArchiveConfig `yaml:"archive"`
	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Users   []User        `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AgentConfig describes the remote agent runtime. Endpoint and AgentID are
// the minimum pair for live mode; without them the service falls back to the
// stub runtime.
type AgentConfig struct {
	Endpoint            string `yaml:"endpoint"`
	AgentID             string `yaml:"agent_id"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	MaxWaitSeconds      int    `yaml:"max_wait_seconds"`
	CancelOnAbandon     bool   `yaml:"cancel_on_abandon"`
	StubDelaySeconds    int    `yaml:"stub_delay_seconds"`
}

type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
	MaxChars  int `yaml:"max_chars"`
}

type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type StoreConfig struct {
	MaxProposals int    `yaml:"max_proposals"`
	RedisURL     string `yaml:"redis_url"`
	TTLHours     int    `yaml:"ttl_hours"`
}

type AuthConfig struct {
	Enabled          bool   `yaml:"enabled"`
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads the YAML config file, applies environment overrides and fills
// defaults. A missing config file is not an error; the service can run on
// environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides for the runtime surface
	if v := os.Getenv("PROJECT_ENDPOINT"); v != "" {
		cfg.Agent.Endpoint = v
	}
	if v := os.Getenv("ORCHESTRATOR_AGENT_ID"); v != "" {
		cfg.Agent.AgentID = v
	}
	if v := os.Getenv("AGENT_API_KEY"); v != "" {
		cfg.Agent.APIKey = v
	}
	if v := os.Getenv("MODEL_DEPLOYMENT"); v != "" {
		cfg.Agent.Model = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = "gpt-4o"
	}
	if cfg.Agent.PollIntervalSeconds == 0 {
		cfg.Agent.PollIntervalSeconds = 10
	}
	if cfg.Agent.MaxWaitSeconds == 0 {
		cfg.Agent.MaxWaitSeconds = 300
	}
	if cfg.Agent.StubDelaySeconds == 0 {
		cfg.Agent.StubDelaySeconds = 8
	}
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = 50
	}
	if cfg.Upload.MaxChars == 0 {
		cfg.Upload.MaxChars = 10000
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if cfg.Store.MaxProposals == 0 {
		cfg.Store.MaxProposals = 100
	}
	if cfg.Store.TTLHours == 0 {
		cfg.Store.TTLHours = 24
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	return &cfg, nil
}

// LiveAgent reports whether the minimum pair for the live runtime is present.
func (c *Config) LiveAgent() bool {
	return c.Agent.Endpoint != "" && c.Agent.AgentID != ""
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
