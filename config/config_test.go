package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
agent:
  endpoint: "https://foundry.test/api/projects/demo"
  agent_id: "asst_test123"
  api_key: "test-key"
  model: "gpt-4o"
  poll_interval_seconds: 5
  max_wait_seconds: 600
  cancel_on_abandon: true
upload:
  max_size_mb: 25
  max_chars: 5000
archive:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "sow-uploads"
  use_ssl: false
  expire_days: 14
auth:
  enabled: true
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
store:
  max_proposals: 50
  ttl_hours: 12
users:
  - username: "testuser"
    password: "testpass"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Agent.AgentID != "asst_test123" {
		t.Errorf("Expected agent id asst_test123, got %s", cfg.Agent.AgentID)
	}
	if cfg.Agent.PollIntervalSeconds != 5 {
		t.Errorf("Expected poll_interval_seconds 5, got %d", cfg.Agent.PollIntervalSeconds)
	}
	if cfg.Agent.MaxWaitSeconds != 600 {
		t.Errorf("Expected max_wait_seconds 600, got %d", cfg.Agent.MaxWaitSeconds)
	}
	if !cfg.Agent.CancelOnAbandon {
		t.Error("Expected cancel_on_abandon true")
	}
	if cfg.Upload.MaxSizeMB != 25 {
		t.Errorf("Expected max_size_mb 25, got %d", cfg.Upload.MaxSizeMB)
	}
	if cfg.Upload.MaxChars != 5000 {
		t.Errorf("Expected max_chars 5000, got %d", cfg.Upload.MaxChars)
	}
	if cfg.Archive.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Archive.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Store.MaxProposals != 50 {
		t.Errorf("Expected max_proposals 50, got %d", cfg.Store.MaxProposals)
	}
	if len(cfg.Users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(cfg.Users))
	}
	if cfg.Users[0].Username != "testuser" {
		t.Errorf("Expected username testuser, got %s", cfg.Users[0].Username)
	}
	if !cfg.LiveAgent() {
		t.Error("Expected live agent mode with endpoint and agent id set")
	}
}

func TestLoadDefaults(t *testing.T) {
	// Create minimal config to test defaults
	configContent := `
server:
  port: 0
`
	tmpFile, err := os.CreateTemp("", "config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Agent.Model != "gpt-4o" {
		t.Errorf("Expected default model gpt-4o, got %s", cfg.Agent.Model)
	}
	if cfg.Agent.PollIntervalSeconds != 10 {
		t.Errorf("Expected default poll_interval_seconds 10, got %d", cfg.Agent.PollIntervalSeconds)
	}
	if cfg.Agent.MaxWaitSeconds != 300 {
		t.Errorf("Expected default max_wait_seconds 300, got %d", cfg.Agent.MaxWaitSeconds)
	}
	if cfg.Upload.MaxSizeMB != 50 {
		t.Errorf("Expected default max_size_mb 50, got %d", cfg.Upload.MaxSizeMB)
	}
	if cfg.Upload.MaxChars != 10000 {
		t.Errorf("Expected default max_chars 10000, got %d", cfg.Upload.MaxChars)
	}
	if cfg.Store.MaxProposals != 100 {
		t.Errorf("Expected default max_proposals 100, got %d", cfg.Store.MaxProposals)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
}

func TestLoadMissingFile(t *testing.T) {
	// A missing config file falls back to defaults plus environment
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Expected missing config file to be tolerated, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.LiveAgent() {
		t.Error("Expected stub mode without endpoint and agent id")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROJECT_ENDPOINT", "https://foundry.env/api/projects/p1")
	t.Setenv("ORCHESTRATOR_AGENT_ID", "asst_env")
	t.Setenv("MODEL_DEPLOYMENT", "o3-deep-research")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Agent.Endpoint != "https://foundry.env/api/projects/p1" {
		t.Errorf("Expected endpoint from env, got %s", cfg.Agent.Endpoint)
	}
	if cfg.Agent.AgentID != "asst_env" {
		t.Errorf("Expected agent id from env, got %s", cfg.Agent.AgentID)
	}
	if cfg.Agent.Model != "o3-deep-research" {
		t.Errorf("Expected model from env, got %s", cfg.Agent.Model)
	}
	if !cfg.LiveAgent() {
		t.Error("Expected live agent mode from env pair")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-invalid-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("invalid: yaml: content:"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	_, err = Load(tmpFile.Name())
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "user1", Password: "pass1"},
			{Username: "user2", Password: "pass2"},
		},
	}

	// Test finding existing user
	user := cfg.FindUser("user1")
	if user == nil {
		t.Fatal("Expected to find user1")
	}
	if user.Password != "pass1" {
		t.Errorf("Expected password pass1, got %s", user.Password)
	}

	// Test finding non-existent user
	user = cfg.FindUser("nonexistent")
	if user != nil {
		t.Error("Expected nil for non-existent user")
	}
}
