package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"SERVER_ADDRESS", "ENVIRONMENT", "STORE_BACKEND", "LOG_LEVEL", "AUTH_ENABLED", "GRAPH_ID", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "default", cfg.GraphID)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRAPH_ID=from-dotenv\nSTORE_BACKEND=badger\n"), 0o600))
	t.Setenv("GRAPH_ID", "")
	t.Setenv("STORE_BACKEND", "")
	// godotenv never overrides variables that are already set, so clear them for the process
	os.Unsetenv("GRAPH_ID")
	os.Unsetenv("STORE_BACKEND")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.GraphID)
	assert.Equal(t, StoreBadger, cfg.StoreBackend)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerAddress:   ":8080",
			Environment:     "development",
			GraphID:         "default",
			StoreBackend:    StoreMemory,
			LogLevel:        "info",
			TraceSampleRate: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, true},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, true},
		{"auth without secret", func(c *Config) { c.AuthEnabled = true }, true},
		{"auth with secret", func(c *Config) { c.AuthEnabled = true; c.JWTSecret = "s3cret" }, false},
		{"watch without path", func(c *Config) { c.WatchDomainConfig = true }, true},
		{"sample rate out of range", func(c *Config) { c.TraceSampleRate = 2 }, true},
		{"dynamodb without table", func(c *Config) { c.StoreBackend = StoreDynamoDB }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func writeDomainConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadDomainConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	writeDomainConfig(t, path, `
max_nodes: 42
enforce_path_compatibility: true
extra_compatibility_rules:
  - from: project
    to: task
    relationship: USES
`)

	cfg, err := LoadDomainConfigFile(path, "production")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MaxNodes)
	assert.Equal(t, domainconfig.ProductionDomainConfig().MaxEdges, cfg.MaxEdges, "unset keys keep the environment default")
	assert.True(t, cfg.EnforcePathCompatibility)
	assert.True(t, cfg.CompatibilityRules().Allows(valueobjects.NodeTypeProject, valueobjects.NodeTypeTask, valueobjects.RelationshipUses))

	cfg, err = LoadDomainConfigFile("", "development")
	require.NoError(t, err)
	assert.Equal(t, domainconfig.DevelopmentDomainConfig(), cfg)

	writeDomainConfig(t, path, "default_max_depth: 0\n")
	_, err = LoadDomainConfigFile(path, "development")
	assert.Error(t, err)

	_, err = LoadDomainConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), "development")
	assert.Error(t, err)
}

func TestDomainConfigWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	writeDomainConfig(t, path, "max_nodes: 10\n")

	w, err := NewDomainConfigWatcher(path, "development", zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	assert.Equal(t, 10, w.Current().MaxNodes)

	changed := make(chan *domainconfig.DomainConfig, 4)
	w.OnChange(func(cfg *domainconfig.DomainConfig) { changed <- cfg })
	go w.Run()

	// an invalid file is ignored
	writeDomainConfig(t, path, "default_max_depth: -1\n")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 10, w.Current().MaxNodes)

	writeDomainConfig(t, path, "max_nodes: 20\n")
	select {
	case cfg := <-changed:
		assert.Equal(t, 20, cfg.MaxNodes)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload the changed file")
	}
	assert.Equal(t, 20, w.Current().MaxNodes)
}
