package config

import (
	"fmt"
	"os"

	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"gopkg.in/yaml.v3"
)

// LoadDomainConfigFile overlays the YAML file at path onto the defaults for
// environment. Keys missing from the file keep their environment default.
// An empty path returns the environment default unchanged.
func LoadDomainConfigFile(path, environment string) (*domainconfig.DomainConfig, error) {
	cfg := domainconfig.LoadDomainConfig(environment)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse domain config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain config %s: %w", path, err)
	}
	return cfg, nil
}
