package config

import (
	"fmt"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
)

// DomainConfig holds the configurable graph limits and search defaults
type DomainConfig struct {
	// Graph constraints; zero means unlimited
	MaxNodes int `yaml:"max_nodes"`
	MaxEdges int `yaml:"max_edges"`

	// Search defaults
	DefaultMaxDepth          int     `yaml:"default_max_depth"`
	DefaultMinStrength       float64 `yaml:"default_min_strength"`
	StrongestPathMinStrength float64 `yaml:"strongest_path_min_strength"`

	// Edge defaults
	DefaultEdgeStrength float64 `yaml:"default_edge_strength"`

	// Path validation
	EnforcePathCompatibility bool                             `yaml:"enforce_path_compatibility"`
	ExtraCompatibilityRules  []valueobjects.CompatibilityRule `yaml:"extra_compatibility_rules"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodes: 10000,
		MaxEdges: 50000,

		DefaultMaxDepth:          10,
		DefaultMinStrength:       0.0,
		StrongestPathMinStrength: 0.1,

		DefaultEdgeStrength: valueobjects.DefaultStrength.Float64(),

		EnforcePathCompatibility: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxNodes = 5000
	config.MaxEdges = 25000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodes = 100000
	config.MaxEdges = 500000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxNodes < 0 || c.MaxEdges < 0 {
		return fmt.Errorf("graph limits cannot be negative")
	}
	if c.DefaultMaxDepth <= 0 {
		return fmt.Errorf("default_max_depth must be positive, got %d", c.DefaultMaxDepth)
	}
	for name, v := range map[string]float64{
		"default_min_strength":        c.DefaultMinStrength,
		"strongest_path_min_strength": c.StrongestPathMinStrength,
		"default_edge_strength":       c.DefaultEdgeStrength,
	} {
		if !valueobjects.Strength(v).Valid() {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	for _, r := range c.ExtraCompatibilityRules {
		if !r.From.IsKnown() || !r.To.IsKnown() || !r.Relationship.IsConcrete() {
			return fmt.Errorf("invalid compatibility rule %s -> %s via %s", r.From, r.To, r.Relationship)
		}
	}
	return nil
}

// CompatibilityRules returns the default rules extended with the configured extras
func (c *DomainConfig) CompatibilityRules() valueobjects.CompatibilityRules {
	return valueobjects.DefaultCompatibilityRules().With(c.ExtraCompatibilityRules...)
}

// Clone returns a copy safe to mutate
func (c *DomainConfig) Clone() *DomainConfig {
	cp := *c
	cp.ExtraCompatibilityRules = append([]valueobjects.CompatibilityRule(nil), c.ExtraCompatibilityRules...)
	return &cp
}
