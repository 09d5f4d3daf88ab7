package config

import (
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
)

func TestLoadDomainConfig(t *testing.T) {
	assert.Equal(t, 5000, LoadDomainConfig("production").MaxNodes)
	assert.Equal(t, 100000, LoadDomainConfig("development").MaxNodes)
	assert.Equal(t, 10000, LoadDomainConfig("staging").MaxNodes)

	cfg := DefaultDomainConfig()
	assert.Equal(t, 10, cfg.DefaultMaxDepth)
	assert.Equal(t, 0.1, cfg.StrongestPathMinStrength)
	assert.Equal(t, 0.5, cfg.DefaultEdgeStrength)
	assert.False(t, cfg.EnforcePathCompatibility)
}

func TestDomainConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DomainConfig)
		wantErr bool
	}{
		{"defaults", func(*DomainConfig) {}, false},
		{"negative limit", func(c *DomainConfig) { c.MaxEdges = -1 }, true},
		{"zero depth", func(c *DomainConfig) { c.DefaultMaxDepth = 0 }, true},
		{"strength above one", func(c *DomainConfig) { c.DefaultEdgeStrength = 1.5 }, true},
		{"bad rule", func(c *DomainConfig) {
			c.ExtraCompatibilityRules = []valueobjects.CompatibilityRule{
				{From: valueobjects.NodeTypeTask, To: valueobjects.NodeTypeQuality, Relationship: valueobjects.RelationshipAny},
			}
		}, true},
		{"good rule", func(c *DomainConfig) {
			c.ExtraCompatibilityRules = []valueobjects.CompatibilityRule{
				{From: valueobjects.NodeTypeTask, To: valueobjects.NodeTypeQuality, Relationship: valueobjects.RelationshipRelatedTo},
			}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
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

func TestDomainConfig_CompatibilityRules(t *testing.T) {
	cfg := DefaultDomainConfig()
	assert.Equal(t, 3, cfg.CompatibilityRules().Len())

	cfg.ExtraCompatibilityRules = append(cfg.ExtraCompatibilityRules, valueobjects.CompatibilityRule{
		From: valueobjects.NodeTypeArchitecture, To: valueobjects.NodeTypeDevelopment, Relationship: valueobjects.RelationshipUses,
	})
	rules := cfg.CompatibilityRules()
	assert.Equal(t, 4, rules.Len())
	assert.True(t, rules.Allows(valueobjects.NodeTypeArchitecture, valueobjects.NodeTypeDevelopment, valueobjects.RelationshipUses))

	clone := cfg.Clone()
	clone.ExtraCompatibilityRules[0].Relationship = valueobjects.RelationshipExtends
	assert.Equal(t, valueobjects.RelationshipUses, cfg.ExtraCompatibilityRules[0].Relationship)
}
