package valueobjects

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultStrength is applied to edges created without an explicit weight
const DefaultStrength Strength = 0.5

// Strength is a relationship weight or confidence in [0,1]
type Strength float64

// NewStrength clamps v into [0,1]. NaN becomes 0.
func NewStrength(v float64) Strength {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return Strength(v)
	}
}

// Valid reports whether the value lies within [0,1]
func (s Strength) Valid() bool {
	return s >= 0 && s <= 1
}

// Float64 returns the raw value
func (s Strength) Float64() float64 { return float64(s) }

// String renders the value with two decimals
func (s Strength) String() string {
	return strconv.FormatFloat(float64(s), 'f', 2, 64)
}

func (s Strength) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strength) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid strength %q: %w", string(b), err)
	}
	*s = Strength(v)
	return nil
}

func (s Strength) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s.String()}, nil
}

func (s *Strength) UnmarshalYAML(node *yaml.Node) error {
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("invalid strength %q: %w", node.Value, err)
	}
	*s = Strength(v)
	return nil
}
