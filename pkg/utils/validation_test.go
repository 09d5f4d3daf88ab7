package utils

import (
	"testing"

	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type testEdgeRequest struct {
	Source       string  `validate:"required"`
	Relationship string  `validate:"required,concrete_relationship"`
	NodeType     string  `validate:"omitempty,node_type"`
	PathType     string  `validate:"omitempty,path_type"`
	Filter       string  `validate:"omitempty,relationship"`
	Strength     float64 `validate:"gte=0,lte=1"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     testEdgeRequest
		wantErr string
	}{
		{"valid", testEdgeRequest{Source: "A", Relationship: "uses", Strength: 0.5}, ""},
		{"missing source", testEdgeRequest{Relationship: "USES"}, "source is required"},
		{"wildcard not concrete", testEdgeRequest{Source: "A", Relationship: "ANY"}, "relationship must be a known relationship"},
		{"wildcard filter allowed", testEdgeRequest{Source: "A", Relationship: "USES", Filter: "ANY"}, ""},
		{"unknown node type", testEdgeRequest{Source: "A", Relationship: "USES", NodeType: "PLANET"}, "nodetype must be a known node type"},
		{"unknown path type", testEdgeRequest{Source: "A", Relationship: "USES", PathType: "LOOP"}, "pathtype must be a known path type"},
		{"strength out of range", testEdgeRequest{Source: "A", Relationship: "USES", Strength: 1.5}, "strength must be <= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
