package entities

import (
	"encoding/json"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createTestAttribute(name string) *StructuredAttribute {
	return NewStructuredAttribute(name, valueobjects.AttributeTypeGoal, valueobjects.ContentTypeKeyValue)
}

func TestNewStructuredAttribute(t *testing.T) {
	attr := createTestAttribute("scope")

	assert.True(t, valueobjects.HasPrefix(attr.ID(), valueobjects.AttributeIDPrefix))
	assert.Equal(t, "scope", attr.Name())
	assert.Equal(t, DefaultConfidence, attr.Confidence())
	assert.Empty(t, attr.Sources())
	assert.True(t, attr.IsValid())
}

func TestStructuredAttribute_SetConfidence(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  valueobjects.Strength
	}{
		{"in range", 0.75, 0.75},
		{"negative clamps to zero", -1, 0},
		{"above one clamps", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := createTestAttribute("c")
			attr.SetConfidence(tt.input)
			assert.Equal(t, tt.want, attr.Confidence())
			assert.True(t, attr.IsValid())
		})
	}
}

func TestStructuredAttribute_Sources(t *testing.T) {
	attr := createTestAttribute("s")
	attr.AddSource("")
	attr.AddSource("doc://brief")
	attr.AddSource("doc://brief")
	attr.AddSource("doc://roadmap")

	assert.Equal(t, []string{"doc://brief", "doc://roadmap"}, attr.Sources())
	assert.True(t, attr.RemoveSource("doc://brief"))
	assert.False(t, attr.RemoveSource("doc://brief"))
	assert.Equal(t, []string{"doc://roadmap"}, attr.Sources())
}

func TestStructuredAttribute_Content(t *testing.T) {
	attr := NewStructuredAttribute("mixed", valueobjects.AttributeTypeComposite, valueobjects.ContentTypeMixed)

	require.NoError(t, attr.SetValue("owner", valueobjects.StringValue("team-a")))
	require.NoError(t, attr.SetValue("budget", valueobjects.IntValue(10)))
	err := attr.SetValue("", valueobjects.StringValue("x"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidEntity))

	v, ok := attr.Value("owner")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "team-a", s)

	_, ok = attr.Value("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"budget", "owner"}, attr.Keys())

	attr.AddListItem(valueobjects.StringValue("first"))
	attr.AddListItem(valueobjects.BoolValue(true))
	assert.Len(t, attr.ListItems(), 2)
}

func TestStructuredAttribute_AddNestedStructure(t *testing.T) {
	parent := NewStructuredAttribute("parent", valueobjects.AttributeTypeComposite, valueobjects.ContentTypeNestedStruct)

	tests := []struct {
		name    string
		child   *StructuredAttribute
		wantErr bool
	}{
		{"valid child", createTestAttribute("child"), false},
		{"nil child", nil, true},
		{"unnamed child", createTestAttribute(""), true},
		{"unknown type", NewStructuredAttribute("x", valueobjects.AttributeTypeUnknown, valueobjects.ContentTypeList), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parent.AddNestedStructure(tt.child)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Len(t, parent.NestedStructures(), 1)
	assert.True(t, parent.IsValid())
}

func TestStructuredAttribute_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		build func() *StructuredAttribute
		want  bool
	}{
		{"default", func() *StructuredAttribute { return createTestAttribute("ok") }, true},
		{"empty name", func() *StructuredAttribute { return createTestAttribute("") }, false},
		{"unknown content", func() *StructuredAttribute {
			return NewStructuredAttribute("n", valueobjects.AttributeTypeMetric, valueobjects.ContentTypeUnknown)
		}, false},
		{"confidence out of range", func() *StructuredAttribute {
			a := createTestAttribute("n")
			a.confidence = 1.5
			return a
		}, false},
		{"invalid nested", func() *StructuredAttribute {
			a := createTestAttribute("n")
			bad := createTestAttribute("child")
			a.nested = append(a.nested, bad)
			bad.name = ""
			return a
		}, false},
		{"nil", func() *StructuredAttribute { return nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.build().IsValid())
		})
	}
}

func TestStructuredAttribute_CloneIsDeep(t *testing.T) {
	attr := NewStructuredAttribute("root", valueobjects.AttributeTypeComposite, valueobjects.ContentTypeMixed)
	require.NoError(t, attr.SetValue("tags", valueobjects.ListValue([]string{"a"})))
	require.NoError(t, attr.AddNestedStructure(createTestAttribute("child")))
	attr.AddSource("s1")

	clone := attr.Clone()
	clone.SetName("copy")
	clone.AddSource("s2")
	require.NoError(t, clone.SetValue("tags", valueobjects.ListValue([]string{"b"})))
	clone.nested[0].SetName("renamed")

	assert.Equal(t, "root", attr.Name())
	assert.Equal(t, []string{"s1"}, attr.Sources())
	v, _ := attr.Value("tags")
	l, _ := v.AsList()
	assert.Equal(t, []string{"a"}, l)
	assert.Equal(t, "child", attr.NestedStructures()[0].Name())
}

func TestStructuredAttribute_DocumentRoundTrip(t *testing.T) {
	attr := NewStructuredAttribute("root", valueobjects.AttributeTypeComposite, valueobjects.ContentTypeMixed)
	attr.SetDescription("top level")
	attr.SetConfidence(0.9)
	require.NoError(t, attr.SetValue("k", valueobjects.FloatValue(1.5)))
	attr.AddListItem(valueobjects.StringValue("item"))
	require.NoError(t, attr.AddNestedStructure(createTestAttribute("child")))

	raw, err := attr.ToJSON()
	require.NoError(t, err)

	var doc AttributeDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	back, err := AttributeFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, attr.String(), back.String())

	y, err := attr.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, y, "confidence: 0.90")

	var fromYAML AttributeDocument
	require.NoError(t, yaml.Unmarshal([]byte(y), &fromYAML))
	assert.Equal(t, "child", fromYAML.Nested[0].Name)

	doc.Name = ""
	_, err = AttributeFromDocument(doc)
	assert.Error(t, err)
}

func TestStructuredAttribute_String(t *testing.T) {
	attr := createTestAttribute("scope")
	require.NoError(t, attr.SetValue("owner", valueobjects.StringValue("ops")))
	assert.Equal(t, "scope(GOAL/KEY_VALUE, confidence=0.50): owner=ops", attr.String())
}
