package valueobjects

import "strings"

// AttributeType describes the role an attribute plays on its node
type AttributeType string

const (
	AttributeTypeDataMember AttributeType = "DATAMEMBER"
	AttributeTypeMethod     AttributeType = "METHOD"
	AttributeTypeReference  AttributeType = "REFERENCE"
	AttributeTypeComposite  AttributeType = "COMPOSITE"
	AttributeTypeGoal       AttributeType = "GOAL"
	AttributeTypeMetric     AttributeType = "METRIC"
	AttributeTypeUnknown    AttributeType = "Unknown"
)

// ParseAttributeType converts a string to an AttributeType
func ParseAttributeType(s string) AttributeType {
	s = strings.TrimSpace(s)
	for _, t := range []AttributeType{
		AttributeTypeDataMember,
		AttributeTypeMethod,
		AttributeTypeReference,
		AttributeTypeComposite,
		AttributeTypeGoal,
		AttributeTypeMetric,
	} {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return AttributeTypeUnknown
}

// String returns the canonical name
func (t AttributeType) String() string {
	if t == "" {
		return string(AttributeTypeUnknown)
	}
	return string(t)
}

// IsKnown reports whether the type is declared
func (t AttributeType) IsKnown() bool {
	return ParseAttributeType(string(t)) != AttributeTypeUnknown
}

// ContentType describes the shape of an attribute's content
type ContentType string

const (
	ContentTypeKeyValue     ContentType = "KEY_VALUE"
	ContentTypeList         ContentType = "LIST"
	ContentTypeNestedStruct ContentType = "NESTED_STRUCT"
	ContentTypeMixed        ContentType = "MIXED"
	ContentTypeUnknown      ContentType = "Unknown"
)

// ParseContentType converts a string to a ContentType
func ParseContentType(s string) ContentType {
	s = strings.TrimSpace(s)
	for _, t := range []ContentType{
		ContentTypeKeyValue,
		ContentTypeList,
		ContentTypeNestedStruct,
		ContentTypeMixed,
	} {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return ContentTypeUnknown
}

// String returns the canonical name
func (t ContentType) String() string {
	if t == "" {
		return string(ContentTypeUnknown)
	}
	return string(t)
}

// IsKnown reports whether the content type is declared
func (t ContentType) IsKnown() bool {
	return ParseContentType(string(t)) != ContentTypeUnknown
}

// AllowsKeyValue reports whether keyed values may be stored
func (t ContentType) AllowsKeyValue() bool {
	return t == ContentTypeKeyValue || t == ContentTypeMixed
}

// AllowsList reports whether list items may be stored
func (t ContentType) AllowsList() bool {
	return t == ContentTypeList || t == ContentTypeMixed
}

// AllowsNested reports whether nested attributes may be stored
func (t ContentType) AllowsNested() bool {
	return t == ContentTypeNestedStruct || t == ContentTypeMixed
}
