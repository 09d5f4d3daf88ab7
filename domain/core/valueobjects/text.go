package valueobjects

// Text encoding lets JSON, YAML and query-string decoding share the
// case-insensitive parsers above.

func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *NodeType) UnmarshalText(b []byte) error {
	*t = ParseNodeType(string(b))
	return nil
}

func (r RelationshipType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RelationshipType) UnmarshalText(b []byte) error {
	*r = ParseRelationship(string(b))
	return nil
}

func (t PathType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *PathType) UnmarshalText(b []byte) error {
	*t = ParsePathType(string(b))
	return nil
}

func (t AttributeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AttributeType) UnmarshalText(b []byte) error {
	*t = ParseAttributeType(string(b))
	return nil
}

func (t ContentType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ContentType) UnmarshalText(b []byte) error {
	*t = ParseContentType(string(b))
	return nil
}
