package valueobjects

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValueKind names the variant held by a Value
type ValueKind string

const (
	ValueKindString ValueKind = "string"
	ValueKindInt    ValueKind = "int"
	ValueKindFloat  ValueKind = "float"
	ValueKindBool   ValueKind = "bool"
	ValueKindTime   ValueKind = "time"
	ValueKindList   ValueKind = "list"
	ValueKindMap    ValueKind = "map"
)

// Value is a closed variant stored in attribute content.
// The zero Value is an empty string.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	list []string
	m    map[string]string
}

func StringValue(v string) Value { return Value{kind: ValueKindString, s: v} }

func IntValue(v int64) Value { return Value{kind: ValueKindInt, i: v} }

func FloatValue(v float64) Value { return Value{kind: ValueKindFloat, f: v} }

func BoolValue(v bool) Value { return Value{kind: ValueKindBool, b: v} }

func TimeValue(v time.Time) Value { return Value{kind: ValueKindTime, t: v.UTC()} }

// ListValue copies v
func ListValue(v []string) Value {
	return Value{kind: ValueKindList, list: append([]string(nil), v...)}
}

// MapValue copies v
func MapValue(v map[string]string) Value {
	m := make(map[string]string, len(v))
	for k, val := range v {
		m[k] = val
	}
	return Value{kind: ValueKindMap, m: m}
}

// Kind returns the variant tag
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return ValueKindString
	}
	return v.kind
}

func (v Value) AsString() (string, bool) { return v.s, v.Kind() == ValueKindString }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == ValueKindInt }

func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == ValueKindFloat }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == ValueKindBool }

func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == ValueKindTime }

func (v Value) AsList() ([]string, bool) {
	if v.kind != ValueKindList {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

func (v Value) AsMap() (map[string]string, bool) {
	if v.kind != ValueKindMap {
		return nil, false
	}
	return MapValue(v.m).m, true
}

// Clone returns a deep copy
func (v Value) Clone() Value {
	switch v.kind {
	case ValueKindList:
		return ListValue(v.list)
	case ValueKindMap:
		return MapValue(v.m)
	default:
		return v
	}
}

// Equal compares kind and content
func (v Value) Equal(o Value) bool {
	return v.Kind() == o.Kind() && v.String() == o.String()
}

// String renders the value for display. Maps are rendered with sorted keys.
func (v Value) String() string {
	switch v.Kind() {
	case ValueKindInt:
		return strconv.FormatInt(v.i, 10)
	case ValueKindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(v.b)
	case ValueKindTime:
		return v.t.Format(time.RFC3339)
	case ValueKindList:
		return "[" + strings.Join(v.list, ", ") + "]"
	case ValueKindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.m[k]
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.s
	}
}

func (v Value) raw() interface{} {
	switch v.Kind() {
	case ValueKindInt:
		return v.i
	case ValueKindFloat:
		return v.f
	case ValueKindBool:
		return v.b
	case ValueKindTime:
		return v.t.Format(time.RFC3339Nano)
	case ValueKindList:
		if v.list == nil {
			return []string{}
		}
		return v.list
	case ValueKindMap:
		if v.m == nil {
			return map[string]string{}
		}
		return v.m
	default:
		return v.s
	}
}

type valueJSON struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.raw())
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Kind: v.Kind(), Value: raw})
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var doc valueJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	return v.decode(doc.Kind, func(target interface{}) error {
		return json.Unmarshal(doc.Value, target)
	})
}

type valueYAML struct {
	Kind  ValueKind   `yaml:"kind"`
	Value interface{} `yaml:"value"`
}

type valueYAMLIn struct {
	Kind  ValueKind `yaml:"kind"`
	Value yaml.Node `yaml:"value"`
}

func (v Value) MarshalYAML() (interface{}, error) {
	return valueYAML{Kind: v.Kind(), Value: v.raw()}, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var doc valueYAMLIn
	if err := node.Decode(&doc); err != nil {
		return err
	}
	return v.decode(doc.Kind, doc.Value.Decode)
}

func (v *Value) decode(kind ValueKind, into func(interface{}) error) error {
	switch kind {
	case ValueKindString, "":
		var s string
		if err := into(&s); err != nil {
			return err
		}
		*v = StringValue(s)
	case ValueKindInt:
		var i int64
		if err := into(&i); err != nil {
			return err
		}
		*v = IntValue(i)
	case ValueKindFloat:
		var f float64
		if err := into(&f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case ValueKindBool:
		var b bool
		if err := into(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case ValueKindTime:
		var s string
		if err := into(&s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*v = TimeValue(t)
	case ValueKindList:
		var l []string
		if err := into(&l); err != nil {
			return err
		}
		*v = ListValue(l)
	case ValueKindMap:
		var m map[string]string
		if err := into(&m); err != nil {
			return err
		}
		*v = MapValue(m)
	default:
		return fmt.Errorf("unknown value kind %q", kind)
	}
	return nil
}
