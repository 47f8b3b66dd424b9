package schema

import (
	"fmt"
	"os"

	"github.com/aretw0/typeguard/internal/bind"
	"github.com/aretw0/typeguard/pkg/value"
	"gopkg.in/yaml.v3"
)

// Value tags understood by DecodeValue in addition to the core YAML tags.
const (
	TagTuple     = "!tuple"
	TagFrozenSet = "!frozenset"
	TagSet       = "!set"
)

// ParseValue decodes a YAML (or JSON) document into a Go value. Sequences
// tagged !tuple become value.Tuple, !frozenset becomes value.FrozenSet and
// !set becomes map[any]struct{}. Mappings whose keys are all strings decode
// to map[string]any, other mappings to map[any]any.
func ParseValue(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse value: %w", err)
	}
	if node.Kind == 0 {
		return nil, nil
	}
	return DecodeValue(&node)
}

// LoadValue reads and decodes a value file.
func LoadValue(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read value file: %w", err)
	}
	return ParseValue(data)
}

// DecodeValue converts a YAML node into a Go value.
func DecodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return DecodeValue(node.Content[0])
	case yaml.AliasNode:
		return DecodeValue(node.Alias)
	case yaml.SequenceNode:
		items := make([]any, len(node.Content))
		for i, c := range node.Content {
			v, err := DecodeValue(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		switch node.Tag {
		case TagTuple:
			return value.Tuple(items), nil
		case TagFrozenSet:
			return value.NewFrozenSet(items...), nil
		case TagSet:
			set := make(map[any]struct{}, len(items))
			for _, item := range items {
				if !hashable(item) {
					return nil, fmt.Errorf("line %d: unhashable set element %v", node.Line, item)
				}
				set[item] = struct{}{}
			}
			return set, nil
		}
		return items, nil
	case yaml.MappingNode:
		return decodeMapping(node)
	case yaml.ScalarNode:
		return decodeScalar(node)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
}

func decodeMapping(node *yaml.Node) (any, error) {
	keys := make([]any, 0, len(node.Content)/2)
	vals := make([]any, 0, len(node.Content)/2)
	allStrings := true
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, err := DecodeValue(node.Content[i])
		if err != nil {
			return nil, err
		}
		if !hashable(k) {
			return nil, fmt.Errorf("line %d: unhashable mapping key %v", node.Content[i].Line, k)
		}
		v, err := DecodeValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		if _, ok := k.(string); !ok {
			allStrings = false
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}

	if allStrings {
		m := make(map[string]any, len(keys))
		for i, k := range keys {
			m[k.(string)] = vals[i]
		}
		return m, nil
	}
	m := make(map[any]any, len(keys))
	for i, k := range keys {
		m[k] = vals[i]
	}
	return m, nil
}

func decodeScalar(node *yaml.Node) (any, error) {
	switch node.Tag {
	case "!!str", "!!timestamp":
		return node.Value, nil
	case TagTuple, TagFrozenSet, TagSet:
		return nil, fmt.Errorf("line %d: %s applies to sequences", node.Line, node.Tag)
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return v, nil
}

func hashable(v any) bool {
	switch v.(type) {
	case []any, value.Tuple, value.FrozenSet, map[string]any, map[any]any, map[any]struct{}:
		return false
	}
	return true
}

// CallRecord is a recorded call: its arguments and, when Returned is set,
// the value the function produced.
type CallRecord struct {
	Args     bind.Args
	Return   any
	Returned bool
}

// ParseCallRecord decodes a call record document:
//
//	args: [1, "two"]
//	kwargs: {flag: true}
//	return: 3
func ParseCallRecord(data []byte) (CallRecord, error) {
	v, err := ParseValue(data)
	if err != nil {
		return CallRecord{}, err
	}
	if v == nil {
		return CallRecord{}, nil
	}
	return CallRecordFrom(v)
}

// LoadCallRecord reads and decodes a call record file.
func LoadCallRecord(path string) (CallRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CallRecord{}, fmt.Errorf("failed to read call record: %w", err)
	}
	return ParseCallRecord(data)
}

// CallRecordFrom builds a call record from an already decoded document.
func CallRecordFrom(v any) (CallRecord, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		return CallRecord{}, fmt.Errorf("call record must be a mapping, got %T", v)
	}

	var rec CallRecord
	for key, raw := range doc {
		switch key {
		case "args":
			switch args := raw.(type) {
			case nil:
			case []any:
				rec.Args.Positional = args
			case value.Tuple:
				rec.Args.Positional = []any(args)
			default:
				return CallRecord{}, fmt.Errorf("args must be a sequence, got %T", raw)
			}
		case "kwargs":
			switch kwargs := raw.(type) {
			case nil:
			case map[string]any:
				rec.Args.Keyword = kwargs
			default:
				return CallRecord{}, fmt.Errorf("kwargs must be a mapping with string keys, got %T", raw)
			}
		case "return":
			rec.Return = raw
			rec.Returned = true
		default:
			return CallRecord{}, fmt.Errorf("unknown call record key %q", key)
		}
	}
	return rec, nil
}
