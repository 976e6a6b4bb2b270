package binding

import (
	"encoding/json"
	"fmt"
	"os"
)

// NodeTypes is a grammar's node-type taxonomy, as written to node-types.json
// by the tree-sitter generator.
type NodeTypes []NodeType

// NodeType describes one node kind.
type NodeType struct {
	Type     string               `json:"type"`
	Named    bool                 `json:"named"`
	Root     bool                 `json:"root,omitempty"`
	Extra    bool                 `json:"extra,omitempty"`
	Fields   map[string]FieldInfo `json:"fields,omitempty"`
	Children *FieldInfo           `json:"children,omitempty"`
	Subtypes []NodeTypeRef        `json:"subtypes,omitempty"`
}

// FieldInfo describes what can appear in a field or as unnamed children.
type FieldInfo struct {
	Multiple bool          `json:"multiple"`
	Required bool          `json:"required"`
	Types    []NodeTypeRef `json:"types"`
}

// NodeTypeRef points at another node kind.
type NodeTypeRef struct {
	Type  string `json:"type"`
	Named bool   `json:"named"`
}

// ParseNodeTypes decodes node-types.json content.
func ParseNodeTypes(data []byte) (NodeTypes, error) {
	var nt NodeTypes
	if err := json.Unmarshal(data, &nt); err != nil {
		return nil, fmt.Errorf("parse node types: %w", err)
	}
	if nt == nil {
		return nil, fmt.Errorf("parse node types: not an array")
	}
	for i, t := range nt {
		if t.Type == "" {
			return nil, fmt.Errorf("parse node types: entry %d has no type", i)
		}
	}
	return nt, nil
}

// ReadNodeTypes is the best-effort metadata read. Any failure yields (nil, false);
// the cause is intentionally dropped.
func ReadNodeTypes(path string) (NodeTypes, bool) {
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	nt, err := ParseNodeTypes(data)
	if err != nil {
		return nil, false
	}
	return nt, true
}

// Lookup finds the named node kind with the given type. Anonymous kinds
// (punctuation, keywords) are only returned when no named kind matches.
func (nt NodeTypes) Lookup(typ string) (NodeType, bool) {
	var anon *NodeType
	for i := range nt {
		if nt[i].Type != typ {
			continue
		}
		if nt[i].Named {
			return nt[i], true
		}
		if anon == nil {
			anon = &nt[i]
		}
	}
	if anon != nil {
		return *anon, true
	}
	return NodeType{}, false
}

// Named returns only the named node kinds, in file order.
func (nt NodeTypes) Named() NodeTypes {
	var out NodeTypes
	for _, t := range nt {
		if t.Named {
			out = append(out, t)
		}
	}
	return out
}
