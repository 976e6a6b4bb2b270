package binding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlNodeTypes = `[
  {
    "type": "block_mapping_pair",
    "named": true,
    "fields": {
      "key": {"multiple": false, "required": false, "types": [{"type": "flow_node", "named": true}]},
      "value": {"multiple": false, "required": false, "types": [{"type": "block_node", "named": true}]}
    }
  },
  {
    "type": "stream",
    "named": true,
    "root": true,
    "fields": {},
    "children": {"multiple": true, "required": false, "types": [{"type": "document", "named": true}]}
  },
  {"type": "comment", "named": true, "extra": true},
  {"type": ":", "named": false},
  {"type": "document", "named": false},
  {"type": "document", "named": true}
]`

func TestParseNodeTypes(t *testing.T) {
	nt, err := ParseNodeTypes([]byte(yamlNodeTypes))
	require.NoError(t, err)
	require.Len(t, nt, 6)

	pair := nt[0]
	assert.Equal(t, "block_mapping_pair", pair.Type)
	assert.True(t, pair.Named)
	require.Contains(t, pair.Fields, "key")
	assert.Equal(t, []NodeTypeRef{{Type: "flow_node", Named: true}}, pair.Fields["key"].Types)

	stream := nt[1]
	assert.True(t, stream.Root)
	require.NotNil(t, stream.Children)
	assert.True(t, stream.Children.Multiple)

	assert.True(t, nt[2].Extra)
}

func TestParseNodeTypes_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":     `{{{`,
		"object":       `{"type": "stream"}`,
		"null":         `null`,
		"missing type": `[{"named": true}]`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNodeTypes([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParseNodeTypes_EmptyArray(t *testing.T) {
	nt, err := ParseNodeTypes([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, nt)
}

func TestReadNodeTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node-types.json")
	require.NoError(t, os.WriteFile(path, []byte(yamlNodeTypes), 0o644))

	nt, ok := ReadNodeTypes(path)
	require.True(t, ok)
	assert.Len(t, nt, 6)
}

func TestReadNodeTypes_Failures(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`[{"type":`), 0o644))

	for _, path := range []string{"", filepath.Join(dir, "absent.json"), malformed, dir} {
		nt, ok := ReadNodeTypes(path)
		assert.False(t, ok, path)
		assert.Nil(t, nt, path)
	}
}

func TestNodeTypes_Lookup(t *testing.T) {
	nt, err := ParseNodeTypes([]byte(yamlNodeTypes))
	require.NoError(t, err)

	doc, ok := nt.Lookup("document")
	require.True(t, ok)
	assert.True(t, doc.Named, "named kind wins over anonymous")

	colon, ok := nt.Lookup(":")
	require.True(t, ok)
	assert.False(t, colon.Named)

	_, ok = nt.Lookup("flow_sequence")
	assert.False(t, ok)
}

func TestNodeTypes_Named(t *testing.T) {
	nt, err := ParseNodeTypes([]byte(yamlNodeTypes))
	require.NoError(t, err)

	named := nt.Named()
	require.Len(t, named, 4)
	assert.Equal(t, "block_mapping_pair", named[0].Type)
	assert.Equal(t, "document", named[3].Type)
}
