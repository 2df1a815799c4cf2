// Package frontmatter separates a YAML metadata block from a Markdown body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const Delimiter = "---"

var ErrNotMapping = errors.New("front matter is not a mapping")

// yaml11Bools are the plain scalars YAML 1.1 reads as booleans beyond true and false.
var yaml11Bools = map[string]bool{
	"yes": true, "Yes": true, "YES": true,
	"on": true, "On": true, "ON": true,
	"no": false, "No": false, "NO": false,
	"off": false, "Off": false, "OFF": false,
}

// Parse splits text on the first two delimiters and decodes the block between them.
// The body is returned exactly as it appears after the second delimiter.
// When the text does not open with a delimiter, or the closing delimiter is missing,
// the metadata is empty and the whole text is the body.
func Parse(text string) (map[string]any, string, error) {
	if !strings.HasPrefix(text, Delimiter) {
		return map[string]any{}, text, nil
	}

	parts := strings.SplitN(text, Delimiter, 3)
	if len(parts) < 3 {
		return map[string]any{}, text, nil
	}

	meta, err := decode(parts[1])
	if err != nil {
		return nil, "", err
	}
	return meta, parts[2], nil
}

// decode walks the document node so that unquoted timestamps at the top level
// come back as time.Time instead of the plain strings yaml.v3 hands to interface values.
func decode(block string) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}

	meta := map[string]any{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return meta, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return meta, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode front matter: %w (line %d)", ErrNotMapping, root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		v, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("decode front matter key %q: %w", key.Value, err)
		}
		meta[key.Value] = v
	}
	return meta, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		var t time.Time
		if err := n.Decode(&t); err == nil {
			return t, nil
		}
	}
	if b, ok := yaml11Bool(n); ok {
		return b, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// yaml11Bool resolves yes/no/on/off the way YAML 1.1 does. Quoted or explicitly
// tagged scalars stay strings.
func yaml11Bool(n *yaml.Node) (bool, bool) {
	if n.Kind != yaml.ScalarNode || n.Style != 0 || n.ShortTag() != "!!str" {
		return false, false
	}
	b, ok := yaml11Bools[n.Value]
	return b, ok
}
