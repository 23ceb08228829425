// Package yaml decodes YAML documents into ordered value graphs.
package yaml

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/RobertWHurst/swanjson"
)

const (
	mergeTag     = "!!merge"
	timestampTag = "!!timestamp"
	binaryTag    = "!!binary"
)

// Decoder implements swanjson.Decoder on the yaml.v3 node tree. Mappings
// become swanjson.OrderedMap in document order, aliases are expanded and
// merge keys are applied.
type Decoder struct{}

var _ swanjson.Decoder = &Decoder{}

// Decode parses the first document in data. An empty input decodes to nil.
func (d *Decoder) Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	v, err := convert(&doc, map[*yaml.Node]bool{})
	if err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	return v, nil
}

// New creates a new YAML decoder.
func New() *Decoder {
	return &Decoder{}
}

func convert(n *yaml.Node, expanding map[*yaml.Node]bool) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil

	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0], expanding)

	case yaml.AliasNode:
		if expanding[n.Alias] {
			return nil, errors.Errorf("line %d: alias %q refers to itself", n.Line, n.Value)
		}
		expanding[n.Alias] = true
		defer delete(expanding, n.Alias)
		return convert(n.Alias, expanding)

	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := convert(item, expanding)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case yaml.MappingNode:
		m := make(swanjson.OrderedMap, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.ShortTag() == mergeTag {
				merged, err := mergeSources(value, expanding)
				if err != nil {
					return nil, err
				}
				for _, source := range merged {
					for _, kv := range source {
						if _, exists := m.Get(kv.Key); !exists {
							m = append(m, kv)
						}
					}
				}
				continue
			}
			v, err := convert(value, expanding)
			if err != nil {
				return nil, err
			}
			m = set(m, key.Value, v)
		}
		return m, nil

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case timestampTag:
			var t time.Time
			if err := n.Decode(&t); err != nil {
				return nil, err
			}
			return t, nil
		case binaryTag:
			var b []byte
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errors.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

// mergeSources resolves the value of a << key to the mappings it merges.
func mergeSources(n *yaml.Node, expanding map[*yaml.Node]bool) ([]swanjson.OrderedMap, error) {
	v, err := convert(n, expanding)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case swanjson.OrderedMap:
		return []swanjson.OrderedMap{t}, nil
	case []any:
		sources := make([]swanjson.OrderedMap, 0, len(t))
		for _, item := range t {
			m, ok := item.(swanjson.OrderedMap)
			if !ok {
				return nil, errors.Errorf("line %d: merge source is not a mapping", n.Line)
			}
			sources = append(sources, m)
		}
		return sources, nil
	}
	return nil, errors.Errorf("line %d: merge source is not a mapping", n.Line)
}

// set assigns key, replacing the value of an entry merged in earlier.
func set(m swanjson.OrderedMap, key string, value any) swanjson.OrderedMap {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, swanjson.KeyValue{Key: key, Value: value})
}
