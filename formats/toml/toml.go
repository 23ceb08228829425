// Package toml decodes TOML documents into ordered value graphs.
package toml

import (
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/RobertWHurst/swanjson"
)

// Decoder implements swanjson.Decoder. Tables become swanjson.OrderedMap with
// keys in the order they are first defined in the document; local dates and
// times decode to time.Time.
type Decoder struct{}

var _ swanjson.Decoder = &Decoder{}

func (d *Decoder) Decode(data []byte) (any, error) {
	var v map[string]any
	md, err := toml.Decode(string(data), &v)
	if err != nil {
		return nil, errors.Wrap(err, "toml")
	}

	rank := make(map[string]int)
	for i, key := range md.Keys() {
		path := strings.Join(key, "\x00")
		if _, ok := rank[path]; !ok {
			rank[path] = i
		}
	}
	return ordered(v, nil, rank), nil
}

// New creates a new TOML decoder.
func New() *Decoder {
	return &Decoder{}
}

func ordered(v any, path []string, rank map[string]int) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		position := func(k string) int {
			if r, ok := rank[strings.Join(append(slices.Clip(path), k), "\x00")]; ok {
				return r
			}
			return len(rank)
		}
		slices.SortFunc(keys, func(a, b string) int {
			if d := position(a) - position(b); d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})

		m := make(swanjson.OrderedMap, 0, len(keys))
		for _, k := range keys {
			m = append(m, swanjson.KeyValue{Key: k, Value: ordered(t[k], append(slices.Clip(path), k), rank)})
		}
		return m

	case []map[string]any:
		list := make([]any, len(t))
		for i, table := range t {
			list[i] = ordered(table, path, rank)
		}
		return list

	case []any:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = ordered(item, path, rank)
		}
		return list
	}
	return v
}
