// Package formats looks up the input decoders by name or file extension.
package formats

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/RobertWHurst/swanjson"
	"github.com/RobertWHurst/swanjson/formats/cbor"
	"github.com/RobertWHurst/swanjson/formats/jsonc"
	"github.com/RobertWHurst/swanjson/formats/msgpack"
	"github.com/RobertWHurst/swanjson/formats/toml"
	"github.com/RobertWHurst/swanjson/formats/yaml"
)

// Format names a decoder and the file extensions it handles.
type Format struct {
	Name       string
	Extensions []string
	New        func() swanjson.Decoder
}

var registry = []Format{
	{Name: "json", Extensions: []string{".json"}, New: func() swanjson.Decoder { return jsonc.New() }},
	{Name: "jsonc", Extensions: []string{".jsonc", ".json5"}, New: func() swanjson.Decoder { return jsonc.New() }},
	{Name: "yaml", Extensions: []string{".yaml", ".yml"}, New: func() swanjson.Decoder { return yaml.New() }},
	{Name: "toml", Extensions: []string{".toml"}, New: func() swanjson.Decoder { return toml.New() }},
	{Name: "cbor", Extensions: []string{".cbor"}, New: func() swanjson.Decoder { return cbor.New() }},
	{Name: "msgpack", Extensions: []string{".msgpack", ".mpk"}, New: func() swanjson.Decoder { return msgpack.New() }},
}

// ErrUnknownFormat is returned when no decoder matches a name or path.
var ErrUnknownFormat = errors.New("unknown format")

// Lookup returns a decoder for the format called name.
func Lookup(name string) (swanjson.Decoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range registry {
		if f.Name == name {
			return f.New(), nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// ForPath picks the decoder for path by its extension and returns it with
// the format name.
func ForPath(path string) (swanjson.Decoder, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range registry {
		for _, e := range f.Extensions {
			if e == ext {
				return f.New(), f.Name, nil
			}
		}
	}
	return nil, "", errors.Wrapf(ErrUnknownFormat, "no format for extension %q", ext)
}

// Names lists the registered format names.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}
	return names
}
