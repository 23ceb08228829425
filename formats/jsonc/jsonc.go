// Package jsonc decodes JSON, and JSON with comments and trailing commas,
// into value graphs that keep the document's key order.
package jsonc

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"

	"github.com/RobertWHurst/swanjson"
)

// Decoder implements swanjson.Decoder. Objects become swanjson.OrderedMap,
// arrays []any and numbers json.Number so no precision is lost.
type Decoder struct{}

var _ swanjson.Decoder = &Decoder{}

// Decode parses data, ignoring comments and trailing commas.
func (d *Decoder) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Wrap(err, "jsonc")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("jsonc: unexpected data after top-level value")
	}
	return v, nil
}

// New creates a new JSONC decoder.
func New() *Decoder {
	return &Decoder{}
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		m := swanjson.OrderedMap{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.Errorf("object key %v is not a string", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			m = append(m, swanjson.KeyValue{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil

	case '[':
		list := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, errors.Errorf("unexpected delimiter %v", delim)
}
