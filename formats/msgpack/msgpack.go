// Package msgpack decodes MessagePack data into ordered value graphs.
package msgpack

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/RobertWHurst/swanjson"
)

// Decoder implements swanjson.Decoder. Maps keep their wire order as
// swanjson.OrderedMap with keys stringified.
type Decoder struct{}

var _ swanjson.Decoder = &Decoder{}

func (d *Decoder) Decode(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(decodeOrderedMap)

	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, errors.Wrap(err, "msgpack")
	}
	return v, nil
}

// New creates a new MessagePack decoder.
func New() *Decoder {
	return &Decoder{}
}

func decodeOrderedMap(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}

	m := make(swanjson.OrderedMap, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		value, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		m = append(m, swanjson.KeyValue{Key: keyString(key), Value: value})
	}
	return m, nil
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	}
	return fmt.Sprint(key)
}
