// Package cbor decodes CBOR data items into value graphs.
package cbor

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/RobertWHurst/swanjson"
)

var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// Decoder implements swanjson.Decoder. Maps are decoded with their native
// key types and then normalized to string keys; bignums become *big.Int.
type Decoder struct{}

var _ swanjson.Decoder = &Decoder{}

func (d *Decoder) Decode(data []byte) (any, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "cbor")
	}
	return normalizeValue(v), nil
}

// New creates a new CBOR decoder.
func New() *Decoder {
	return &Decoder{}
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case map[any]any:
		result := make(map[string]any, len(value))
		for key, element := range value {
			result[fmt.Sprint(key)] = normalizeValue(element)
		}
		return result

	case []any:
		for index, element := range value {
			value[index] = normalizeValue(element)
		}
		return value

	case big.Int:
		return &value

	case cbor.Tag:
		return swanjson.OrderedMap{
			{Key: "tag", Value: value.Number},
			{Key: "content", Value: normalizeValue(value.Content)},
		}

	default:
		return v
	}
}
