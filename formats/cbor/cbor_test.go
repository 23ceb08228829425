package cbor

import (
	"math/big"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertWHurst/swanjson"
)

func TestDecoderDecode(t *testing.T) {
	data, err := cbor.Marshal(map[any]any{
		"name": "widget",
		1:      []any{true, nil, 2.5},
		"blob": []byte("hi"),
	})
	require.NoError(t, err)

	v, err := New().Decode(data)
	require.NoError(t, err)

	out, err := swanjson.Serialize(v, swanjson.Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"1":[true,null,2.5],"blob":"aGk=","name":"widget"}`, out)
}

func TestDecoderBigInt(t *testing.T) {
	n, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	data, err := cbor.Marshal(n)
	require.NoError(t, err)

	v, err := New().Decode(data)
	require.NoError(t, err)

	out, err := swanjson.Serialize(v, swanjson.Options{})
	require.NoError(t, err)
	assert.Equal(t, `123456789012345678901234567890`, out)
}

func TestDecoderTag(t *testing.T) {
	data, err := cbor.Marshal(cbor.Tag{Number: 4000, Content: "payload"})
	require.NoError(t, err)

	v, err := New().Decode(data)
	require.NoError(t, err)

	out, err := swanjson.Serialize(v, swanjson.Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"tag":4000,"content":"payload"}`, out)
}

func TestDecoderInvalid(t *testing.T) {
	_, err := New().Decode([]byte{0xff, 0x00})
	assert.Error(t, err)
}
