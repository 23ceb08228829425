package swanjson

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l level) String() string {
	switch l {
	case 0:
		return "low"
	case 1:
		return "high"
	}
	return "unknown"
}

type celsius float64

type point struct{ X, Y int }

func (p point) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "(%d,%d)", p.X, p.Y), nil
}

type code uint16

func compact(t *testing.T, v any) string {
	t.Helper()
	out, err := Serialize(v, Options{})
	require.NoError(t, err)
	return out
}

func TestScalars(t *testing.T) {
	when := time.Date(2024, time.March, 5, 14, 7, 9, 123456789, time.FixedZone("X", 3600))
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: `null`},
		{name: "nil pointer", in: (*int)(nil), want: `null`},
		{name: "nil func", in: (func())(nil), want: `null`},
		{name: "string", in: `a"b`, want: `"a\"b"`},
		{name: "true", in: true, want: `true`},
		{name: "false", in: false, want: `false`},
		{name: "int", in: -42, want: `-42`},
		{name: "int8", in: int8(-8), want: `-8`},
		{name: "uint64", in: uint64(math.MaxUint64), want: `18446744073709551615`},
		{name: "uintptr", in: uintptr(7), want: `7`},
		{name: "float", in: 1.5, want: `1.5`},
		{name: "float whole", in: 3.0, want: `3`},
		{name: "float32", in: float32(0.1), want: `0.1`},
		{name: "float small", in: 1e-7, want: `1e-7`},
		{name: "float large", in: 1e21, want: `1e+21`},
		{name: "float nan", in: math.NaN(), want: `"NaN"`},
		{name: "float inf", in: math.Inf(-1), want: `"-Inf"`},
		{name: "complex", in: complex(1, 2), want: `"(1+2i)"`},
		{name: "time", in: when, want: `"2024-03-05T14:07:09"`},
		{name: "duration", in: 90 * time.Second, want: `"1m30s"`},
		{name: "month", in: time.July, want: `"July"`},
		{name: "json number", in: json.Number("12.50"), want: `12.50`},
		{name: "big int", in: new(big.Int).Lsh(big.NewInt(1), 70), want: `1180591620717411303424`},
		{name: "big rat", in: big.NewRat(1, 3), want: `"1/3"`},
		{name: "big rat whole", in: big.NewRat(4, 2), want: `2`},
		{name: "uuid", in: id, want: `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
		{name: "ip", in: net.ParseIP("10.0.0.1"), want: `"10.0.0.1"`},
		{name: "netip prefix", in: netip.MustParsePrefix("10.0.0.0/8"), want: `"10.0.0.0\/8"`},
		{name: "stringer enum", in: level(1), want: `"high"`},
		{name: "named float", in: celsius(21.5), want: `21.5`},
		{name: "named uint", in: code(404), want: `404`},
		{name: "text marshaler", in: point{X: 1, Y: 2}, want: `"(1,2)"`},
		{name: "kind", in: reflect.Struct, want: `"struct"`},
		{name: "type", in: reflect.TypeFor[point](), want: `"swanjson.point"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compact(t, tt.in))
		})
	}
}

func TestScalarPointerIsFollowed(t *testing.T) {
	n := 5
	s := "text"
	assert.Equal(t, `5`, compact(t, &n))
	assert.Equal(t, `"text"`, compact(t, &s))
}

type temperature struct{ v float64 }

func TestRegisterBasicType(t *testing.T) {
	RegisterBasicType(func(t temperature) string { return "warm" })
	defer basicTypes.Delete(reflect.TypeFor[temperature]())

	assert.Equal(t, `"warm"`, compact(t, temperature{v: 30}))
	assert.Equal(t, `["warm"]`, compact(t, []temperature{{v: 1}}))
}

func TestRegisterBasicTypeNumeric(t *testing.T) {
	type ticks struct{ n int }
	RegisterBasicType(func(t ticks) string { return "120" })
	defer basicTypes.Delete(reflect.TypeFor[ticks]())

	assert.Equal(t, `120`, compact(t, ticks{n: 120}))
}
