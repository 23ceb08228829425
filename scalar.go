package swanjson

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	nullLiteral  = "null"
	trueLiteral  = "true"
	falseLiteral = "false"

	// sortableTime is the fixed date/time profile: no fraction, no offset.
	sortableTime = "2006-01-02T15:04:05"
)

// stringifier renders a scalar in its culture invariant form.
type stringifier func(v reflect.Value) string

// basicTypes maps exact runtime types to their stringifier.
var basicTypes = xsync.NewMapOf[reflect.Type, stringifier]()

var (
	stringType        = reflect.TypeFor[string]()
	boolType          = reflect.TypeFor[bool]()
	timeType          = reflect.TypeFor[time.Time]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType      = reflect.TypeFor[fmt.Stringer]()
)

func init() {
	for _, t := range []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
	} {
		basicTypes.Store(t, formatInt)
	}
	for _, t := range []reflect.Type{
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](), reflect.TypeFor[uintptr](),
	} {
		basicTypes.Store(t, formatUint)
	}
	basicTypes.Store(reflect.TypeFor[float32](), formatFloat)
	basicTypes.Store(reflect.TypeFor[float64](), formatFloat)
	basicTypes.Store(reflect.TypeFor[complex64](), formatComplex)
	basicTypes.Store(reflect.TypeFor[complex128](), formatComplex)

	RegisterBasicType(func(d time.Duration) string { return d.String() })
	RegisterBasicType(func(m time.Month) string { return m.String() })
	RegisterBasicType(func(d time.Weekday) string { return d.String() })
	RegisterBasicType(func(n json.Number) string { return n.String() })
	RegisterBasicType(func(n *big.Int) string { return n.String() })
	RegisterBasicType(func(f *big.Float) string { return f.Text('g', -1) })
	RegisterBasicType(func(r *big.Rat) string { return r.RatString() })
	RegisterBasicType(func(id uuid.UUID) string { return id.String() })
	RegisterBasicType(func(ip net.IP) string { return ip.String() })
	RegisterBasicType(func(a netip.Addr) string { return a.String() })
	RegisterBasicType(func(p netip.Prefix) string { return p.String() })
	RegisterBasicType(func(u url.URL) string { return u.String() })
}

// RegisterBasicType adds T to the table of scalar types. Values whose exact
// type is T are rendered with fn; the result is written as a bare number when
// it is a valid JSON number and as a quoted string otherwise.
//
// Registration is safe for concurrent use but is meant to happen during
// program initialization.
func RegisterBasicType[T any](fn func(T) string) {
	basicTypes.Store(reflect.TypeFor[T](), func(v reflect.Value) string {
		return fn(v.Interface().(T))
	})
}

// appendScalar appends the literal for v if v is a scalar shape. The second
// result is false when v must be handled as a composite.
func appendScalar(dst []byte, v reflect.Value) ([]byte, bool) {
	if !v.IsValid() {
		return append(dst, nullLiteral...), true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return append(dst, nullLiteral...), true
		}
	}

	t := v.Type()
	switch t {
	case stringType:
		return AppendEscaped(dst, v.String(), true), true
	case boolType:
		return appendBool(dst, v.Bool()), true
	case timeType:
		if !v.CanInterface() {
			break
		}
		dst = append(dst, '"')
		dst = v.Interface().(time.Time).AppendFormat(dst, sortableTime)
		return append(dst, '"'), true
	}

	if fn, ok := basicTypes.Load(t); ok && v.CanInterface() {
		return appendNumberOrString(dst, fn(v)), true
	}
	if name, ok := metadataName(v); ok {
		return AppendEscaped(dst, name, true), true
	}
	if v.Kind() == reflect.Pointer {
		return dst, false
	}
	if text, ok := namedText(v); ok {
		return appendNumberOrString(dst, text), true
	}

	switch v.Kind() {
	case reflect.String:
		return AppendEscaped(dst, v.String(), true), true
	case reflect.Bool:
		return appendBool(dst, v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(dst, formatInt(v)...), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return append(dst, formatUint(v)...), true
	case reflect.Float32, reflect.Float64:
		return appendNumberOrString(dst, formatFloat(v)), true
	case reflect.Complex64, reflect.Complex128:
		return appendNumberOrString(dst, formatComplex(v)), true
	}
	return dst, false
}

// metadataName returns the display name of reflective metadata values.
func metadataName(v reflect.Value) (string, bool) {
	if !v.CanInterface() {
		return "", false
	}
	switch m := v.Interface().(type) {
	case reflect.Type:
		return m.String(), true
	case reflect.Method:
		return m.Name, true
	case reflect.StructField:
		return m.Name, true
	case reflect.Kind:
		return m.String(), true
	case protoreflect.Descriptor:
		return string(m.FullName()), true
	}
	return "", false
}

// namedText stringifies named types missing from the basic type table: text
// marshalers first, then Stringers whose underlying kind is basic.
func namedText(v reflect.Value) (string, bool) {
	t := v.Type()
	target := v
	if !t.Implements(textMarshalerType) && v.CanAddr() && reflect.PointerTo(t).Implements(textMarshalerType) {
		target = v.Addr()
	}
	if target.Type().Implements(textMarshalerType) && target.CanInterface() {
		text, err := target.Interface().(encoding.TextMarshaler).MarshalText()
		if err == nil {
			return string(text), true
		}
	}
	if isBasicKind(t.Kind()) && t.Implements(stringerType) && v.CanInterface() {
		return v.Interface().(fmt.Stringer).String(), true
	}
	return "", false
}

func appendNumberOrString(dst []byte, text string) []byte {
	if isDecimal(text) {
		return append(dst, text...)
	}
	return AppendEscaped(dst, text, true)
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, trueLiteral...)
	}
	return append(dst, falseLiteral...)
}

func formatInt(v reflect.Value) string {
	return strconv.FormatInt(v.Int(), 10)
}

func formatUint(v reflect.Value) string {
	return strconv.FormatUint(v.Uint(), 10)
}

// formatFloat uses the shortest representation that round-trips, switching
// to exponent notation for very small and very large magnitudes.
func formatFloat(v reflect.Value) string {
	bits := 64
	if v.Kind() == reflect.Float32 {
		bits = 32
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b := strconv.AppendFloat(nil, f, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return string(b)
}

func formatComplex(v reflect.Value) string {
	bits := 128
	if v.Kind() == reflect.Complex64 {
		bits = 64
	}
	return strconv.FormatComplex(v.Complex(), 'g', -1, bits)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func isBasicKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Bool || isNumericKind(k)
}
