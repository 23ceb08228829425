package swanjson

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"google.golang.org/protobuf/proto"
)

// ErrDepthExceeded is returned when a value graph nests deeper than MaxDepth.
var ErrDepthExceeded = errors.New("swanjson: max depth reached")

const indentWidth = 4

// slot is the position a value is written in, which decides what whitespace
// leads it when pretty printing.
type slot uint8

const (
	slotRoot slot = iota
	slotValue
	slotElement
)

type serializer struct {
	buf      []byte
	pretty   bool
	typeTag  string
	nonPub   bool
	members  MemberProvider
	observer Observer
	active   guard
	sep      string
}

var serializerPool = sync.Pool{
	New: func() any {
		return &serializer{active: guard{}}
	},
}

var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 1024)
		return &b
	},
}

func acquireSerializer(dst []byte, opts Options) *serializer {
	s := serializerPool.Get().(*serializer)
	s.buf = dst
	s.pretty = opts.Pretty
	s.typeTag = opts.TypeTag
	s.nonPub = opts.IncludeNonPublic
	s.members = opts.members()
	s.observer = opts.observer()
	s.sep = ","
	if s.pretty {
		s.sep = ",\n"
	}
	return s
}

func (s *serializer) release() {
	s.buf = nil
	s.members = nil
	s.observer = nil
	clear(s.active)
	serializerPool.Put(s)
}

// Append serializes v and appends the JSON text to dst. On failure dst is
// returned with its original length and nothing of the partial output.
func Append(dst []byte, v any, opts Options) ([]byte, error) {
	start := len(dst)
	s := acquireSerializer(dst, opts)
	defer s.release()

	if err := s.serialize(reflect.ValueOf(v), 0, slotRoot); err != nil {
		return s.buf[:start], err
	}
	return s.buf, nil
}

// Serialize returns the JSON text for v.
func Serialize(v any, opts Options) (string, error) {
	bp := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bp)

	out, err := Append((*bp)[:0], v, opts)
	*bp = out[:0]
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Marshal returns the compact JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return marshal(v, Options{})
}

// MarshalIndent returns the pretty printed JSON encoding of v.
func MarshalIndent(v any) ([]byte, error) {
	return marshal(v, Options{Pretty: true})
}

func marshal(v any, opts Options) ([]byte, error) {
	bp := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bp)

	out, err := Append((*bp)[:0], v, opts)
	*bp = out[:0]
	if err != nil {
		return nil, err
	}
	return bytes.Clone(out), nil
}

// serialize writes v at depth into the buffer.
func (s *serializer) serialize(v reflect.Value, depth int, at slot) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: depth %d is above %d", ErrDepthExceeded, depth, MaxDepth)
	}
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	mark := len(s.buf)
	s.lead(depth, at, false)
	if out, ok := appendScalar(s.buf, v); ok {
		s.buf = out
		return nil
	}
	s.buf = s.buf[:mark]

	if id, ok := identityOf(v); ok {
		if !s.active.enter(id) {
			s.writeCircular(id, depth, at)
			return nil
		}
		defer s.active.leave(id)
	}

	if v.Kind() == reflect.Pointer {
		if isProjected(v.Type()) {
			return s.project(v, depth, at)
		}
		return s.serialize(v.Elem(), depth, at)
	}
	return s.dispatch(v, depth, at)
}

// dispatch routes a composite to the structural serializer for its shape.
func (s *serializer) dispatch(v reflect.Value, depth int, at slot) error {
	switch {
	case v.Type() == orderedMapType:
		if v.Len() == 0 {
			s.literal("{}", depth, at)
			return nil
		}
		return s.writeObject(v.Len(), depth, at, func(i int) (string, reflect.Value) {
			entry := v.Index(i)
			return entry.Field(0).String(), entry.Field(1)
		})

	case v.Kind() == reflect.Map:
		if v.Len() == 0 {
			s.literal("{}", depth, at)
			return nil
		}
		keys := sortedKeys(v)
		return s.writeObject(len(keys), depth, at, func(i int) (string, reflect.Value) {
			return keys[i].name, v.MapIndex(keys[i].key)
		})

	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		if v.Len() == 0 {
			s.literal("[]", depth, at)
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return s.serialize(reflect.ValueOf(encodeBytes(v)), depth, at)
		}
		return s.writeArray(v.Len(), depth, at, v.Index)
	}
	return s.project(v, depth, at)
}

// project lowers an opaque object to an OrderedMap of its members and
// serializes that map at the same depth.
func (s *serializer) project(v reflect.Value, depth int, at slot) error {
	if v.CanInterface() {
		if m, ok := v.Interface().(proto.Message); ok {
			if plain, ok := wellKnown(m); ok {
				return s.serialize(reflect.ValueOf(plain), depth, at)
			}
		}
	}
	members, name, target := s.membersOf(v)
	if len(members) == 0 && s.typeTag == "" {
		s.literal("{}", depth, at)
		return nil
	}

	projection := make(OrderedMap, 0, len(members)+1)
	if s.typeTag != "" {
		projection = append(projection, KeyValue{Key: s.typeTag, Value: name})
	}
	for _, m := range members {
		value, err := readMember(m, target)
		if err != nil {
			s.observer.OnMemberError(&MemberError{Type: target.Type(), Member: m.Name, Err: err})
			continue
		}
		if m.OmitEmpty && isEmpty(value) {
			continue
		}
		projection = append(projection, KeyValue{Key: m.Name, Value: value})
	}
	return s.serialize(reflect.ValueOf(projection), depth, at)
}

// membersOf resolves the member source for v: its own Projector, protobuf
// reflection, or the configured MemberProvider for struct types.
func (s *serializer) membersOf(v reflect.Value) ([]Member, string, reflect.Value) {
	if v.CanInterface() {
		switch t := v.Interface().(type) {
		case Projector:
			return t.SerializableMembers(s.nonPub), typeName(v.Type()), v
		case proto.Message:
			return protoMembers(t), protoTypeName(t), v
		}
	}
	if v.Kind() == reflect.Struct && !v.CanAddr() {
		addressable := reflect.New(v.Type()).Elem()
		addressable.Set(v)
		v = addressable
	}
	return s.members.Members(v.Type(), s.nonPub), typeName(v.Type()), v
}

// writeObject renders n key/value entries as a JSON object.
func (s *serializer) writeObject(n, depth int, at slot, entry func(i int) (string, reflect.Value)) error {
	s.lead(depth, at, true)
	s.buf = append(s.buf, '{')
	s.newline()

	written := 0
	for i := 0; i < n; i++ {
		key, value := entry(i)
		s.indent(depth + 1)
		s.buf = AppendEscaped(s.buf, key, true)
		s.buf = append(s.buf, ':')
		if err := s.serialize(value, depth+1, slotValue); err != nil {
			return err
		}
		s.buf = append(s.buf, s.sep...)
		written++
	}

	s.trimSeparator()
	if written > 0 {
		s.indent(depth)
	}
	s.buf = append(s.buf, '}')
	return nil
}

// writeArray renders n elements as a JSON array.
func (s *serializer) writeArray(n, depth int, at slot, elem func(i int) reflect.Value) error {
	s.lead(depth, at, true)
	s.buf = append(s.buf, '[')
	s.newline()

	written := 0
	for i := 0; i < n; i++ {
		if err := s.serialize(elem(i), depth+1, slotElement); err != nil {
			return err
		}
		s.buf = append(s.buf, s.sep...)
		written++
	}

	s.trimSeparator()
	if written > 0 {
		s.indent(depth)
	}
	s.buf = append(s.buf, ']')
	return nil
}

func (s *serializer) writeCircular(id identity, depth int, at slot) {
	s.lead(depth, at, true)
	if s.pretty {
		s.buf = append(s.buf, "{ "...)
	} else {
		s.buf = append(s.buf, '{')
	}
	s.buf = AppendEscaped(s.buf, circularKey, true)
	s.buf = append(s.buf, ':')
	if s.pretty {
		s.buf = append(s.buf, ' ')
	}
	s.buf = AppendEscaped(s.buf, id.String(), true)
	if s.pretty {
		s.buf = append(s.buf, " }"...)
	} else {
		s.buf = append(s.buf, '}')
	}
}

// literal writes an empty object or array, which never spans lines.
func (s *serializer) literal(text string, depth int, at slot) {
	s.lead(depth, at, false)
	s.buf = append(s.buf, text...)
}

// lead writes the whitespace before a value. block is set for values that
// open a non-empty object or array; inside an object those start on their
// own line, everything else follows the colon after a space. Array elements
// are always indented to their depth.
func (s *serializer) lead(depth int, at slot, block bool) {
	if !s.pretty {
		return
	}
	switch at {
	case slotValue:
		if block {
			s.buf = append(s.buf, '\n')
			s.indent(depth)
		} else {
			s.buf = append(s.buf, ' ')
		}
	case slotElement:
		s.indent(depth)
	}
}

func (s *serializer) indent(depth int) {
	if !s.pretty || depth <= 0 {
		return
	}
	s.buf = append(s.buf, indentation(depth)...)
}

func (s *serializer) newline() {
	if s.pretty {
		s.buf = append(s.buf, '\n')
	}
}

// trimSeparator removes the comma of the separator that follows the last
// entry. Only the fixed-width tail is compared.
func (s *serializer) trimSeparator() {
	n := len(s.buf) - len(s.sep)
	if n < 0 || string(s.buf[n:]) != s.sep {
		return
	}
	s.buf = append(s.buf[:n], s.sep[1:]...)
}

var indents = func() [MaxDepth + 2]string {
	var out [MaxDepth + 2]string
	for i := range out {
		out[i] = strings.Repeat(" ", i*indentWidth)
	}
	return out
}()

func indentation(depth int) string {
	if depth < len(indents) {
		return indents[depth]
	}
	return strings.Repeat(" ", depth*indentWidth)
}

type mapKey struct {
	name string
	key  reflect.Value
}

// sortedKeys stringifies the keys of a Go map and orders them, since Go map
// iteration order is random.
func sortedKeys(v reflect.Value) []mapKey {
	keys := make([]mapKey, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		keys = append(keys, mapKey{name: keyString(k), key: k})
	}
	slices.SortFunc(keys, func(a, b mapKey) int {
		return strings.Compare(a.name, b.name)
	})
	return keys
}

func keyString(k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	if fn, ok := basicTypes.Load(k.Type()); ok && k.CanInterface() {
		return fn(k)
	}
	if text, ok := namedText(k); ok {
		return text
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func encodeBytes(v reflect.Value) string {
	if v.Kind() == reflect.Slice {
		return base64.StdEncoding.EncodeToString(v.Bytes())
	}
	// the element type may be a named uint8, which reflect.Copy rejects
	b := make([]byte, v.Len())
	for i := range b {
		b[i] = byte(v.Index(i).Uint())
	}
	return base64.StdEncoding.EncodeToString(b)
}

func readMember(m Member, target reflect.Value) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Read(target)
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	return reflect.ValueOf(value).IsZero()
}

// isProjected reports whether a pointer type is handled by projection
// directly rather than by following the pointer.
func isProjected(t reflect.Type) bool {
	return t.Implements(projectorType) || t.Implements(protoMessageType)
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
