package swanjson

import (
	"errors"
	"reflect"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vmihailenco/tagparser/v2"
)

var errNilEmbedded = errors.New("nil embedded pointer")

// Member is a named, readable member of a composite value.
type Member struct {
	// Name is the key used in the projected object.
	Name string

	// OmitEmpty drops the member when its value is the zero value.
	OmitEmpty bool

	// Read returns the member's current value on target.
	Read func(target reflect.Value) (any, error)
}

// Getter returns a Member whose value comes from fn, independent of the
// target. It is the building block for Projector implementations.
func Getter(name string, fn func() (any, error)) Member {
	return Member{
		Name: name,
		Read: func(reflect.Value) (any, error) { return fn() },
	}
}

// MemberProvider enumerates the serializable members of a type. The order
// must be stable for a given type and visibility flag.
type MemberProvider interface {
	Members(t reflect.Type, includeNonPublic bool) []Member
}

// Projector is implemented by values that enumerate their own members
// instead of relying on struct field reflection.
type Projector interface {
	SerializableMembers(includeNonPublic bool) []Member
}

var projectorType = reflect.TypeFor[Projector]()

// DefaultMemberCache is the MemberProvider used when Options.Members is nil.
var DefaultMemberCache = NewMemberCache()

type memberKey struct {
	typ       reflect.Type
	nonPublic bool
}

// MemberCache enumerates struct fields and memoizes the result per type and
// visibility flag. It is safe for concurrent use.
//
// Fields are listed in declaration order with embedded structs flattened into
// their parent. A `json:"name"` tag renames a field, `json:"-"` hides it and
// the omitempty option drops zero values.
type MemberCache struct {
	entries *xsync.MapOf[memberKey, []Member]
}

var _ MemberProvider = &MemberCache{}

// NewMemberCache creates an empty MemberCache.
func NewMemberCache() *MemberCache {
	return &MemberCache{entries: xsync.NewMapOf[memberKey, []Member]()}
}

func (c *MemberCache) Members(t reflect.Type, includeNonPublic bool) []Member {
	if t.Kind() != reflect.Struct {
		return nil
	}
	members, _ := c.entries.LoadOrCompute(memberKey{typ: t, nonPublic: includeNonPublic}, func() []Member {
		return structMembers(t, includeNonPublic)
	})
	return members
}

// Len returns the number of cached entries.
func (c *MemberCache) Len() int {
	return c.entries.Size()
}

type structField struct {
	name      string
	omitEmpty bool
	index     []int
	depth     int
}

func structMembers(t reflect.Type, includeNonPublic bool) []Member {
	var fields []structField
	collectFields(t, nil, includeNonPublic, map[reflect.Type]bool{}, &fields)

	// a shallower field shadows deeper promoted ones with the same name
	shallowest := make(map[string]int, len(fields))
	for _, f := range fields {
		if d, ok := shallowest[f.name]; !ok || f.depth < d {
			shallowest[f.name] = f.depth
		}
	}

	members := make([]Member, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.name] || f.depth != shallowest[f.name] {
			continue
		}
		seen[f.name] = true
		index := f.index
		members = append(members, Member{
			Name:      f.name,
			OmitEmpty: f.omitEmpty,
			Read: func(target reflect.Value) (any, error) {
				return readField(target, index)
			},
		})
	}
	return members
}

func collectFields(t reflect.Type, parent []int, includeNonPublic bool, visiting map[reflect.Type]bool, out *[]structField) {
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw := f.Tag.Get("json")
		if raw == "-" {
			continue
		}
		tag := tagparser.Parse(raw)

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		if f.Anonymous && tag.Name == "" {
			embedded := f.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && !visiting[embedded] {
				collectFields(embedded, index, includeNonPublic, visiting, out)
				continue
			}
		}
		if !f.IsExported() && !includeNonPublic {
			continue
		}

		name := f.Name
		if tag.Name != "" {
			name = tag.Name
		}
		*out = append(*out, structField{
			name:      name,
			omitEmpty: tag.HasOption("omitempty"),
			index:     index,
			depth:     len(parent),
		})
	}
}

// readField walks index from target, following embedded pointers. Unexported
// fields are read through their address, so target must be addressable for
// those.
func readField(target reflect.Value, index []int) (any, error) {
	v := target
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, errNilEmbedded
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	if v.CanInterface() {
		return v.Interface(), nil
	}
	if !v.CanAddr() {
		return nil, errors.New("unexported field on an unaddressable value")
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem().Interface(), nil
}
