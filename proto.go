package swanjson

import (
	"errors"
	"reflect"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var protoMessageType = reflect.TypeFor[proto.Message]()

var errNotProtoMessage = errors.New("target is not a proto message")

// protoMembers lists the fields of a protobuf message in declaration order,
// keyed by their JSON names. Members of a oneof are listed only when set on m.
func protoMembers(m proto.Message) []Member {
	r := m.ProtoReflect()
	fields := r.Descriptor().Fields()
	members := make([]Member, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if fd.ContainingOneof() != nil && !r.Has(fd) {
			continue
		}
		members = append(members, Member{
			Name: fd.JSONName(),
			Read: func(target reflect.Value) (any, error) {
				msg, ok := target.Interface().(proto.Message)
				if !ok {
					return nil, errNotProtoMessage
				}
				return protoFieldValue(fd, msg.ProtoReflect().Get(fd)), nil
			},
		})
	}
	return members
}

func protoTypeName(m proto.Message) string {
	return string(m.ProtoReflect().Descriptor().FullName())
}

func protoFieldValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		list := v.List()
		out := make([]any, list.Len())
		for i := range out {
			out[i] = protoSingular(fd, list.Get(i))
		}
		return out
	case fd.IsMap():
		entries := make(OrderedMap, 0, v.Map().Len())
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			entries = append(entries, KeyValue{Key: k.String(), Value: protoSingular(fd.MapValue(), mv)})
			return true
		})
		slices.SortFunc(entries, func(a, b KeyValue) int {
			switch {
			case a.Key < b.Key:
				return -1
			case a.Key > b.Key:
				return 1
			}
			return 0
		})
		return entries
	}
	return protoSingular(fd, v)
}

func protoSingular(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		n := v.Enum()
		if ev := fd.Enum().Values().ByNumber(n); ev != nil {
			return string(ev.Name())
		}
		return int32(n)
	case protoreflect.MessageKind, protoreflect.GroupKind:
		if !v.Message().IsValid() {
			return nil
		}
		m := v.Message().Interface()
		if plain, ok := wellKnown(m); ok {
			return plain
		}
		return m
	}
	return v.Interface()
}

// wellKnown unwraps the well known types into their natural Go values.
func wellKnown(m proto.Message) (any, bool) {
	switch t := m.(type) {
	case *timestamppb.Timestamp:
		return t.AsTime(), true
	case *durationpb.Duration:
		return t.AsDuration(), true
	case *structpb.Struct:
		return t.AsMap(), true
	case *structpb.Value:
		return t.AsInterface(), true
	case *structpb.ListValue:
		return t.AsSlice(), true
	}
	return nil, false
}
