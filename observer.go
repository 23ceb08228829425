package swanjson

import (
	"fmt"
	"reflect"
)

// MemberError describes a struct member whose value could not be read during
// object projection. The member is left out of the output.
type MemberError struct {
	Type   reflect.Type
	Member string
	Err    error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("swanjson: reading %s.%s: %v", e.Type, e.Member, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}

// Observer receives diagnostics the serializer recovers from locally.
type Observer interface {
	OnMemberError(err *MemberError)
}

// NoopObserver discards every event.
type NoopObserver struct{}

func (NoopObserver) OnMemberError(*MemberError) {}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(err *MemberError)

func (f ObserverFunc) OnMemberError(err *MemberError) {
	f(err)
}
