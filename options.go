package swanjson

// MaxDepth is the deepest nesting level the serializer descends to before
// giving up with ErrDepthExceeded.
const MaxDepth = 20

// Options controls a single serialization call.
type Options struct {
	// Pretty enables newlines and four-space indentation.
	Pretty bool

	// TypeTag, when set, is the key under which the Go type name is written
	// as the first entry of every object projected from a struct.
	TypeTag string

	// IncludeNonPublic asks the member provider for unexported fields too.
	IncludeNonPublic bool

	// Members enumerates struct members. Nil means DefaultMemberCache.
	Members MemberProvider

	// Observer receives member read failures, which are otherwise dropped.
	// Nil means NoopObserver.
	Observer Observer
}

func (o Options) members() MemberProvider {
	if o.Members == nil {
		return DefaultMemberCache
	}
	return o.Members
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return NoopObserver{}
	}
	return o.Observer
}
