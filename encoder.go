package swanjson

// Encoder defines the interface for value serialization.
// Serializer is the implementation backed by this package's engine.
type Encoder interface {
	// Encode serializes v into bytes.
	Encode(v any) ([]byte, error)
}

// Decoder defines the interface for turning a foreign document into a value
// graph the serializer can walk. Implementations live under formats/.
type Decoder interface {
	// Decode parses data into maps, slices and scalars.
	Decode(data []byte) (any, error)
}

// Serializer implements Encoder with a fixed set of Options.
type Serializer struct {
	opts Options
}

var _ Encoder = &Serializer{}

// NewSerializer creates a Serializer bound to opts.
func NewSerializer(opts Options) *Serializer {
	return &Serializer{opts: opts}
}

// Encode serializes v to JSON bytes.
func (s *Serializer) Encode(v any) ([]byte, error) {
	return Append(nil, v, s.opts)
}

// Serialize serializes v to a JSON string.
func (s *Serializer) Serialize(v any) (string, error) {
	return Serialize(v, s.opts)
}

// Options returns the options the serializer was created with.
func (s *Serializer) Options() Options {
	return s.opts
}
