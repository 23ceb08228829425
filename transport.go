package swanjson

import "io"

// Transport defines the interface for underlying document delivery mechanisms.
// Implementations handle the actual sending and receiving of serialized documents.
type Transport interface {
	// Send delivers a document to every handler bound to subject.
	// The reader contains the document text and will be consumed by the transport.
	Send(subject, documentID string, reader io.Reader) error

	// Handle registers a handler for documents published on subject.
	// Subjects may contain the wildcards supported by the transport; the handler
	// receives the concrete subject the document was sent to.
	Handle(subject string, handler func(subject, documentID string, reader io.Reader))

	// Close cleans up resources and closes connections.
	Close() error
}
