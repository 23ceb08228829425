package swanjson

import "bytes"

// Document is a serialized value received from a Transport.
type Document struct {
	subject string
	id      string
	data    []byte
	reader  *bytes.Reader
	err     error
}

func newDocument(subject, id string, data []byte, err error) *Document {
	return &Document{
		subject: subject,
		id:      id,
		data:    data,
		reader:  bytes.NewReader(data),
		err:     err,
	}
}

// Subject returns the subject the document was published on.
func (d *Document) Subject() string {
	return d.subject
}

// ID returns the identifier assigned by the publisher.
func (d *Document) ID() string {
	return d.id
}

// Bytes returns the document text, or the error that interrupted receiving it.
func (d *Document) Bytes() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.data, nil
}

// Text returns the document text as a string.
func (d *Document) Text() (string, error) {
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Err returns the error that interrupted receiving the document, if any.
func (d *Document) Err() error {
	return d.err
}

func (d *Document) Read(p []byte) (n int, err error) {
	if d.err != nil {
		return 0, d.err
	}
	return d.reader.Read(p)
}
