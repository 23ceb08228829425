package swanjson

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/nats-io/nuid"
)

// MaxDocumentSize bounds how much of a received document is buffered.
var MaxDocumentSize = int64(1024 * 1024 * 5) // 5 MB

// Client publishes serialized values to subjects and receives the documents
// other clients publish.
type Client struct {
	transport      Transport
	encoder        Encoder
	handledMu      sync.Mutex
	handled        map[string]bool
	handlerChansMu sync.RWMutex
	handlerChans   map[string]map[*Binding]chan *Document
}

// NewClient creates a client that serializes values with encoder and sends
// them over transport. A nil encoder means NewSerializer(Options{}).
func NewClient(transport Transport, encoder Encoder) *Client {
	if encoder == nil {
		encoder = NewSerializer(Options{})
	}
	return &Client{
		transport:    transport,
		encoder:      encoder,
		handled:      make(map[string]bool),
		handlerChans: make(map[string]map[*Binding]chan *Document),
	}
}

// Publish sends v to subject and returns the generated document ID.
// The value v can be any value (serialized), string, []byte, or io.Reader.
func (c *Client) Publish(subject string, v any) (string, error) {
	data, err := intoDataReader(c.encoder, v)
	if err != nil {
		return "", err
	}
	id := nuid.Next()
	if err := c.transport.Send(subject, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Bind subscribes to documents published on subject.
func (c *Client) Bind(subject string) *Binding {
	c.ensureHandled(subject)
	return newBinding(c, BindTypeNormal, subject)
}

// BindOnce subscribes to the next document published on subject only.
func (c *Client) BindOnce(subject string) *Binding {
	c.ensureHandled(subject)
	return newBinding(c, BindTypeOnce, subject)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) ensureHandled(subject string) {
	c.handledMu.Lock()
	defer c.handledMu.Unlock()
	if c.handled[subject] {
		return
	}
	c.handled[subject] = true
	c.transport.Handle(subject, func(actualSubject, documentID string, reader io.Reader) {
		c.handleDocument(subject, actualSubject, documentID, reader)
	})
}

func (c *Client) handleDocument(boundSubject, subject, documentID string, reader io.Reader) {
	c.handlerChansMu.RLock()
	bindings := make([]*Binding, 0, len(c.handlerChans[boundSubject]))
	for binding := range c.handlerChans[boundSubject] {
		bindings = append(bindings, binding)
	}
	c.handlerChansMu.RUnlock()
	if len(bindings) == 0 {
		return
	}

	data, err := io.ReadAll(io.LimitReader(reader, MaxDocumentSize))
	for _, binding := range bindings {
		binding.deliver(newDocument(subject, documentID, data, err))
	}
}

func intoDataReader(encoder Encoder, v any) (io.Reader, error) {
	var data io.Reader
	if r, ok := v.(io.Reader); ok {
		data = r
	} else {
		switch dv := v.(type) {
		case []byte:
			data = bytes.NewReader(dv)
		case string:
			data = strings.NewReader(dv)
		default:
			encodedData, err := encoder.Encode(v)
			if err != nil {
				return nil, err
			}
			data = bytes.NewReader(encodedData)
		}
	}
	return data, nil
}
