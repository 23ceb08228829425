package swanjson

import "errors"

// ErrBindingClosed is returned by documents taken from an unbound binding.
var ErrBindingClosed = errors.New("binding closed")

// BindType specifies how long a binding keeps receiving documents.
type BindType int

const (
	// BindTypeNormal receives every document until unbound.
	BindTypeNormal BindType = iota
	// BindTypeOnce is like BindTypeNormal but will auto-unbind after one document.
	BindTypeOnce
)

// Binding represents a subscription to documents on a specific subject.
// Bindings provide two ways to consume documents: Next() for blocking retrieval
// and To() for handler-based processing.
type Binding struct {
	client      *Client
	bindType    BindType
	subject     string
	handlerChan chan *Document
	done        chan struct{}
}

func newBinding(client *Client, bindType BindType, subject string) *Binding {
	b := &Binding{
		client:      client,
		bindType:    bindType,
		subject:     subject,
		handlerChan: make(chan *Document, 100),
		done:        make(chan struct{}),
	}

	client.handlerChansMu.Lock()
	defer client.handlerChansMu.Unlock()
	if _, ok := client.handlerChans[subject]; !ok {
		client.handlerChans[subject] = make(map[*Binding]chan *Document)
	}
	client.handlerChans[subject][b] = b.handlerChan

	return b
}

// Subject returns the subject the binding was created for.
func (b *Binding) Subject() string {
	return b.subject
}

// Next blocks until the next document arrives and returns it.
// Once the binding has been unbound the returned document carries
// ErrBindingClosed.
func (b *Binding) Next() *Document {
	doc, ok := b.receive()
	if !ok {
		return newDocument(b.subject, "", nil, ErrBindingClosed)
	}
	if b.bindType == BindTypeOnce {
		b.Unbind()
	}
	return doc
}

// To spawns a goroutine that calls the handler for each document.
// The handler runs asynchronously and continues until the binding is unbound.
func (b *Binding) To(handler func(doc *Document)) *Binding {
	go func() {
		for {
			doc, ok := b.receive()
			if !ok {
				return
			}
			handler(doc)
			if b.bindType == BindTypeOnce {
				b.Unbind()
				return
			}
		}
	}()
	return b
}

// IsBound reports whether the binding still receives documents.
func (b *Binding) IsBound() bool {
	b.client.handlerChansMu.RLock()
	defer b.client.handlerChansMu.RUnlock()
	_, ok := b.client.handlerChans[b.subject][b]
	return ok
}

// Unbind unsubscribes from documents and frees resources.
// Any goroutines spawned by To() will exit after Unbind is called.
// Calling Unbind more than once is a no-op.
func (b *Binding) Unbind() {
	b.client.handlerChansMu.Lock()
	defer b.client.handlerChansMu.Unlock()
	bindings := b.client.handlerChans[b.subject]
	if _, ok := bindings[b]; !ok {
		return
	}
	delete(bindings, b)
	close(b.done)
}

// receive waits for the next document. It reports false once the binding
// is unbound, even if documents are still buffered.
func (b *Binding) receive() (*Document, bool) {
	select {
	case <-b.done:
		return nil, false
	default:
	}
	select {
	case doc := <-b.handlerChan:
		return doc, true
	case <-b.done:
		return nil, false
	}
}

// deliver queues doc unless the binding is unbound first.
func (b *Binding) deliver(doc *Document) {
	select {
	case b.handlerChan <- doc:
	case <-b.done:
	}
}
