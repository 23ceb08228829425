package swanjson

import (
	"io"
	"sync"
)

type mockEncoder struct {
	encodeFunc func(v any) ([]byte, error)
}

func (m *mockEncoder) Encode(v any) ([]byte, error) {
	if m.encodeFunc != nil {
		return m.encodeFunc(v)
	}
	return []byte("encoded"), nil
}

type mockTransport struct {
	mu         sync.Mutex
	handlers   map[string]func(subject, documentID string, reader io.Reader)
	sendFunc   func(subject, documentID string, reader io.Reader) error
	handleFunc func(subject string, handler func(subject, documentID string, reader io.Reader))
	closeFunc  func() error
}

func (m *mockTransport) Send(subject, documentID string, reader io.Reader) error {
	if m.sendFunc != nil {
		return m.sendFunc(subject, documentID, reader)
	}
	return nil
}

func (m *mockTransport) Handle(subject string, handler func(subject, documentID string, reader io.Reader)) {
	m.mu.Lock()
	if m.handlers == nil {
		m.handlers = make(map[string]func(subject, documentID string, reader io.Reader))
	}
	m.handlers[subject] = handler
	m.mu.Unlock()
	if m.handleFunc != nil {
		m.handleFunc(subject, handler)
	}
}

func (m *mockTransport) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

// deliver invokes the handler registered for subject, if any.
func (m *mockTransport) deliver(subject, documentID string, reader io.Reader) bool {
	m.mu.Lock()
	handler, ok := m.handlers[subject]
	m.mu.Unlock()
	if !ok {
		return false
	}
	handler(subject, documentID, reader)
	return true
}

func (m *mockTransport) handlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}
