// Package nats provides a NATS transport implementation for swanjson.
// It uses a chunked streaming protocol to send documents of any size over
// NATS without loading them entirely into memory.
package nats

import (
	"io"
	"sync"
	"time"

	"github.com/RobertWHurst/swanjson"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
	"github.com/vmihailenco/msgpack/v5"
)

// SendTimeout is the maximum time to wait for a send acknowledgment.
const SendTimeout = 5 * time.Second

// StreamTimeout is the default maximum wait between two chunks of a document.
const StreamTimeout = 5 * time.Minute

// Transport implements swanjson.Transport using NATS as the message broker.
// A document is announced on its subject with a Send header naming the data
// subject; every handler subscribes to the data subject before acknowledging
// and the sender streams chunks once the first acknowledgment arrives.
type Transport struct {
	NatsConnection *nats.Conn

	// Prefix is the first subject token. Empty means DefaultPrefix.
	Prefix string

	// Queue, when set, makes handlers join a queue group so each document
	// is delivered to one member of the group only.
	Queue string

	// Compress zstd compresses documents on the wire.
	Compress bool

	// StreamTimeout bounds the wait for each chunk. Zero means StreamTimeout.
	StreamTimeout time.Duration

	SubscriptionErr error

	mu             sync.Mutex
	subscriptions  []*nats.Subscription
	ownsConnection bool
}

// Send represents the document metadata sent to establish a stream.
type Send struct {
	Subject     string `msgpack:"subject"`
	DocumentID  string `msgpack:"documentId"`
	DataSubject string `msgpack:"dataSubject"`
	Compressed  bool   `msgpack:"compressed,omitempty"`
}

// SendAck is the acknowledgment a handler returns once it listens on the
// data subject.
type SendAck struct {
	DataSubject string `msgpack:"dataSubject"`
}

// Chunk represents a piece of streamed data with sequencing information.
type Chunk struct {
	Index  int    `msgpack:"index"`
	Data   []byte `msgpack:"data,omitempty"`
	Error  string `msgpack:"error,omitempty"`
	IsEOF  bool   `msgpack:"isEof,omitempty"`
	Digest []byte `msgpack:"digest,omitempty"`
}

var _ swanjson.Transport = &Transport{}

// NewTransport creates a new NATS transport using the provided connection.
// The connection stays open when the transport is closed.
func NewTransport(natsConnection *nats.Conn) *Transport {
	return &Transport{
		NatsConnection: natsConnection,
	}
}

// Connect dials url and returns a transport that owns the connection.
func Connect(url string, options ...nats.Option) (*Transport, error) {
	natsConnection, err := nats.Connect(url, options...)
	if err != nil {
		return nil, err
	}
	t := NewTransport(natsConnection)
	t.ownsConnection = true
	return t, nil
}

// NkeyOption authenticates with the nkey user seed.
func NkeyOption(seed []byte) (nats.Option, error) {
	keyPair, err := nkeys.FromSeed(seed)
	if err != nil {
		return nil, err
	}
	publicKey, err := keyPair.PublicKey()
	if err != nil {
		return nil, err
	}
	return nats.Nkey(publicKey, keyPair.Sign), nil
}

func (t *Transport) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

func (t *Transport) streamTimeout() time.Duration {
	if t.StreamTimeout <= 0 {
		return StreamTimeout
	}
	return t.StreamTimeout
}

func (t *Transport) Send(subject, documentID string, reader io.Reader) error {
	if t.SubscriptionErr != nil {
		return t.SubscriptionErr
	}

	dataSubject := nats.NewInbox()
	sendBuf, err := msgpack.Marshal(&Send{
		Subject:     subject,
		DocumentID:  documentID,
		DataSubject: dataSubject,
		Compressed:  t.Compress,
	})
	if err != nil {
		return err
	}

	natsSubject := namespace(t.prefix(), subject)
	sendAckMsg, err := t.NatsConnection.Request(natsSubject, sendBuf, SendTimeout)
	if err != nil {
		return err
	}

	var sendAck SendAck
	if err := msgpack.Unmarshal(sendAckMsg.Data, &sendAck); err != nil {
		return err
	}

	if t.Compress {
		compressed := compressReader(reader)
		defer compressed.CloseWithError(errSendAborted)
		reader = compressed
	}
	return writeChunks(reader, func(data []byte) error {
		return t.NatsConnection.Publish(sendAck.DataSubject, data)
	})
}

func (t *Transport) Handle(subject string, handler func(subject, documentID string, reader io.Reader)) {
	natsSubject := namespace(t.prefix(), subject)
	onMsg := func(natsMsg *nats.Msg) {
		var send Send
		if err := msgpack.Unmarshal(natsMsg.Data, &send); err != nil {
			handler(send.Subject, send.DocumentID, &ErrReader{err: err})
			return
		}

		ackBuf, err := msgpack.Marshal(&SendAck{DataSubject: send.DataSubject})
		if err != nil {
			handler(send.Subject, send.DocumentID, &ErrReader{err: err})
			return
		}

		dataSubscription, err := t.NatsConnection.SubscribeSync(send.DataSubject)
		if err != nil {
			handler(send.Subject, send.DocumentID, &ErrReader{err: err})
			return
		}

		if err := natsMsg.Respond(ackBuf); err != nil {
			dataSubscription.Unsubscribe()
			handler(send.Subject, send.DocumentID, &ErrReader{err: err})
			return
		}

		pr, pw := io.Pipe()
		go func() {
			defer dataSubscription.Unsubscribe()
			readChunks(func(timeout time.Duration) ([]byte, error) {
				dataMsg, err := dataSubscription.NextMsg(timeout)
				if err != nil {
					return nil, err
				}
				return dataMsg.Data, nil
			}, t.streamTimeout(), pw)
		}()

		var reader io.Reader = pr
		if send.Compressed {
			reader = decompressReader(pr)
		}
		handler(send.Subject, send.DocumentID, reader)
	}

	var subscription *nats.Subscription
	var err error
	if t.Queue != "" {
		subscription, err = t.NatsConnection.QueueSubscribe(natsSubject, t.Queue, onMsg)
	} else {
		subscription, err = t.NatsConnection.Subscribe(natsSubject, onMsg)
	}
	if err != nil {
		t.SubscriptionErr = err
		return
	}

	t.mu.Lock()
	t.subscriptions = append(t.subscriptions, subscription)
	t.mu.Unlock()
}

// Close removes every subscription made by Handle and closes the connection
// when the transport was created by Connect.
func (t *Transport) Close() error {
	t.mu.Lock()
	subscriptions := t.subscriptions
	t.subscriptions = nil
	t.mu.Unlock()

	var err error
	for _, subscription := range subscriptions {
		if e := subscription.Unsubscribe(); e != nil {
			err = e
		}
	}
	if t.ownsConnection {
		t.NatsConnection.Close()
	}
	return err
}
