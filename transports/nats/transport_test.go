package nats

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nkeys"
)

func TestTransportDefaults(t *testing.T) {
	transport := NewTransport(nil)

	if transport.prefix() != DefaultPrefix {
		t.Errorf("Expected prefix %q, got %q", DefaultPrefix, transport.prefix())
	}
	if transport.streamTimeout() != StreamTimeout {
		t.Errorf("Expected stream timeout %v, got %v", StreamTimeout, transport.streamTimeout())
	}

	transport.Prefix = "docs"
	transport.StreamTimeout = time.Second
	if transport.prefix() != "docs" {
		t.Errorf("Expected prefix docs, got %q", transport.prefix())
	}
	if transport.streamTimeout() != time.Second {
		t.Errorf("Expected stream timeout 1s, got %v", transport.streamTimeout())
	}
}

func TestTransportSendSubscriptionErr(t *testing.T) {
	subscriptionErr := errors.New("subscribe failed")
	transport := &Transport{SubscriptionErr: subscriptionErr}

	err := transport.Send("orders", "doc-1", strings.NewReader("{}"))
	if !errors.Is(err, subscriptionErr) {
		t.Errorf("Expected subscription error, got %v", err)
	}
}

func TestTransportCloseWithoutSubscriptions(t *testing.T) {
	transport := NewTransport(nil)
	if err := transport.Close(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestNkeyOption(t *testing.T) {
	keyPair, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("Failed to create user key: %v", err)
	}
	seed, err := keyPair.Seed()
	if err != nil {
		t.Fatalf("Failed to read seed: %v", err)
	}

	option, err := NkeyOption(seed)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if option == nil {
		t.Error("Expected an option")
	}
}

func TestNkeyOptionInvalidSeed(t *testing.T) {
	if _, err := NkeyOption([]byte("not a seed")); err == nil {
		t.Error("Expected error for invalid seed")
	}
}
