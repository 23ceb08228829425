package swanjson

import "reflect"

// KeyValue is a single entry of an OrderedMap.
type KeyValue struct {
	Key   string
	Value any
}

// OrderedMap is a map shape that serializes its entries in slice order.
// Object projection produces one, and so do the order preserving decoders
// under formats/.
type OrderedMap []KeyValue

// Get returns the value of the first entry named key.
func (m OrderedMap) Get(key string) (any, bool) {
	for _, kv := range m {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Keys returns the entry keys in order.
func (m OrderedMap) Keys() []string {
	keys := make([]string, len(m))
	for i, kv := range m {
		keys[i] = kv.Key
	}
	return keys
}

var orderedMapType = reflect.TypeFor[OrderedMap]()
