// Package swanjson serializes arbitrary Go value graphs to JSON text without
// a schema.
//
// Values are classified into a closed set of shapes: scalars (null, bools,
// strings, numbers, times and reflective metadata), maps, sequences, raw
// bytes (written as base64 strings) and opaque objects. Objects are
// projected onto an ordered map of their members, enumerated either by the
// value itself (Projector), by protobuf reflection, or by a MemberProvider
// that reads struct fields.
//
// Cycles are detected by reference identity along the active path and
// written as {"$circref":"<id>"}; shared but acyclic references are written
// in full each time. Nesting deeper than MaxDepth fails the whole call with
// ErrDepthExceeded.
//
//	out, err := swanjson.Serialize(v, swanjson.Options{Pretty: true, TypeTag: "$type"})
//
// The package also carries a small document client (Client, Binding,
// Document) that publishes serialized values over a Transport, such as the
// NATS transport in transports/nats.
package swanjson
