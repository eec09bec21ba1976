// Package payload defines the opaque byte-encoded value type that crosses
// the boundary into the external data converter. The executor never
// interprets payloads; it only stores, copies and routes them.
package payload

// Payload is the serialized form of an activity/workflow input, result or
// marker value. Serialization itself (the "data converter") is out of
// scope; this package only names the type every command and event carries.
type Payload []byte

func (p Payload) IsEmpty() bool {
	return len(p) == 0
}
