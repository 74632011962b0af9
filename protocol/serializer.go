package protocol

import "encoding/json"

// Serializer defines the contract for serializing and deserializing wire values.
// This allows a different encoding to be plugged in without touching the book.
type Serializer interface {
	// Marshal serializes a Go struct (e.g. BookView) into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a Go struct.
	// v must be a pointer to the target struct.
	Unmarshal(data []byte, v any) error
}

// DefaultJSONSerializer is the line protocol's encoding.
type DefaultJSONSerializer struct{}

func (DefaultJSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (DefaultJSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
