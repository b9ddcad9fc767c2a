// Package json is a thin facade over sonic so callers keep the encoding/json
// call shape.
package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// RawMessage is a raw encoded JSON value, decoded lazily.
type RawMessage = stdjson.RawMessage

func Marshal(v interface{}) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// MarshalString returns the JSON encoding of v as a string.
func MarshalString(v interface{}) (string, error) {
	return api.MarshalToString(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return api.Unmarshal(data, v)
}

func UnmarshalString(data string, v interface{}) error {
	return api.UnmarshalFromString(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return api.Valid(data)
}
