// Package jsonutil wraps github.com/go-json-experiment/json with the options
// secgate needs for reading scanner output and writing summaries.
//
// Scanner output is third-party data: decoding tolerates duplicate object
// names (the last one wins) and invalid UTF-8 inside strings. Encoding is
// deterministic so that identical inputs yield byte-identical summaries.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var decodeOpts = json.JoinOptions(
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v, decodeOpts)
}

// Marshal returns the compact, deterministic JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true), jsontext.WithIndent(indent))
}

// Encode writes the indented encoding of v to w followed by a newline.
func Encode(w io.Writer, v any) error {
	data, err := MarshalIndent(v, "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid(decodeOpts)
}

// Kind returns the kind of the first token in data, skipping leading
// whitespace. Empty input yields the zero Kind.
func Kind(data []byte) jsontext.Kind {
	return jsontext.Value(data).Kind()
}
