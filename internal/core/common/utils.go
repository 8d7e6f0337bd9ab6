package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeJSON reads one JSON document from r into a T. Unknown fields are
// kept out of T silently; trailing data is an error.
func DecodeJSON[T any](r io.Reader) (T, error) {
	var result T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dec.More() {
		return result, fmt.Errorf("failed to decode JSON: unexpected data after document")
	}
	return result, nil
}

// LoadJSON decodes the JSON file at path into a T.
func LoadJSON[T any](path string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := DecodeJSON[T](f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// WriteJSON encodes v to w, indented when indent is set.
func WriteJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
