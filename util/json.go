// Package util holds small helpers shared by the client and the fake backend.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func EncodeJSON(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.NewReader(data), nil
}

// DecodeJSON decodes a single JSON value from r into v.
func DecodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// WriteJSON encodes v to w with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
