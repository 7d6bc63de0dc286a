package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the backend response wrapper. Either field may be absent.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Comments json.RawMessage `json:"comments"`
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// unwrap returns the "data" member of body when present, otherwise body.
func unwrap(body []byte) json.RawMessage {
	var env envelope
	if json.Unmarshal(body, &env) == nil && present(env.Data) {
		return env.Data
	}
	return body
}

// decodePayload decodes the unwrapped payload of body into T. An empty body
// yields the zero value.
func decodePayload[T any](body []byte) (T, error) {
	var v T
	raw := unwrap(body)
	if !present(raw) {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// isArray reports whether raw is a JSON array.
func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
