package session

import (
	"encoding/json"
	"time"
)

// JSONCodec implements scs.Codec with JSON so stored payloads stay readable.
// Values round-trip as JSON types; store only strings, numbers and booleans.
type JSONCodec struct{}

type jsonPayload struct {
	Deadline time.Time      `json:"deadline"`
	Values   map[string]any `json:"values"`
}

// Encode implements scs.Codec.
func (JSONCodec) Encode(deadline time.Time, values map[string]any) ([]byte, error) {
	return json.Marshal(jsonPayload{Deadline: deadline, Values: values})
}

// Decode implements scs.Codec.
func (JSONCodec) Decode(b []byte) (time.Time, map[string]any, error) {
	var p jsonPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return time.Time{}, nil, err
	}
	if p.Values == nil {
		p.Values = make(map[string]any)
	}
	return p.Deadline, p.Values, nil
}
