package codec

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSONv2 is a JSON codec backed by github.com/go-json-experiment/json.
// Unknown fields are rejected on decode.
type JSONv2 struct{}

// Marshal encodes the value to indented JSON.
func (JSONv2) Marshal(v any) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent("  "))
}

// Unmarshal decodes the JSON data into v.
func (JSONv2) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v, json.RejectUnknownMembers(true))
}

// Name returns the unique name of the codec ("json-v2").
func (JSONv2) Name() string { return "json-v2" }
