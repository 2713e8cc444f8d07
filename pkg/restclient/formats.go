package restclient

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
)

// JSONFormat exchanges bodies as JSON.
type JSONFormat struct{}

func (JSONFormat) Serialize(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONFormat) Deserialize(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (JSONFormat) MIMEType() string { return "application/json" }

// GobFormat exchanges bodies in Go's native gob encoding. Both peers must
// agree on the concrete types involved; composite payloads beyond the
// builtin types need a gob.Register call on each side.
type GobFormat struct{}

func (GobFormat) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobFormat) Deserialize(data []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (GobFormat) MIMEType() string { return "application/x-gob" }
