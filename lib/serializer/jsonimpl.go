package serializer

import (
	"encoding/json"
	"fmt"
)

// NewJSONSerializer creates a serializer using JSON encoding, the textual baseline of cmd/perf
func NewJSONSerializer() ISerializer {
	return &jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json: encoding %T: %w", v, err)
	}
	return data, nil
}

func (j jsonSerializerImpl) Deserialize(b []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("json: decoding into %T: %w", v, err)
	}
	return nil
}
