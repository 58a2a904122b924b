package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// NewGOBSerializer creates a serializer using Go's gob format. It is the self-describing
// baseline dIO is compared against, see cmd/perf.
func NewGOBSerializer() ISerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements ISerializer with a fresh encoder per value, so every
// output carries its own type information like a dIO stream does
type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob: encoding %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
		return fmt.Errorf("gob: decoding into %T: %w", v, err)
	}
	return nil
}
