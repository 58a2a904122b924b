package serializer

import (
	"fmt"
	"reflect"

	"github.com/ValentinKolb/dIO/lib/codec"
)

// ISerializer is the interface for all value serializers
type ISerializer interface {
	// Serialize serializes v into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(v any) ([]byte, error)
	// Deserialize deserializes a byte array into v
	// v must be a non-nil pointer, otherwise codec.ErrInvalidTarget is returned
	// It returns an error if any
	Deserialize(b []byte, v any) error
}

// checkTarget rejects Deserialize targets the decoders cannot write to
func checkTarget(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: got %T", codec.ErrInvalidTarget, v)
	}
	return nil
}
