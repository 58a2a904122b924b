package codec

import (
	"fmt"
	"reflect"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/ValentinKolb/dIO/lib/wire"
	"github.com/VictoriaMetrics/metrics"
)

var (
	serialiseTotal        = metrics.NewCounter("dio_serialise_total")
	serialiseErrorsTotal  = metrics.NewCounter("dio_serialise_errors_total")
	deserialiseTotal      = metrics.NewCounter("dio_deserialise_total")
	deserialiseErrorTotal = metrics.NewCounter("dio_deserialise_errors_total")
	serialisedBytes       = metrics.NewHistogram("dio_serialised_bytes")
)

// ClassSerialiser serialises Go values into an IoBuffer and back. It owns its
// IoSerialiser and is not safe for concurrent use.
type ClassSerialiser struct {
	io       *wire.BinarySerialiser
	registry *Registry
}

// NewClassSerialiser creates a ClassSerialiser on top of buf using the DefaultRegistry
func NewClassSerialiser(buf buffer.IoBuffer) *ClassSerialiser {
	return &ClassSerialiser{
		io:       wire.NewBinarySerialiser(buf),
		registry: DefaultRegistry(),
	}
}

// UseRegistry replaces the registry serialisers are resolved with
func (c *ClassSerialiser) UseRegistry(r *Registry) { c.registry = r }

func (c *ClassSerialiser) Registry() *Registry { return c.registry }

// IoSerialiser returns the protocol layer, e.g. for manual framing
func (c *ClassSerialiser) IoSerialiser() wire.IoSerialiser { return c.io }

func (c *ClassSerialiser) Buffer() buffer.IoBuffer { return c.io.Buffer() }

func (c *ClassSerialiser) SetBuffer(buf buffer.IoBuffer) { c.io.SetBuffer(buf) }

// --------------------------------------------------------------------------
// Serialisation
// --------------------------------------------------------------------------

// Serialise resets the buffer, serialises obj and returns a copy of the written bytes
func (c *ClassSerialiser) Serialise(obj any) ([]byte, error) {
	buf := c.io.Buffer()
	buf.Reset()
	if err := c.SerialiseObject(obj); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Position())
	copy(out, buf.Elements())
	return out, nil
}

// SerialiseObject writes obj at the current buffer position. A nil object is written as
// header info immediately followed by the root end marker.
func (c *ClassSerialiser) SerialiseObject(obj any) error {
	start := c.io.Buffer().Position()
	err := c.serialiseObject(obj)
	serialiseTotal.Inc()
	if err != nil {
		serialiseErrorsTotal.Inc()
		return err
	}
	serialisedBytes.Update(float64(c.io.Buffer().Position() - start))
	return nil
}

func (c *ClassSerialiser) serialiseObject(obj any) error {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		c.io.PutHeaderInfo("")
		c.io.PutEndMarker(wire.RootEndName)
		return nil
	}
	classField := c.registry.ClassDescription(v.Type())
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			c.io.PutHeaderInfo(classField.FieldName())
			c.io.PutEndMarker(wire.RootEndName)
			return nil
		}
		v = v.Elem()
	}

	if fs := classField.FieldSerialiser(); fs != nil {
		c.io.PutHeaderInfo(classField.FieldName())
		if err := c.writeField(fs, v, classField); err != nil {
			return err
		}
		c.io.PutEndMarker(wire.RootEndName)
		return nil
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: no field serialiser for %v", datatype.ErrUnsupportedType, v.Type())
	}
	c.io.PutHeaderInfo(classField.FieldName())
	if err := c.serialise(v, classField, 0); err != nil {
		return err
	}
	c.io.PutEndMarker(wire.RootEndName)
	return nil
}

// writeField invokes the serialiser of field, payloads of OTHER types get an envelope
func (c *ClassSerialiser) writeField(fs FieldSerialiser, obj reflect.Value, classField *ClassFieldDescription) error {
	var envelope *field.WireDataFieldDescription
	if classField.DataType() == datatype.Other {
		envelope = c.io.PutFieldHeader(classField.FieldName(), datatype.Other)
	}
	if err := fs.WriteField(c.io, obj, classField); err != nil {
		return fmt.Errorf("field %q: %w", classField.FieldName(), err)
	}
	if envelope != nil {
		c.io.UpdateDataEndMarker(envelope)
	}
	return nil
}

// serialise writes the fields of the struct value obj described by classField
func (c *ClassSerialiser) serialise(obj reflect.Value, classField *ClassFieldDescription, depth int) error {
	for _, child := range classField.Children() {
		cf := child.(*ClassFieldDescription)
		if cf.IsNil(obj) {
			continue
		}
		if fs := cf.FieldSerialiser(); fs != nil {
			if err := c.writeField(fs, obj, cf); err != nil {
				return err
			}
			continue
		}
		if cf.Type().Kind() != reflect.Struct {
			Logger.Debugf("no field serialiser for %s, skipped", cf)
			continue
		}
		c.io.PutStartMarker(cf.FieldName())
		if err := c.serialise(cf.Get(obj), cf, depth+1); err != nil {
			return err
		}
		c.io.PutEndMarker(cf.FieldName())
	}
	return nil
}

// --------------------------------------------------------------------------
// Deserialisation
// --------------------------------------------------------------------------

// DeserialiseObject reads the stream at the current buffer position into obj, which must
// be a non-nil pointer. Stream fields unknown to the target are skipped, fields missing
// from the stream keep their value. On success obj is returned and the buffer is
// positioned after the stream.
func (c *ClassSerialiser) DeserialiseObject(obj any) (any, error) {
	result, err := c.deserialiseObject(obj)
	deserialiseTotal.Inc()
	if err != nil {
		deserialiseErrorTotal.Inc()
	}
	return result, err
}

func (c *ClassSerialiser) deserialiseObject(obj any) (any, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidTarget, obj)
	}
	target := v.Elem()
	classField := c.registry.ClassDescription(target.Type())

	root, err := c.io.ParseIoStream(true)
	if err != nil {
		return nil, err
	}
	end := c.io.Buffer().Position()
	hint := root.Children()[0]

	if fs := classField.FieldSerialiser(); fs != nil {
		if len(hint.Children()) > 0 {
			if err := c.readRoot(fs, target, hint.Children()[0], classField); err != nil {
				return nil, err
			}
		}
	} else if target.Kind() == reflect.Struct {
		if err := c.deserialise(target, hint, classField, 0); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("%w: no field serialiser for %v", datatype.ErrUnsupportedType, target.Type())
	}

	if err := c.io.Buffer().SetPosition(end); err != nil {
		return nil, err
	}
	return obj, nil
}

// readRoot reads a value written by a class level serialiser: OTHER payloads are read in
// place, everything else through ReturnObject
func (c *ClassSerialiser) readRoot(fs FieldSerialiser, target reflect.Value, payload field.FieldDescription, classField *ClassFieldDescription) error {
	if err := c.io.Buffer().SetPosition(payload.DataStartPosition()); err != nil {
		return fmt.Errorf("%w: %v", wire.ErrMalformedStream, err)
	}
	if payload.DataType() == datatype.Other {
		return fs.ReadField(c.io, target, classField)
	}
	value, err := fs.ReturnObject(c.io, target, classField)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil
	}
	if rv.Type() != target.Type() {
		if !rv.Type().ConvertibleTo(target.Type()) {
			return fmt.Errorf("%w: cannot store %v in %v", datatype.ErrUnsupportedType, rv.Type(), target.Type())
		}
		rv = rv.Convert(target.Type())
	}
	target.Set(rv)
	return nil
}

// deserialise matches the parsed children of fieldRoot against the fields of the struct
// value obj described by classField. Unnamed nested regions are framing and are
// descended into.
func (c *ClassSerialiser) deserialise(obj reflect.Value, fieldRoot field.FieldDescription, classField *ClassFieldDescription, depth int) error {
	for _, child := range fieldRoot.Children() {
		sub := classField.FindChildField(child.FieldNameHashCode(), child.FieldName())
		if sub == nil {
			if child.FieldName() == "" && child.DataType() == datatype.StartMarker {
				if err := c.deserialise(obj, child, classField, depth); err != nil {
					return err
				}
				continue
			}
			Logger.Debugf("%s: no field %q (%s), skipped", classField.FieldName(), child.FieldName(), child.DataType())
			continue
		}
		if err := c.deserialiseField(obj, child, sub.(*ClassFieldDescription), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// deserialiseField reads one parsed field into the member of obj described by classField
func (c *ClassSerialiser) deserialiseField(obj reflect.Value, fd field.FieldDescription, classField *ClassFieldDescription, depth int) error {
	if classField.IsFinal() && classField.Type().Kind() != reflect.Interface {
		Logger.Warningf("field %q is final, value from stream ignored", classField.FieldName())
		return nil
	}

	expected := classField.DataType()
	if (expected.IsArray() || expected.IsScalar()) && fd.DataType() != expected {
		Logger.Debugf("field %q is %s in the stream but %s in %v, skipped", fd.FieldName(), fd.DataType(), expected, classField.Type())
		return nil
	}

	if fs := classField.FieldSerialiser(); fs != nil {
		if err := c.io.Buffer().SetPosition(fd.DataStartPosition()); err != nil {
			return fmt.Errorf("%w: field %q: %v", wire.ErrMalformedStream, fd.FieldName(), err)
		}
		if err := fs.ReadField(c.io, obj, classField); err != nil {
			return fmt.Errorf("field %q: %w", fd.FieldName(), err)
		}
		return nil
	}

	if classField.Type().Kind() != reflect.Struct || fd.DataType() != datatype.StartMarker {
		Logger.Debugf("field %q (%s) cannot be read into %v, skipped", fd.FieldName(), fd.DataType(), classField.Type())
		return nil
	}
	member, err := classField.AllocateMemberClassField(obj)
	if err != nil {
		return err
	}
	return c.deserialise(member, fd, classField, depth)
}
