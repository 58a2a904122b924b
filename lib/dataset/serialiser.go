package dataset

import (
	"fmt"
	"reflect"

	"github.com/ValentinKolb/dIO/lib/codec"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/ValentinKolb/dIO/lib/wire"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("dataset")

// MarkerName frames a serialised data set
const MarkerName = "DataSet"

const (
	fieldName     = "dataSetName"
	fieldNDims    = "nDims"
	fieldLabels   = "dataLabels"
	fieldStyles   = "dataStyles"
	fieldMetaData = "metaData"
	fieldInfo     = "infoList"
	fieldWarnings = "warningList"
	fieldErrors   = "errorList"
)

var axisNames = []string{"x", "y", "z"}

func axisName(dim int) string {
	if dim < len(axisNames) {
		return axisNames[dim]
	}
	return fmt.Sprintf("dim%d", dim)
}

var (
	dataSetType       = reflect.TypeOf((*DataSet)(nil)).Elem()
	doubleDataSetType = reflect.TypeOf(DoubleDataSet{})
)

// Register adds the data set serialisers to r: one for DoubleDataSet members (value or
// pointer) and one for members declared as DataSet interface
func Register(r *codec.Registry) error {
	for _, class := range []reflect.Type{doubleDataSetType, dataSetType} {
		if err := r.AddClassDefinition(NewFieldSerialiser(class)); err != nil {
			return err
		}
	}
	return nil
}

// NewFieldSerialiser returns the serialiser for class, which is either DoubleDataSet or
// the DataSet interface
func NewFieldSerialiser(class reflect.Type) codec.FieldSerialiser {
	return codec.NewValueSerialiser(readValue, writeValue, class)
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

func writeValue(io wire.IoSerialiser, _ string, v reflect.Value) error {
	ds, err := asDataSet(v)
	if err != nil {
		return err
	}
	if ds == nil {
		return nil
	}
	return Write(io, ds)
}

// asDataSet returns the DataSet held by v (a DoubleDataSet, a pointer to one or a
// DataSet interface value)
func asDataSet(v reflect.Value) (DataSet, error) {
	switch {
	case v.Kind() == reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return v.Interface().(DataSet), nil
	case v.Type() == doubleDataSetType:
		if v.CanAddr() {
			return v.Addr().Interface().(*DoubleDataSet), nil
		}
		// not addressable: work on a copy
		p := reflect.New(doubleDataSetType)
		p.Elem().Set(v)
		return p.Interface().(*DoubleDataSet), nil
	}
	return nil, fmt.Errorf("%w: %v is not a data set", datatype.ErrUnsupportedType, v.Type())
}

// Write writes ds as a framed OTHER payload (start marker, fields, end marker)
func Write(io wire.IoSerialiser, ds DataSet) error {
	io.PutStartMarker(MarkerName)
	io.PutString(fieldName, ds.Name())
	io.PutInt32(fieldNDims, int32(ds.Dimension()))
	for dim := 0; dim < ds.Dimension(); dim++ {
		axis := axisName(dim)
		if err := io.PutFloat64Array(axis, ds.Values(dim)); err != nil {
			return err
		}
		if en := ds.ErrorsNegative(dim); en != nil {
			if err := io.PutFloat64Array("e"+axis+"n", en); err != nil {
				return err
			}
		}
		if ep := ds.ErrorsPositive(dim); ep != nil {
			if err := io.PutFloat64Array("e"+axis+"p", ep); err != nil {
				return err
			}
		}
	}
	mapFields := []struct {
		name   string
		values any
	}{
		{fieldLabels, ds.DataLabels()},
		{fieldStyles, ds.DataStyles()},
		{fieldMetaData, ds.MetaData()},
	}
	for _, m := range mapFields {
		v := reflect.ValueOf(m.values)
		if v.Len() == 0 {
			continue
		}
		if err := io.PutMap(m.name, v); err != nil {
			return err
		}
	}
	lists := []struct {
		name   string
		values []string
	}{
		{fieldInfo, ds.InfoList()},
		{fieldWarnings, ds.WarningList()},
		{fieldErrors, ds.ErrorList()},
	}
	for _, l := range lists {
		if len(l.values) == 0 {
			continue
		}
		if err := io.PutStringArray(l.name, l.values); err != nil {
			return err
		}
	}
	io.PutEndMarker(MarkerName)
	return nil
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

func readValue(io wire.IoSerialiser, dst reflect.Value) error {
	var ds *DoubleDataSet
	switch {
	case dst.Kind() == reflect.Interface:
		// fill an existing DoubleDataSet in place, otherwise allocate one
		if existing, ok := dst.Interface().(*DoubleDataSet); ok && existing != nil {
			ds = existing
		} else {
			ds = NewDoubleDataSet("", 0)
			dst.Set(reflect.ValueOf(ds))
		}
	case dst.Type() == doubleDataSetType:
		ds = dst.Addr().Interface().(*DoubleDataSet)
	default:
		return fmt.Errorf("%w: %v is not a data set", datatype.ErrUnsupportedType, dst.Type())
	}
	return Read(io, ds)
}

// Read reads a data set written by Write from the current position into ds
func Read(io wire.IoSerialiser, ds *DoubleDataSet) error {
	start, err := io.GetFieldHeader()
	if err != nil {
		return err
	}
	if start.DataType() != datatype.StartMarker {
		return fmt.Errorf("%w: data set starts with %s %q", wire.ErrMalformedStream, start.DataType(), start.FieldName())
	}

	var (
		name                 string
		x, y, eyn, eyp       []float64
		labels, styles       map[int]string
		meta                 map[string]string
		info, warnings, errs []string
	)
	for {
		fd, err := io.GetFieldHeader()
		if err != nil {
			return err
		}
		if fd.DataType() == datatype.EndMarker {
			break
		}

		switch fd.FieldName() {
		case fieldName:
			name = io.GetString()
		case fieldNDims:
			if n := io.GetInt32(); n != 2 {
				Logger.Debugf("data set %q has %d dimensions, only x and y are read", name, n)
			}
		// fresh storage, ds stays untouched until the stream is complete and consistent
		case "x":
			x = io.GetFloat64Array(nil)
		case "y":
			y = io.GetFloat64Array(nil)
		case "eyn":
			eyn = io.GetFloat64Array(nil)
		case "eyp":
			eyp = io.GetFloat64Array(nil)
		case fieldLabels:
			err = io.GetMap(reflect.ValueOf(&labels).Elem())
		case fieldStyles:
			err = io.GetMap(reflect.ValueOf(&styles).Elem())
		case fieldMetaData:
			err = io.GetMap(reflect.ValueOf(&meta).Elem())
		case fieldInfo:
			info = io.GetStringArray(nil)
		case fieldWarnings:
			warnings = io.GetStringArray(nil)
		case fieldErrors:
			errs = io.GetStringArray(nil)
		default:
			Logger.Debugf("data set field %q (%s) skipped", fd.FieldName(), fd.DataType())
		}
		if err == nil {
			err = io.Buffer().Err()
		}
		if err != nil {
			return fmt.Errorf("data set field %q: %w", fd.FieldName(), err)
		}
		if err := skipTo(io, fd); err != nil {
			return err
		}
	}

	if err := ds.Set(x, y, eyn, eyp, false); err != nil {
		return fmt.Errorf("%w: %v", wire.ErrMalformedStream, err)
	}
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.name = name
	ds.labels, ds.styles, ds.meta = orEmpty(labels), orEmpty(styles), orEmpty(meta)
	ds.info, ds.warnings, ds.errors = info, warnings, errs
	return nil
}

// skipTo moves to the end of fd, which skips unread or partially read payloads
func skipTo(io wire.IoSerialiser, fd *field.WireDataFieldDescription) error {
	if err := io.Buffer().SetPosition(fd.DataEndPosition()); err != nil {
		return fmt.Errorf("%w: data set field %q: %v", wire.ErrMalformedStream, fd.FieldName(), err)
	}
	return nil
}

func orEmpty[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
