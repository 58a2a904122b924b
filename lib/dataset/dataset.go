package dataset

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// DataSet is a read only view on numeric data with optional errors, point labels and
// styles and free form meta data
type DataSet interface {
	Name() string
	Dimension() int
	DataCount() int
	// Values returns the coordinates of dimension dim
	Values(dim int) []float64
	Get(dim, index int) float64
	// ErrorsNegative and ErrorsPositive return nil for dimensions without errors
	ErrorsNegative(dim int) []float64
	ErrorsPositive(dim int) []float64
	DataLabel(index int) string
	Style(index int) string
	DataLabels() map[int]string
	DataStyles() map[int]string
	MetaData() map[string]string
	InfoList() []string
	WarningList() []string
	ErrorList() []string
}

// DoubleDataSet is a two dimensional DataSet with asymmetric y errors. All methods are
// safe for concurrent use.
type DoubleDataSet struct {
	lock sync.RWMutex

	name     string
	x, y     []float64
	eyn, eyp []float64
	labels   map[int]string
	styles   map[int]string
	meta     map[string]string
	info     []string
	warnings []string
	errors   []string
}

// NewDoubleDataSet creates an empty data set
func NewDoubleDataSet(name string, initialCapacity int) *DoubleDataSet {
	return &DoubleDataSet{
		name:   name,
		x:      make([]float64, 0, initialCapacity),
		y:      make([]float64, 0, initialCapacity),
		eyn:    make([]float64, 0, initialCapacity),
		eyp:    make([]float64, 0, initialCapacity),
		labels: map[int]string{},
		styles: map[int]string{},
		meta:   map[string]string{},
	}
}

func (d *DoubleDataSet) Name() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.name
}

func (d *DoubleDataSet) SetName(name string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.name = name
}

func (d *DoubleDataSet) Dimension() int { return 2 }

func (d *DoubleDataSet) DataCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.x)
}

func (d *DoubleDataSet) Values(dim int) []float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	switch dim {
	case 0:
		return d.x
	case 1:
		return d.y
	}
	return nil
}

func (d *DoubleDataSet) Get(dim, index int) float64 {
	values := d.Values(dim)
	if index < 0 || index >= len(values) {
		return 0
	}
	return values[index]
}

func (d *DoubleDataSet) ErrorsNegative(dim int) []float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if dim == 1 {
		return d.eyn
	}
	return nil
}

func (d *DoubleDataSet) ErrorsPositive(dim int) []float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if dim == 1 {
		return d.eyp
	}
	return nil
}

// Add appends a point with symmetric y error
func (d *DoubleDataSet) Add(x, y, ey float64) *DoubleDataSet {
	return d.AddAsymmetric(x, y, ey, ey)
}

// AddAsymmetric appends a point with separate negative and positive y errors
func (d *DoubleDataSet) AddAsymmetric(x, y, eyn, eyp float64) *DoubleDataSet {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.x = append(d.x, x)
	d.y = append(d.y, y)
	d.eyn = append(d.eyn, eyn)
	d.eyp = append(d.eyp, eyp)
	return d
}

// Set replaces all points, missing errors are zero. The slices are copied if copyValues is set.
func (d *DoubleDataSet) Set(x, y, eyn, eyp []float64, copyValues bool) error {
	if len(x) != len(y) {
		return fmt.Errorf("x has %d values, y has %d", len(x), len(y))
	}
	fit := func(e []float64) []float64 {
		if len(e) == len(x) {
			if copyValues {
				return slices.Clone(e)
			}
			return e
		}
		out := make([]float64, len(x))
		copy(out, e)
		return out
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if copyValues {
		x, y = slices.Clone(x), slices.Clone(y)
	}
	d.x, d.y = x, y
	d.eyn, d.eyp = fit(eyn), fit(eyp)
	return nil
}

func (d *DoubleDataSet) DataLabel(index int) string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.labels[index]
}

func (d *DoubleDataSet) AddDataLabel(index int, label string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.labels == nil {
		d.labels = map[int]string{}
	}
	d.labels[index] = label
}

func (d *DoubleDataSet) Style(index int) string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.styles[index]
}

func (d *DoubleDataSet) AddDataStyle(index int, style string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.styles == nil {
		d.styles = map[int]string{}
	}
	d.styles[index] = style
}

func (d *DoubleDataSet) DataLabels() map[int]string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return maps.Clone(d.labels)
}

func (d *DoubleDataSet) DataStyles() map[int]string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return maps.Clone(d.styles)
}

func (d *DoubleDataSet) MetaData() map[string]string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return maps.Clone(d.meta)
}

func (d *DoubleDataSet) PutMetaData(key, value string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.meta == nil {
		d.meta = map[string]string{}
	}
	d.meta[key] = value
}

func (d *DoubleDataSet) InfoList() []string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.info
}

func (d *DoubleDataSet) WarningList() []string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.warnings
}

func (d *DoubleDataSet) ErrorList() []string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.errors
}

func (d *DoubleDataSet) AddInfo(msg string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.info = append(d.info, msg)
}

func (d *DoubleDataSet) AddWarning(msg string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.warnings = append(d.warnings, msg)
}

func (d *DoubleDataSet) AddError(msg string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.errors = append(d.errors, msg)
}

// Equal compares name, values, errors, labels, styles, meta data and message lists.
// Nil and empty collections are equal.
func Equal(a, b DataSet) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name() != b.Name() || a.Dimension() != b.Dimension() || a.DataCount() != b.DataCount() {
		return false
	}
	for dim := 0; dim < a.Dimension(); dim++ {
		if !slices.Equal(a.Values(dim), b.Values(dim)) ||
			!slices.Equal(a.ErrorsNegative(dim), b.ErrorsNegative(dim)) ||
			!slices.Equal(a.ErrorsPositive(dim), b.ErrorsPositive(dim)) {
			return false
		}
	}
	return maps.Equal(a.DataLabels(), b.DataLabels()) &&
		maps.Equal(a.DataStyles(), b.DataStyles()) &&
		maps.Equal(a.MetaData(), b.MetaData()) &&
		slices.Equal(a.InfoList(), b.InfoList()) &&
		slices.Equal(a.WarningList(), b.WarningList()) &&
		slices.Equal(a.ErrorList(), b.ErrorList())
}

func (d *DoubleDataSet) String() string {
	if d.DataCount() == 0 {
		return fmt.Sprintf("DoubleDataSet[%s, n=0]", d.Name())
	}
	x, y := Stats(d, 0), Stats(d, 1)
	return fmt.Sprintf("DoubleDataSet[%s, n=%d, x=[%g, %g], y=[%g, %g]]", d.Name(), d.DataCount(), x.Min, x.Max, y.Min, y.Max)
}

var _ DataSet = (*DoubleDataSet)(nil)
