package codec

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("codec")

var cacheMisses = metrics.NewCounter("dio_resolution_cache_misses_total")

// maxCachedGenerics bounds the generic arguments that are part of a cache key,
// lookups with more arguments are resolved uncached
const maxCachedGenerics = 4

type cacheKey struct {
	generation uint64
	typ        reflect.Type
	n          int
	generics   [maxCachedGenerics]reflect.Type
}

// fieldSerialiserValue is the cached resolution result, fs is nil for a cached miss
type fieldSerialiserValue struct {
	fs FieldSerialiser
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry holds FieldSerialisers keyed by class prototype, a resolution cache and the
// ClassFieldDescriptions built with it. It is safe for concurrent use: registrations
// take a lock, lookups are served from lock-free caches.
type Registry struct {
	mu       sync.RWMutex
	classMap map[reflect.Type][]FieldSerialiser
	classes  []reflect.Type // registration order

	cachedFieldMatch *xsync.MapOf[cacheKey, fieldSerialiserValue]
	descriptions     *xsync.MapOf[reflect.Type, *ClassFieldDescription]
	generation       atomic.Uint64
}

// NewRegistry creates an empty registry without builtin serialisers
func NewRegistry() *Registry {
	return &Registry{
		classMap:         map[reflect.Type][]FieldSerialiser{},
		cachedFieldMatch: xsync.NewMapOf[cacheKey, fieldSerialiserValue](),
		descriptions:     xsync.NewMapOf[reflect.Type, *ClassFieldDescription](),
	}
}

// NewDefaultRegistry creates a registry with all builtin serialisers registered
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process wide registry, initialised once with the builtin serialisers
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// AddClassDefinition registers fs for its class prototype. Serialisers registered later
// for the same class and generics do not replace earlier ones, resolution prefers the
// first compatible registration.
func (r *Registry) AddClassDefinition(fs FieldSerialiser) error {
	if fs == nil {
		return fmt.Errorf("%w: serialiser is nil", ErrInvalidRegistration)
	}
	class := fs.ClassPrototype()
	if class == nil {
		return fmt.Errorf("%w: class prototype is nil", ErrInvalidRegistration)
	}
	for i, g := range fs.GenericsPrototypes() {
		if g == nil {
			return fmt.Errorf("%w: generic prototype %d of %v is nil", ErrInvalidRegistration, i, class)
		}
	}

	r.mu.Lock()
	if _, ok := r.classMap[class]; !ok {
		r.classes = append(r.classes, class)
	}
	r.classMap[class] = append(r.classMap[class], fs)
	r.generation.Add(1)
	r.mu.Unlock()

	// entries of older generations are never hit again, clearing only frees them
	r.cachedFieldMatch.Clear()
	return nil
}

// ClassDescription returns the (cached) descriptor tree of t
func (r *Registry) ClassDescription(t reflect.Type) *ClassFieldDescription {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	cfd, _ := r.descriptions.LoadOrCompute(t, func() *ClassFieldDescription {
		return newClassFieldDescription(r, nil, rootName(t), nil, t)
	})
	return cfd
}

// --------------------------------------------------------------------------
// Resolution
// --------------------------------------------------------------------------

// FindFieldSerialiser resolves the serialiser for t with the given generic arguments,
// nil if there is none. Results (including misses) are cached.
func (r *Registry) FindFieldSerialiser(t reflect.Type, generics ...reflect.Type) FieldSerialiser {
	if t == nil {
		return nil
	}
	if len(generics) > maxCachedGenerics {
		return r.findFieldSerialiser(t, generics)
	}
	key := cacheKey{generation: r.generation.Load(), typ: t, n: len(generics)}
	copy(key.generics[:], generics)

	value, _ := r.cachedFieldMatch.LoadOrCompute(key, func() fieldSerialiserValue {
		cacheMisses.Inc()
		return fieldSerialiserValue{fs: r.findFieldSerialiser(t, generics)}
	})
	return value.fs
}

func (r *Registry) findFieldSerialiser(t reflect.Type, generics []reflect.Type) FieldSerialiser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// exact match
	if candidates := r.classMap[t]; len(candidates) == 1 {
		return candidates[0]
	} else if len(candidates) > 1 {
		return selectCandidate(candidates, generics)
	}

	// assignable registrations, then the generic container prototypes
	for _, match := range []func(registered, requested reflect.Type) bool{isAssignableFrom, isContainerOf} {
		var candidates []FieldSerialiser
		for _, class := range r.classes {
			if match(class, t) {
				candidates = append(candidates, r.classMap[class]...)
			}
		}
		if len(candidates) > 0 {
			return selectCandidate(candidates, generics)
		}
	}

	Logger.Debugf("no field serialiser for %v %v", t, generics)
	return nil
}

// selectCandidate picks the first generics compatible candidate, then the first
// candidate without generics, then the first one
func selectCandidate(candidates []FieldSerialiser, generics []reflect.Type) FieldSerialiser {
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, fs := range candidates {
		if checkClassCompatibility(generics, fs.GenericsPrototypes()) {
			return fs
		}
	}
	for _, fs := range candidates {
		if len(fs.GenericsPrototypes()) == 0 {
			return fs
		}
	}
	return candidates[0]
}

// checkClassCompatibility reports whether every requested type argument equals or is
// assignable to the prototype at the same position
func checkClassCompatibility(requested, prototypes []reflect.Type) bool {
	if len(requested) != len(prototypes) {
		return false
	}
	for i, proto := range prototypes {
		if requested[i] != proto && !requested[i].AssignableTo(proto) {
			return false
		}
	}
	return true
}

// isAssignableFrom reports whether values of requested can be handled by a serialiser
// registered for registered: identical types, implementations of a (non-empty)
// interface, or named types (except enums) whose underlying kind matches an unnamed
// basic type or a slice of one.
func isAssignableFrom(registered, requested reflect.Type) bool {
	if registered == requested {
		return true
	}
	if registered.Kind() == reflect.Interface {
		return registered.NumMethod() > 0 && requested.Implements(registered)
	}
	if registered.Name() != "" {
		return false
	}
	if isBasicKind(registered.Kind()) {
		return registered.Kind() == requested.Kind() && requested.Name() != "" && !requested.Implements(datatype.EnumType)
	}
	// fixed size arrays use the serialiser of the matching slice type
	if registered.Kind() == reflect.Slice && (requested.Kind() == reflect.Slice || requested.Kind() == reflect.Array) {
		relem, qelem := registered.Elem(), requested.Elem()
		return relem.Name() == relem.Kind().String() && isBasicKind(relem.Kind()) &&
			relem.Kind() == qelem.Kind() && !qelem.Implements(datatype.EnumType)
	}
	return false
}

var (
	listPrototype = reflect.TypeOf([]any(nil))
	mapPrototype  = reflect.TypeOf(map[any]any(nil))
	setPrototype  = reflect.TypeOf(map[any]struct{}(nil))
)

// isContainerOf matches the generic container prototypes against any slice or map
func isContainerOf(registered, requested reflect.Type) bool {
	switch registered {
	case listPrototype:
		return requested.Kind() == reflect.Slice || requested.Kind() == reflect.Array
	case mapPrototype:
		return requested.Kind() == reflect.Map && !isEmptyStruct(requested.Elem())
	case setPrototype:
		return requested.Kind() == reflect.Map && isEmptyStruct(requested.Elem())
	}
	return false
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
