package serializer

import (
	"sync"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/codec"
	"github.com/ValentinKolb/dIO/lib/common"
	"github.com/ValentinKolb/dIO/lib/dataset"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("serializer")

var (
	registryOnce    sync.Once
	defaultRegistry *codec.Registry
)

// Registry returns the registry used by NewBinarySerializer: the builtin serialisers
// plus the DataSet serialisers.
func Registry() *codec.Registry {
	registryOnce.Do(func() {
		defaultRegistry = codec.NewDefaultRegistry()
		if err := dataset.Register(defaultRegistry); err != nil {
			Logger.Errorf("failed to register data set serialisers: %v", err)
		}
	})
	return defaultRegistry
}

// NewBinarySerializer creates a new serializer using the self-describing dIO wire format
// with the default configuration
func NewBinarySerializer() ISerializer {
	return NewBinarySerializerWithConfig(common.DefaultConfig(), Registry())
}

// NewBinarySerializerWithConfig creates a dIO serializer resolving field serialisers with
// registry. The buffer kind, the string encoding and the pooled buffer sizes are taken
// from config.
func NewBinarySerializerWithConfig(config common.Config, registry *codec.Registry) ISerializer {
	b := &binarySerializerImpl{
		config:   config,
		registry: registry,
	}
	b.pool.New = func() any {
		buf := b.config.NewBuffer()
		cs := codec.NewClassSerialiser(buf)
		cs.UseRegistry(b.registry)
		return &pooledSerialiser{cs: cs, buf: buf}
	}
	return b
}

// binarySerializerImpl implements ISerializer with pooled codec.ClassSerialisers, a
// ClassSerialiser itself is not safe for concurrent use
type binarySerializerImpl struct {
	config   common.Config
	registry *codec.Registry
	pool     sync.Pool
}

// pooledSerialiser keeps the write buffer of a ClassSerialiser while it reads wrapped data
type pooledSerialiser struct {
	cs  *codec.ClassSerialiser
	buf buffer.IoBuffer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (b *binarySerializerImpl) Serialize(v any) ([]byte, error) {
	p := b.pool.Get().(*pooledSerialiser)
	defer b.release(p)

	p.cs.SetBuffer(p.buf)
	return p.cs.Serialise(v)
}

func (b *binarySerializerImpl) Deserialize(data []byte, v any) error {
	p := b.pool.Get().(*pooledSerialiser)
	defer b.release(p)

	p.cs.SetBuffer(b.config.WrapBuffer(data))
	_, err := p.cs.DeserialiseObject(v)
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// release returns p to the pool, oversized write buffers are shrunk first
func (b *binarySerializerImpl) release(p *pooledSerialiser) {
	if b.config.MaxPooledCapacity > 0 && p.buf.Capacity() > b.config.MaxPooledCapacity {
		Logger.Debugf("shrinking pooled buffer from %d bytes", p.buf.Capacity())
		p.buf.ForceCapacity(b.config.InitialCapacity, false)
	}
	p.cs.SetBuffer(p.buf)
	b.pool.Put(p)
}
