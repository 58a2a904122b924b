package wire

import (
	"fmt"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("wire")

// header layout: byte type, int32 hash, int32 dataStartOffset, int32 dataSize, string name
const (
	offsetFieldPos = 1 + 4
	sizeFieldPos   = 1 + 4 + 4
)

// BinarySerialiser implements IoSerialiser on top of an IoBuffer.
// It is not safe for concurrent use, a serialiser owns its buffer for the time of a call.
type BinarySerialiser struct {
	buf buffer.IoBuffer
	// open start markers, innermost last
	open []*field.WireDataFieldDescription
}

// NewBinarySerialiser creates a serialiser writing to and reading from buf
func NewBinarySerialiser(buf buffer.IoBuffer) *BinarySerialiser {
	return &BinarySerialiser{buf: buf}
}

func (s *BinarySerialiser) Buffer() buffer.IoBuffer { return s.buf }

func (s *BinarySerialiser) SetBuffer(buf buffer.IoBuffer) {
	s.buf = buf
	s.open = s.open[:0]
}

func (s *BinarySerialiser) SetEnforceSimpleStringEncoding(state bool) {
	s.buf.SetEnforceSimpleStringEncoding(state)
}

// --------------------------------------------------------------------------
// Header info and field headers
// --------------------------------------------------------------------------

func (s *BinarySerialiser) PutHeaderInfo(typeHint string) *field.WireDataFieldDescription {
	s.open = s.open[:0]
	s.buf.PutString(ProducerName)
	s.buf.PutByte(VersionMajor)
	s.buf.PutByte(VersionMinor)
	s.buf.PutByte(VersionMicro)
	return s.PutStartMarker(typeHint)
}

func (s *BinarySerialiser) CheckHeaderInfo() (HeaderInfo, error) {
	info := HeaderInfo{
		Producer: s.buf.GetString(),
		Major:    s.buf.GetByte(),
		Minor:    s.buf.GetByte(),
		Micro:    s.buf.GetByte(),
	}
	if err := s.buf.Err(); err != nil {
		return info, fmt.Errorf("%w: reading header info: %v", ErrMalformedStream, err)
	}
	if info.Producer != ProducerName {
		return info, fmt.Errorf("%w: producer %q, expected %q", ErrHeaderMismatch, info.Producer, ProducerName)
	}
	if info.Major != VersionMajor {
		return info, fmt.Errorf("%w: major version %d, expected %d", ErrHeaderMismatch, info.Major, VersionMajor)
	}
	root, err := s.GetFieldHeader()
	if err != nil {
		return info, err
	}
	if root.DataType() != datatype.StartMarker {
		return info, fmt.Errorf("%w: header info is followed by %s instead of a start marker", ErrMalformedStream, root.DataType())
	}
	info.Root = root
	return info, nil
}

func (s *BinarySerialiser) PutFieldHeader(name string, dataType datatype.DataType) *field.WireDataFieldDescription {
	headerStart := s.buf.Position()
	hash := field.HashName(name)
	s.buf.PutByte(dataType.AsByte())
	s.buf.PutInt32(hash)
	s.buf.PutInt32(-1)
	s.buf.PutInt32(-1)
	s.buf.PutString(name)
	offset := s.buf.Position() - headerStart
	s.patchInt32(headerStart+offsetFieldPos, int32(offset))
	return field.NewWireDataFieldDescription(nil, hash, name, dataType, headerStart, offset, -1)
}

func (s *BinarySerialiser) UpdateDataEndMarker(fd *field.WireDataFieldDescription) {
	size := s.buf.Position() - fd.DataStartPosition()
	s.patchInt32(fd.HeaderStart()+sizeFieldPos, int32(size))
	fd.SetDataSize(size)
}

// patchInt32 overwrites an already written int32 without moving the write position
func (s *BinarySerialiser) patchInt32(at int, v int32) {
	pos := s.buf.Position()
	if err := s.buf.SetPosition(at); err != nil {
		Logger.Errorf("cannot patch header at %d: %v", at, err)
		return
	}
	s.buf.PutInt32(v)
	_ = s.buf.SetPosition(pos)
}

func (s *BinarySerialiser) GetFieldHeader() (*field.WireDataFieldDescription, error) {
	headerStart := s.buf.Position()
	code := s.buf.GetByte()
	hash := s.buf.GetInt32()
	offset := int(s.buf.GetInt32())
	size := int(s.buf.GetInt32())
	name := s.buf.GetString()
	if err := s.buf.Err(); err != nil {
		return nil, fmt.Errorf("%w: field header at %d: %v", ErrMalformedStream, headerStart, err)
	}
	dt, err := datatype.FromByte(code)
	if err != nil {
		return nil, fmt.Errorf("%w: field header at %d: %v", ErrMalformedStream, headerStart, err)
	}
	if offset < s.buf.Position()-headerStart {
		return nil, fmt.Errorf("%w: field %q has data offset %d inside its header", ErrMalformedStream, name, offset)
	}
	if size < 0 && dt != datatype.StartMarker {
		return nil, fmt.Errorf("%w: field %q has no data size", ErrMalformedStream, name)
	}

	fd := field.NewWireDataFieldDescription(nil, hash, name, dt, headerStart, offset, size)
	if end := fd.DataEndPosition(); end > s.buf.Limit() {
		return nil, fmt.Errorf("%w: field %q ends at %d beyond limit %d", ErrMalformedStream, name, end, s.buf.Limit())
	}
	if err := s.buf.SetPosition(fd.DataStartPosition()); err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrMalformedStream, name, err)
	}
	if dt.IsArray() {
		dims := s.buf.GetArraySizeDescriptor()
		if err := s.buf.Err(); err != nil {
			return nil, fmt.Errorf("%w: array size descriptor of %q: %v", ErrMalformedStream, name, err)
		}
		fd.SetDataDimensions(dims)
		_ = s.buf.SetPosition(fd.DataStartPosition())
	}
	return fd, nil
}

// --------------------------------------------------------------------------
// Markers
// --------------------------------------------------------------------------

func (s *BinarySerialiser) PutStartMarker(name string) *field.WireDataFieldDescription {
	fd := s.PutFieldHeader(name, datatype.StartMarker)
	s.open = append(s.open, fd)
	return fd
}

func (s *BinarySerialiser) PutEndMarker(name string) {
	fd := s.PutFieldHeader(name, datatype.EndMarker)
	s.UpdateDataEndMarker(fd)
	if len(s.open) == 0 {
		Logger.Warningf("end marker %q without open start marker", name)
		return
	}
	start := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	s.UpdateDataEndMarker(start)
}

// --------------------------------------------------------------------------
// Stream parsing
// --------------------------------------------------------------------------

// ParseIoStream parses the fields from the current position into a tree below a
// synthetic node named "ROOT". With readHeader the header info is validated first and
// the root start marker (named with the type hint) becomes the single child of ROOT.
// Parsing stops at the end marker closing the outermost region or at the buffer limit.
// End markers are not part of the tree.
func (s *BinarySerialiser) ParseIoStream(readHeader bool) (*field.WireDataFieldDescription, error) {
	start := s.buf.Position()
	root := field.NewWireDataFieldDescription(nil, field.HashName(RootNodeName), RootNodeName, datatype.StartMarker, start, 0, -1)

	if readHeader {
		info, err := s.CheckHeaderInfo()
		if err != nil {
			return nil, err
		}
		info.Root.Attach(root)
		if err := s.parseChildren(info.Root, true); err != nil {
			return nil, err
		}
	} else if err := s.parseChildren(root, false); err != nil {
		return nil, err
	}

	root.SetDataSize(s.buf.Position() - start)
	return root, nil
}

// parseChildren attaches all fields up to the next end marker to parent. If
// requireEnd is set, reaching the limit before the end marker is an error.
func (s *BinarySerialiser) parseChildren(parent *field.WireDataFieldDescription, requireEnd bool) error {
	for s.buf.HasRemaining() {
		fd, err := s.GetFieldHeader()
		if err != nil {
			return err
		}
		if fd.DataType() == datatype.EndMarker {
			return nil
		}
		fd.Attach(parent)

		if fd.DataType() == datatype.StartMarker {
			if err := s.parseChildren(fd, true); err != nil {
				return err
			}
			// a patched start marker also tells where the region ends
			if end := fd.DataEndPosition(); end >= 0 && end != s.buf.Position() {
				if err := s.buf.SetPosition(end); err != nil {
					return fmt.Errorf("%w: region %q: %v", ErrMalformedStream, fd.FieldName(), err)
				}
			}
			continue
		}

		if err := s.buf.SetPosition(fd.DataEndPosition()); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformedStream, fd.FieldName(), err)
		}
	}
	if requireEnd {
		return fmt.Errorf("%w: region %q is not terminated", ErrMalformedStream, parent.FieldName())
	}
	return nil
}
