package minizip

import (
	"bytes"
	"io"
)

// whence mirrors io.Seek{Start,Current,End} so Stream implementations never
// need to import io just for the constants.
const (
	whenceStart   = io.SeekStart
	whenceCurrent = io.SeekCurrent
	whenceEnd     = io.SeekEnd
)

// streamProp names the numeric properties a Stream exposes through
// GetProp/SetProp. Only storageStream tracks any of them (disk number and
// disk size); memoryStream tracks none.
type streamProp int

const (
	propTotalIn streamProp = iota
	propTotalOut
	propTotalInMax
	propTotalOutMax
	propHeaderSize
	propFooterSize
	propCompressLevel
	propDiskNumber
	propDiskSize
)

// Stream is the byte-oriented seek/read/write capability the archive
// cursor (C7) is built on. storageStream and memoryStream implement it;
// the entry pipeline's cipher and codec layers do not: they are plain
// io.Reader/io.Writer wrappers with no seek, tell or properties.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker

	// Tell returns the current position, equivalent to Seek(0, io.SeekCurrent)
	// but without the seek-implementation's side effects on some layers.
	Tell() (int64, error)

	// CopyFrom copies n bytes from src into the stream at its current
	// position, advancing both.
	CopyFrom(src io.Reader, n int64) (int64, error)

	// GetProp returns a numeric property, or ok=false if the layer doesn't
	// track it.
	GetProp(p streamProp) (v int64, ok bool)

	// SetProp sets a numeric property; layers that don't use a given
	// property silently ignore the call.
	SetProp(p streamProp, v int64)

	// Close releases resources owned exclusively by this layer. A layer
	// that wraps a base stream it did not create must not close the base.
	Close() error
}

// storageStream adapts an io.ReadWriteSeeker (the underlying archive file)
// to Stream. It is the C1 "storage I/O" concrete implementation; disk
// number/disk size properties exist so multi-disk split policy (an
// external collaborator per spec) can be queried without this package
// knowing how splitting works.
type storageStream struct {
	rws        io.ReadWriteSeeker
	diskNumber int64
	diskSize   int64
}

func newStorageStream(rws io.ReadWriteSeeker) *storageStream {
	return &storageStream{rws: rws}
}

func (s *storageStream) Read(p []byte) (int, error)  { return s.rws.Read(p) }
func (s *storageStream) Write(p []byte) (int, error) { return s.rws.Write(p) }
func (s *storageStream) Seek(off int64, whence int) (int64, error) {
	return s.rws.Seek(off, whence)
}

func (s *storageStream) Tell() (int64, error) {
	return s.rws.Seek(0, whenceCurrent)
}

func (s *storageStream) CopyFrom(src io.Reader, n int64) (int64, error) {
	return io.CopyN(s.rws, src, n)
}

func (s *storageStream) GetProp(p streamProp) (int64, bool) {
	switch p {
	case propDiskNumber:
		return s.diskNumber, true
	case propDiskSize:
		return s.diskSize, true
	default:
		return 0, false
	}
}

func (s *storageStream) SetProp(p streamProp, v int64) {
	switch p {
	case propDiskNumber:
		s.diskNumber = v
	case propDiskSize:
		s.diskSize = v
	}
}

func (s *storageStream) Close() error { return nil }

// memoryStream adapts a *bytes.Buffer to Stream. It backs the archive
// handle's central-directory staging buffer.
type memoryStream struct {
	buf *bytes.Buffer
	pos int64
}

func newMemoryStream() *memoryStream {
	return &memoryStream{buf: new(bytes.Buffer)}
}

func (m *memoryStream) Read(p []byte) (int, error) {
	n := copy(p, m.bytesFrom(m.pos))
	m.pos += int64(n)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (m *memoryStream) bytesFrom(pos int64) []byte {
	b := m.buf.Bytes()
	if pos >= int64(len(b)) {
		return nil
	}
	return b[pos:]
}

func (m *memoryStream) Write(p []byte) (int, error) {
	// Writes always append; random-position overwrite is not needed by
	// any caller of memoryStream in this package (the staging buffer is
	// write-once-append, per the data model).
	n, err := m.buf.Write(p)
	m.pos = int64(m.buf.Len())
	return n, err
}

func (m *memoryStream) Seek(off int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case whenceStart:
		target = off
	case whenceCurrent:
		target = m.pos + off
	case whenceEnd:
		target = int64(m.buf.Len()) + off
	}
	if target < 0 {
		return 0, newError(CodeParam, "memoryStream.Seek", ErrParam)
	}
	m.pos = target
	return target, nil
}

func (m *memoryStream) Tell() (int64, error) { return m.pos, nil }

func (m *memoryStream) CopyFrom(src io.Reader, n int64) (int64, error) {
	written, err := io.CopyN(m.buf, src, n)
	m.pos = int64(m.buf.Len())
	return written, err
}

func (m *memoryStream) GetProp(streamProp) (int64, bool) { return 0, false }
func (m *memoryStream) SetProp(streamProp, int64)        {}
func (m *memoryStream) Close() error                     { return nil }

// Bytes returns the buffer's current contents without copying.
func (m *memoryStream) Bytes() []byte { return m.buf.Bytes() }

// Len returns the number of bytes currently staged.
func (m *memoryStream) Len() int64 { return int64(m.buf.Len()) }
