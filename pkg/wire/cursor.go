package wire

import (
	"errors"
	"io"
)

// MaxPushback is the maximum number of bytes a Cursor holds for Unread.
const MaxPushback = 64 * 1024

// maxEmptyReads bounds consecutive (0, nil) reads from the underlying reader.
const maxEmptyReads = 100

// ErrPushbackFull is returned by Unread when the pushback buffer would
// exceed MaxPushback.
var ErrPushbackFull = errors.New("cbor: pushback buffer full")

// lener is implemented by readers that know how many unread bytes they hold
// (bytes.Reader, bytes.Buffer, strings.Reader).
type lener interface {
	Len() int
}

// Cursor is a byte source that tracks how much of the underlying stream has
// been consumed, for error offsets. Bytes handed back with Unread are
// returned before the underlying stream is read again.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	r        io.Reader
	br       io.ByteReader
	pushback []byte

	// bytesRead is the total consumed from r.
	bytesRead int64
	// lastOffset is bytesRead just before the most recent read from r.
	lastOffset int64

	one [1]byte
}

// NewCursor returns a Cursor reading from r.
func NewCursor(r io.Reader) *Cursor {
	c := &Cursor{r: r}
	if br, ok := r.(io.ByteReader); ok {
		c.br = br
	}
	return c
}

// Read reads up to len(p) bytes, draining pushed-back bytes first.
func (c *Cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(c.pushback) > 0 {
		n := copy(p, c.pushback)
		c.pushback = c.pushback[:copy(c.pushback, c.pushback[n:])]
		return n, nil
	}
	for empty := 0; ; empty++ {
		n, err := c.r.Read(p)
		if n > 0 || err != nil {
			c.lastOffset = c.bytesRead
			c.bytesRead += int64(n)
			return n, err
		}
		if empty >= maxEmptyReads {
			return 0, io.ErrNoProgress
		}
	}
}

// ReadFull fills p completely. A stream that ends first yields
// io.ErrUnexpectedEOF.
func (c *Cursor) ReadFull(p []byte) error {
	n := 0
	for n < len(p) {
		m, err := c.Read(p[n:])
		n += m
		if n == len(p) {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// ReadByte reads a single byte. A stream that is already exhausted yields
// io.EOF.
func (c *Cursor) ReadByte() (byte, error) {
	if len(c.pushback) > 0 {
		b := c.pushback[0]
		c.pushback = c.pushback[:copy(c.pushback, c.pushback[1:])]
		return b, nil
	}
	if c.br != nil {
		b, err := c.br.ReadByte()
		if err != nil {
			return 0, err
		}
		c.lastOffset = c.bytesRead
		c.bytesRead++
		return b, nil
	}
	n, err := c.Read(c.one[:])
	if n == 1 {
		return c.one[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

// Unread pushes p back so the next reads return it before any new data.
func (c *Cursor) Unread(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if len(c.pushback)+len(p) > MaxPushback {
		return ErrPushbackFull
	}
	buf := make([]byte, 0, len(p)+len(c.pushback))
	buf = append(buf, p...)
	c.pushback = append(buf, c.pushback...)
	return nil
}

// BytesRead returns the number of bytes consumed from the underlying stream.
func (c *Cursor) BytesRead() int64 {
	return c.bytesRead
}

// LastOffset returns the value of BytesRead just before the most recent
// read from the underlying stream.
func (c *Cursor) LastOffset() int64 {
	return c.lastOffset
}

// Buffered returns the number of pushed-back bytes not yet read.
func (c *Cursor) Buffered() int {
	return len(c.pushback)
}

// Offset returns the logical position: bytes delivered to callers.
func (c *Cursor) Offset() int64 {
	return c.bytesRead - int64(len(c.pushback))
}

// Remaining returns the number of bytes left in the input when the
// underlying reader can report it.
func (c *Cursor) Remaining() (int64, bool) {
	l, ok := c.r.(lener)
	if !ok {
		return 0, false
	}
	return int64(len(c.pushback)) + int64(l.Len()), true
}
