// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"io"
)

// MinRead is the size of the intermediate buffer ReadFrom reads into.
const MinRead = 4 * 1024

// Buffer is a bytes.Buffer-like struct backed by an Allocator.
// It implements io.Writer, io.Reader, io.ReaderFrom and io.WriterTo.
// All memory allocation is done through the provided allocator, so writes fail
// with ErrOutOfMemory once a fixed arena is exhausted.
type Buffer struct {
	alloc   Allocator
	buf     []byte // contents are buf[off:]
	off     int    // read offset
	readBuf []byte // intermediate buffer for ReadFrom
}

// NewArenaBuffer creates a new Buffer backed by the given allocator.
// If the allocator is nil, it will fall back to standard Go allocation.
func NewArenaBuffer(a Allocator) *Buffer {
	return &Buffer{alloc: a}
}

// Write implements io.Writer interface.
// On failure nothing is written.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := b.grow(len(p)); err != nil {
		return 0, err
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte writes a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

// WriteString writes a string to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	if len(s) == 0 {
		return 0, nil
	}
	if err := b.grow(len(s)); err != nil {
		return 0, err
	}
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Grow makes room for n more bytes without another allocation.
func (b *Buffer) Grow(n int) error {
	if n < 0 {
		panic("arena: negative Buffer.Grow count")
	}
	return b.grow(n)
}

// grow ensures cap(b.buf)-len(b.buf) >= n, reclaiming the consumed prefix first
// when the unread data fits in the current block.
func (b *Buffer) grow(n int) error {
	if cap(b.buf)-len(b.buf) >= n {
		return nil
	}
	if b.off > 0 && b.Len()+n <= cap(b.buf) {
		m := copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:m]
		b.off = 0
		return nil
	}
	grown, err := growSlice(b.alloc, b.buf[b.off:], n)
	if err != nil {
		return err
	}
	b.buf = grown
	b.off = 0
	return nil
}

// WriteTo implements io.WriterTo interface.
// It writes the unread portion of the buffer to w until it is drained or an error occurs.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.Len() == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf[b.off:])
	b.off += m
	n = int64(m)
	if err == nil && b.Len() > 0 {
		err = io.ErrShortWrite
	}
	if b.Len() == 0 {
		b.Reset()
	}
	return n, err
}

// Read reads up to len(p) bytes from the buffer into p.
// It returns io.EOF when the buffer has no unread data and p is not empty.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.Len() == 0 {
		b.Reset()
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// ReadByte reads and returns the next byte from the buffer.
// If no byte is available, it returns io.EOF.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() == 0 {
		b.Reset()
		return 0, io.EOF
	}
	c := b.buf[b.off]
	b.off++
	return c, nil
}

// Bytes returns a slice of length b.Len() holding the unread portion of the buffer.
// The slice is valid for use only until the next buffer modification.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// String returns the contents of the unread portion of the buffer as a string.
func (b *Buffer) String() string {
	return string(b.buf[b.off:])
}

// Len returns the number of bytes of the unread portion of the buffer.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Cap returns the capacity of the buffer's underlying byte slice.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Reset resets the buffer to be empty but keeps its storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

// Truncate discards all but the first n unread bytes from the buffer.
// It panics if n is negative or greater than the length of the buffer.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.Len() {
		panic("arena: truncation out of range")
	}
	b.buf = b.buf[:b.off+n]
}

// Next returns a slice containing the next n bytes from the buffer,
// advancing the buffer as if the bytes had been returned by Read.
// The slice is only valid until the next write.
func (b *Buffer) Next(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	if n > b.Len() {
		n = b.Len()
	}
	data := b.buf[b.off : b.off+n]
	b.off += n
	return data
}

// ReadFrom implements io.ReaderFrom interface.
// It reads data from r until EOF or error, writing it to the buffer.
// The intermediate read buffer is allocated from the allocator once.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	if b.readBuf == nil {
		b.readBuf, err = AllocateSlice[byte](b.alloc, MinRead, MinRead)
		if err != nil {
			return 0, err
		}
	}

	for {
		nr, er := r.Read(b.readBuf)
		if nr > 0 {
			if _, ew := b.Write(b.readBuf[:nr]); ew != nil {
				return n, ew
			}
			n += int64(nr)
		}
		if er == io.EOF {
			return n, nil
		}
		if er != nil {
			return n, er
		}
	}
}
