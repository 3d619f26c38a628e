package wire

import (
	"errors"
	"io"
)

// ErrTruncated indicates a read failed because the source was exhausted
// in the middle of a value (TruncatedInput in the surrounding codec).
var ErrTruncated = errors.New("extprot: truncated input")

// ErrEndOfStream indicates a read failed because the source was exhausted
// exactly at a value boundary, with nothing consumed for the attempted
// read. Callers reading a stream of top-level values use this to tell a
// clean stop from a corrupt one.
var ErrEndOfStream = errors.New("extprot: end of stream")

// Reader is a sequential read cursor over an in-memory buffer. It never
// blocks and never returns ErrEndOfStream on its own: buffer-backed
// decoding always knows its total length, so ReadByte at the end of the
// buffer is reported the same way as any other truncation. StreamReader
// is the one that distinguishes the two.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the unread tail of the buffer without copying.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// ReadByte reads and returns the next byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadExact reads and returns exactly n bytes. The returned slice aliases
// the Reader's backing buffer; callers that retain it past further reads
// must copy.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes without materializing them.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return ErrTruncated
	}
	r.pos += n
	return nil
}

// ReadUvarint reads an unsigned varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	v, n, err := DecodeUvarint(r.data[r.pos:])
	if err != nil {
		if errors.Is(err, ErrVarintTruncated) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadSvarint reads a zigzag-encoded signed varint.
func (r *Reader) ReadSvarint() (int64, error) {
	v, n, err := DecodeSvarint(r.data[r.pos:])
	if err != nil {
		if errors.Is(err, ErrVarintTruncated) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadFixed32 reads a little-endian 32-bit word.
func (r *Reader) ReadFixed32() (uint32, error) {
	b, err := r.ReadExact(Fixed32Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFixed32(b)
	return v, nil
}

// ReadFixed64 reads a little-endian 64-bit word.
func (r *Reader) ReadFixed64() (uint64, error) {
	b, err := r.ReadExact(Fixed64Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFixed64(b)
	return v, nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.ReadExact(Float64Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFloat64(b)
	return v, nil
}

// ReadPrefix reads a (tag, wireType) prefix.
func (r *Reader) ReadPrefix() (tag int, wireType WireType, err error) {
	raw, n, derr := DecodeUvarint(r.data[r.pos:])
	if derr != nil {
		if errors.Is(derr, ErrVarintTruncated) {
			return 0, 0, ErrTruncated
		}
		return 0, 0, derr
	}
	r.pos += n
	p := Prefix(raw)
	return p.Tag(), p.WireType(), nil
}

// Writer is a sequential write cursor appending to an in-memory buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with an empty buffer. If capHint is positive the
// buffer is pre-sized to it.
func NewWriter(capHint int) *Writer {
	var buf []byte
	if capHint > 0 {
		buf = make([]byte, 0, capHint)
	}
	return &Writer{buf: buf}
}

// NewWriterWithBuffer returns a Writer that appends to buf, reusing its
// backing array. buf must have length 0; its capacity is preserved.
func NewWriterWithBuffer(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset clears the buffer for reuse, retaining the underlying array.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteAll appends the given bytes.
func (w *Writer) WriteAll(b []byte) error {
	w.buf = append(w.buf, b...)
	return nil
}

// WriteUvarint appends an unsigned varint.
func (w *Writer) WriteUvarint(v uint64) error {
	w.buf = AppendUvarint(w.buf, v)
	return nil
}

// WriteSvarint appends a zigzag-encoded signed varint.
func (w *Writer) WriteSvarint(v int64) error {
	w.buf = AppendSvarint(w.buf, v)
	return nil
}

// WriteFixed32 appends a little-endian 32-bit word.
func (w *Writer) WriteFixed32(v uint32) error {
	w.buf = AppendFixed32(w.buf, v)
	return nil
}

// WriteFixed64 appends a little-endian 64-bit word.
func (w *Writer) WriteFixed64(v uint64) error {
	w.buf = AppendFixed64(w.buf, v)
	return nil
}

// WriteFloat64 appends a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	w.buf = AppendFloat64(w.buf, v)
	return nil
}

// WritePrefix appends a (tag, wireType) prefix.
func (w *Writer) WritePrefix(tag int, wireType WireType) error {
	w.buf = AppendPrefix(w.buf, tag, wireType)
	return nil
}

// StreamReader is a sequential read cursor over an io.Reader. Unlike
// Reader, it distinguishes a clean stop between values (ErrEndOfStream)
// from a stop mid-value (ErrTruncated): only the very first byte of a
// top-level read is allowed to observe io.EOF cleanly.
type StreamReader struct {
	r   io.Reader
	pos int64
}

// NewStreamReader wraps r for sequential decoding.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Pos returns the total number of bytes consumed so far.
func (r *StreamReader) Pos() int64 {
	return r.pos
}

func (r *StreamReader) fill(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// ReadByte reads and returns the next byte. At a value boundary (nothing
// read yet for the value in progress) an exhausted source yields
// ErrEndOfStream; mid-value it yields ErrTruncated. Callers that know
// they are mid-value should use ReadByteMid instead to avoid the
// boundary distinction.
func (r *StreamReader) ReadByte() (byte, error) {
	var buf [1]byte
	n, err := io.ReadFull(r.r, buf[:])
	r.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfStream
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return buf[0], nil
}

// ReadByteMid reads the next byte, always reporting exhaustion as
// ErrTruncated regardless of how much has been read so far in the
// current value.
func (r *StreamReader) ReadByteMid() (byte, error) {
	var buf [1]byte
	if err := r.fill(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadExact reads exactly n bytes.
func (r *StreamReader) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Skip discards n bytes without materializing them.
func (r *StreamReader) Skip(n int) error {
	if n == 0 {
		return nil
	}
	_, err := r.ReadExact(n)
	return err
}

// ReadUvarint reads an unsigned varint byte by byte.
func (r *StreamReader) ReadUvarint() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= MaxVarintLen64 {
			return 0, ErrVarintTooLong
		}
		b, err := r.ReadByteMid()
		if err != nil {
			return 0, err
		}
		if i == 9 {
			if b >= 0x80 {
				return 0, ErrVarintTooLong
			}
			if b > 1 {
				return 0, ErrVarintOverflow
			}
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

// ReadSvarint reads a zigzag-encoded signed varint.
func (r *StreamReader) ReadSvarint() (int64, error) {
	uv, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return int64(uv>>1) ^ -int64(uv&1), nil
}

// ReadFixed32 reads a little-endian 32-bit word.
func (r *StreamReader) ReadFixed32() (uint32, error) {
	b, err := r.ReadExact(Fixed32Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFixed32(b)
	return v, nil
}

// ReadFixed64 reads a little-endian 64-bit word.
func (r *StreamReader) ReadFixed64() (uint64, error) {
	b, err := r.ReadExact(Fixed64Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFixed64(b)
	return v, nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *StreamReader) ReadFloat64() (float64, error) {
	b, err := r.ReadExact(Float64Size)
	if err != nil {
		return 0, err
	}
	v, _ := DecodeFloat64(b)
	return v, nil
}

// ReadPrefix reads a (tag, wireType) prefix. A clean end of stream is
// only possible here, since a prefix always begins a top-level value.
func (r *StreamReader) ReadPrefix() (tag int, wireType WireType, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	if b < 0x80 {
		p := Prefix(b)
		return p.Tag(), p.WireType(), nil
	}
	var v uint64 = uint64(b & 0x7f)
	var shift uint = 7
	for i := 1; ; i++ {
		if i >= MaxVarintLen64 {
			return 0, 0, ErrVarintTooLong
		}
		nb, err := r.ReadByteMid()
		if err != nil {
			return 0, 0, err
		}
		if i == 9 {
			if nb >= 0x80 {
				return 0, 0, ErrVarintTooLong
			}
			if nb > 1 {
				return 0, 0, ErrVarintOverflow
			}
		}
		v |= uint64(nb&0x7f) << shift
		if nb < 0x80 {
			break
		}
		shift += 7
	}
	p := Prefix(v)
	return p.Tag(), p.WireType(), nil
}

// StreamWriter is a sequential write cursor over an io.Writer.
type StreamWriter struct {
	w   io.Writer
	pos int64
}

// NewStreamWriter wraps w for sequential encoding.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Pos returns the total number of bytes written so far.
func (w *StreamWriter) Pos() int64 {
	return w.pos
}

func (w *StreamWriter) write(b []byte) error {
	n, err := w.w.Write(b)
	w.pos += int64(n)
	return err
}

// WriteByte writes a single byte.
func (w *StreamWriter) WriteByte(b byte) error {
	return w.write([]byte{b})
}

// WriteAll writes the given bytes.
func (w *StreamWriter) WriteAll(b []byte) error {
	return w.write(b)
}

// WriteUvarint writes an unsigned varint.
func (w *StreamWriter) WriteUvarint(v uint64) error {
	var buf [MaxVarintLen64]byte
	n := PutUvarint(buf[:], v)
	return w.write(buf[:n])
}

// WriteSvarint writes a zigzag-encoded signed varint.
func (w *StreamWriter) WriteSvarint(v int64) error {
	var buf [MaxVarintLen64]byte
	n := PutSvarint(buf[:], v)
	return w.write(buf[:n])
}

// WriteFixed32 writes a little-endian 32-bit word.
func (w *StreamWriter) WriteFixed32(v uint32) error {
	var buf [Fixed32Size]byte
	PutFixed32(buf[:], v)
	return w.write(buf[:])
}

// WriteFixed64 writes a little-endian 64-bit word.
func (w *StreamWriter) WriteFixed64(v uint64) error {
	var buf [Fixed64Size]byte
	PutFixed64(buf[:], v)
	return w.write(buf[:])
}

// WriteFloat64 writes a little-endian IEEE-754 double.
func (w *StreamWriter) WriteFloat64(v float64) error {
	var buf [Float64Size]byte
	PutFloat64(buf[:], v)
	return w.write(buf[:])
}

// WritePrefix writes a (tag, wireType) prefix.
func (w *StreamWriter) WritePrefix(tag int, wireType WireType) error {
	return w.WriteUvarint(uint64(MakePrefix(tag, wireType)))
}
