package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderBasic(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	b, err := r.ReadByte()
	if err != nil || b != 0x01 {
		t.Fatalf("ReadByte() = %d, %v", b, err)
	}
	if r.Len() != 2 || r.Pos() != 1 {
		t.Fatalf("Len/Pos wrong: %d, %d", r.Len(), r.Pos())
	}
	rest, err := r.ReadExact(2)
	if err != nil || !bytes.Equal(rest, []byte{0x02, 0x03}) {
		t.Fatalf("ReadExact() = %v, %v", rest, err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}

func TestReaderTruncation(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadExact(5); !errors.Is(err, ErrTruncated) {
		t.Fatalf("ReadExact() error = %v, want ErrTruncated", err)
	}
	r2 := NewReader(nil)
	if _, err := r2.ReadByte(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("ReadByte() on empty = %v, want ErrTruncated", err)
	}
}

func TestReaderSkip(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip() error: %v", err)
	}
	b, _ := r.ReadByte()
	if b != 0x03 {
		t.Fatalf("after Skip, ReadByte() = %d, want 3", b)
	}
	if err := r.Skip(10); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Skip(10) error = %v, want ErrTruncated", err)
	}
}

func TestReaderVarints(t *testing.T) {
	r := NewReader([]byte{0xac, 0x02, 0x01})
	v, err := r.ReadUvarint()
	if err != nil || v != 300 {
		t.Fatalf("ReadUvarint() = %d, %v, want 300", v, err)
	}
	sv, err := r.ReadSvarint()
	if err != nil || sv != -1 {
		t.Fatalf("ReadSvarint() = %d, %v, want -1", sv, err)
	}
}

func TestReaderFixedAndFloat(t *testing.T) {
	w := NewWriter(0)
	_ = w.WriteFixed32(0xdeadbeef)
	_ = w.WriteFixed64(0x1)
	_ = w.WriteFloat64(3.5)
	r := NewReader(w.Bytes())
	f32, err := r.ReadFixed32()
	if err != nil || f32 != 0xdeadbeef {
		t.Fatalf("ReadFixed32() = %x, %v", f32, err)
	}
	f64, err := r.ReadFixed64()
	if err != nil || f64 != 1 {
		t.Fatalf("ReadFixed64() = %x, %v", f64, err)
	}
	d, err := r.ReadFloat64()
	if err != nil || d != 3.5 {
		t.Fatalf("ReadFloat64() = %v, %v", d, err)
	}
}

func TestReaderPrefixRoundTrip(t *testing.T) {
	w := NewWriter(0)
	_ = w.WritePrefix(5, Htuple)
	r := NewReader(w.Bytes())
	tag, wt, err := r.ReadPrefix()
	if err != nil || tag != 5 || wt != Htuple {
		t.Fatalf("ReadPrefix() = (%d, %d), %v", tag, wt, err)
	}
}

func TestWriterReset(t *testing.T) {
	w := NewWriter(0)
	_ = w.WriteByte(0x01)
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", w.Len())
	}
	w.Reset()
	if w.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", w.Len())
	}
}

func TestStreamReaderEndOfStreamVsTruncated(t *testing.T) {
	// Clean end of stream: nothing at all to read for the next value.
	sr := NewStreamReader(bytes.NewReader(nil))
	if _, _, err := sr.ReadPrefix(); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("ReadPrefix() on empty stream = %v, want ErrEndOfStream", err)
	}

	// Mid-value truncation: a prefix promises more bytes than are present.
	w := NewWriter(0)
	_ = w.WritePrefix(0, Bytes)
	_ = w.WriteUvarint(10) // length says 10 bytes follow
	_ = w.WriteAll([]byte{0x01, 0x02})
	sr2 := NewStreamReader(bytes.NewReader(w.Bytes()))
	if _, _, err := sr2.ReadPrefix(); err != nil {
		t.Fatalf("ReadPrefix() error: %v", err)
	}
	if _, err := sr2.ReadUvarint(); err != nil {
		t.Fatalf("ReadUvarint() error: %v", err)
	}
	if _, err := sr2.ReadExact(10); !errors.Is(err, ErrTruncated) {
		t.Fatalf("ReadExact() = %v, want ErrTruncated", err)
	}
}

func TestStreamReaderMultipleValues(t *testing.T) {
	w := NewWriter(0)
	_ = w.WritePrefix(0, Vint)
	_ = w.WriteSvarint(42)
	_ = w.WritePrefix(1, Vint)
	_ = w.WriteSvarint(-7)

	sr := NewStreamReader(bytes.NewReader(w.Bytes()))

	tag, wt, err := sr.ReadPrefix()
	if err != nil || tag != 0 || wt != Vint {
		t.Fatalf("first ReadPrefix() = (%d, %d), %v", tag, wt, err)
	}
	v, err := sr.ReadSvarint()
	if err != nil || v != 42 {
		t.Fatalf("first ReadSvarint() = %d, %v", v, err)
	}

	tag, wt, err = sr.ReadPrefix()
	if err != nil || tag != 1 || wt != Vint {
		t.Fatalf("second ReadPrefix() = (%d, %d), %v", tag, wt, err)
	}
	v, err = sr.ReadSvarint()
	if err != nil || v != -7 {
		t.Fatalf("second ReadSvarint() = %d, %v", v, err)
	}

	if _, _, err := sr.ReadPrefix(); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("trailing ReadPrefix() = %v, want ErrEndOfStream", err)
	}
}

func TestStreamWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	if err := sw.WritePrefix(3, Bits64Float); err != nil {
		t.Fatalf("WritePrefix() error: %v", err)
	}
	if err := sw.WriteFloat64(2.25); err != nil {
		t.Fatalf("WriteFloat64() error: %v", err)
	}
	if sw.Pos() != int64(buf.Len()) {
		t.Fatalf("Pos() = %d, want %d", sw.Pos(), buf.Len())
	}

	sr := NewStreamReader(&buf)
	tag, wt, err := sr.ReadPrefix()
	if err != nil || tag != 3 || wt != Bits64Float {
		t.Fatalf("ReadPrefix() = (%d, %d), %v", tag, wt, err)
	}
	v, err := sr.ReadFloat64()
	if err != nil || v != 2.25 {
		t.Fatalf("ReadFloat64() = %v, %v", v, err)
	}
}

// errWriter always fails, to exercise StreamWriter error propagation.
type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestStreamWriterPropagatesError(t *testing.T) {
	sw := NewStreamWriter(errWriter{})
	if err := sw.WriteByte(0x01); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("WriteByte() error = %v, want io.ErrClosedPipe", err)
	}
}
