// Package strtab provides opt-in bulk string compression for extprot
// payloads. It wraps github.com/axiomhq/fsst, a static-symbol-table
// compressor, so a caller can shrink large or repetitive String/Bytes
// field values before handing them to the xtype layer, and restore
// them after Decode. A compressed value is still plain opaque bytes on
// the wire: decoders that know nothing about strtab see an ordinary
// wire.Bytes payload.
package strtab

import (
	"bytes"
	"io"

	"github.com/axiomhq/fsst"
)

// Table is a trained symbol table for compressing and decompressing
// byte strings that share common substrings, such as repeated log
// lines or JSON-ish records going into the same extprot field.
type Table struct {
	t *fsst.Table
}

// Train builds a Table from representative sample data. The samples
// should look like the strings the Table will later compress; training
// on a handful of production-shaped records is enough.
func Train(samples [][]byte) *Table {
	return &Table{t: fsst.Train(samples)}
}

// TrainStrings is Train for string inputs, avoiding a caller-side
// []byte conversion pass.
func TrainStrings(samples []string) *Table {
	inputs := make([][]byte, len(samples))
	for i, s := range samples {
		inputs[i] = []byte(s)
	}
	return Train(inputs)
}

// Compress returns the compressed form of data. The result is only
// meaningful to a Table trained on similar data; pair it with
// Decompress using the same Table or one restored from the same
// serialized symbol table.
func (tbl *Table) Compress(data []byte) []byte {
	return tbl.t.EncodeAll(data)
}

// Decompress reverses Compress.
func (tbl *Table) Decompress(data []byte) []byte {
	return tbl.t.DecodeAll(data)
}

// WriteTo serializes the symbol table so it can be shipped alongside
// compressed payloads and reloaded with ReadTable.
func (tbl *Table) WriteTo(w io.Writer) (int64, error) {
	return tbl.t.WriteTo(w)
}

// ReadTable restores a Table previously written with WriteTo.
func ReadTable(r io.Reader) (*Table, error) {
	t := &fsst.Table{}
	if _, err := t.ReadFrom(r); err != nil {
		return nil, err
	}
	return &Table{t: t}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler over the same
// serialized form as WriteTo, for callers that store a Table as an
// opaque field rather than streaming it.
func (tbl *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := tbl.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalTable is the inverse of MarshalBinary.
func UnmarshalTable(data []byte) (*Table, error) {
	return ReadTable(bytes.NewReader(data))
}
