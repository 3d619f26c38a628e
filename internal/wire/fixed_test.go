package wire

import (
	"bytes"
	"math"
	"testing"
)

func TestAppendFixed32(t *testing.T) {
	tests := []struct {
		name     string
		value    uint32
		expected []byte
	}{
		{"zero", 0, []byte{0x00, 0x00, 0x00, 0x00}},
		{"one", 1, []byte{0x01, 0x00, 0x00, 0x00}},
		{"256", 256, []byte{0x00, 0x01, 0x00, 0x00}},
		{"0x12345678", 0x12345678, []byte{0x78, 0x56, 0x34, 0x12}},
		{"max_uint32", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := AppendFixed32(nil, tc.value)
			if !bytes.Equal(result, tc.expected) {
				t.Errorf("AppendFixed32(%d) = %v, want %v", tc.value, result, tc.expected)
			}
		})
	}
}

func TestAppendFixed64(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		expected []byte
	}{
		{"zero", 0, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"one", 1, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"0x123456789ABCDEF0", 0x123456789ABCDEF0, []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}},
		{"max_uint64", math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := AppendFixed64(nil, tc.value)
			if !bytes.Equal(result, tc.expected) {
				t.Errorf("AppendFixed64(%d) = %v, want %v", tc.value, result, tc.expected)
			}
		})
	}
}

func TestDecodeFixed32(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint32
	}{
		{"zero", []byte{0x00, 0x00, 0x00, 0x00}, 0},
		{"one", []byte{0x01, 0x00, 0x00, 0x00}, 1},
		{"0x12345678", []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678},
		{"max_uint32", []byte{0xff, 0xff, 0xff, 0xff}, math.MaxUint32},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DecodeFixed32(tc.data)
			if err != nil {
				t.Fatalf("DecodeFixed32(%v) error: %v", tc.data, err)
			}
			if result != tc.expected {
				t.Errorf("DecodeFixed32(%v) = %d, want %d", tc.data, result, tc.expected)
			}
		})
	}
}

func TestDecodeFixed64(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint64
	}{
		{"zero", []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0},
		{"one", []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 1},
		{"max_uint64", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, math.MaxUint64},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DecodeFixed64(tc.data)
			if err != nil {
				t.Fatalf("DecodeFixed64(%v) error: %v", tc.data, err)
			}
			if result != tc.expected {
				t.Errorf("DecodeFixed64(%v) = %d, want %d", tc.data, result, tc.expected)
			}
		})
	}
}

func TestDecodeFixed32Error(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"one_byte", []byte{0x01}},
		{"three_bytes", []byte{0x01, 0x02, 0x03}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFixed32(tc.data)
			if err == nil {
				t.Errorf("DecodeFixed32(%v) should return error", tc.data)
			}
		})
	}
}

func TestDecodeFixed64Error(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"one_byte", []byte{0x01}},
		{"seven_bytes", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFixed64(tc.data)
			if err == nil {
				t.Errorf("DecodeFixed64(%v) should return error", tc.data)
			}
		})
	}
}

func TestPutFixed32(t *testing.T) {
	buf := make([]byte, 4)
	PutFixed32(buf, 0x12345678)
	expected := []byte{0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(buf, expected) {
		t.Errorf("PutFixed32 = %v, want %v", buf, expected)
	}
}

func TestPutFixed64(t *testing.T) {
	buf := make([]byte, 8)
	PutFixed64(buf, 0x123456789ABCDEF0)
	expected := []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(buf, expected) {
		t.Errorf("PutFixed64 = %v, want %v", buf, expected)
	}
}

// Float32 tests

func TestAppendFloat32(t *testing.T) {
	tests := []struct {
		name     string
		value    float32
		expected []byte
	}{
		{"zero", 0.0, []byte{0x00, 0x00, 0x00, 0x00}},
		{"one", 1.0, []byte{0x00, 0x00, 0x80, 0x3f}},                 // IEEE 754: 0x3F800000
		{"minus_one", -1.0, []byte{0x00, 0x00, 0x80, 0xbf}},          // IEEE 754: 0xBF800000
		{"pi_approx", float32(3.14), []byte{0xc3, 0xf5, 0x48, 0x40}}, // Approximate
		{"pos_inf", float32(math.Inf(1)), []byte{0x00, 0x00, 0x80, 0x7f}},
		{"neg_inf", float32(math.Inf(-1)), []byte{0x00, 0x00, 0x80, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := AppendFloat32(nil, tc.value)
			if !bytes.Equal(result, tc.expected) {
				t.Errorf("AppendFloat32(%v) = %v, want %v", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFloat32PreservesNegativeZero(t *testing.T) {
	negZero := math.Float32frombits(0x80000000)
	encoded := AppendFloat32(nil, negZero)
	decoded, err := DecodeFloat32(encoded)
	if err != nil {
		t.Fatalf("DecodeFloat32 error: %v", err)
	}
	if math.Float32bits(decoded) != 0x80000000 {
		t.Errorf("negative zero round trip changed bits: got %x", math.Float32bits(decoded))
	}
}

func TestFloat32PreservesNaNPayload(t *testing.T) {
	bits := uint32(0x7FBFFFFF) // a non-canonical signaling NaN payload
	nan := math.Float32frombits(bits)
	encoded := AppendFloat32(nil, nan)
	decoded, err := DecodeFloat32(encoded)
	if err != nil {
		t.Fatalf("DecodeFloat32 error: %v", err)
	}
	if math.Float32bits(decoded) != bits {
		t.Errorf("NaN payload not preserved: got %x, want %x", math.Float32bits(decoded), bits)
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{
		0, 1, -1, 0.5, -0.5,
		float32(math.Pi), float32(-math.Pi),
		float32(math.MaxFloat32), float32(-math.MaxFloat32),
		float32(math.SmallestNonzeroFloat32), float32(-math.SmallestNonzeroFloat32),
		float32(math.Inf(1)), float32(math.Inf(-1)),
	}

	for _, v := range values {
		encoded := AppendFloat32(nil, v)
		decoded, err := DecodeFloat32(encoded)
		if err != nil {
			t.Errorf("Float32 round trip error for %v: %v", v, err)
			continue
		}
		if decoded != v {
			t.Errorf("Float32 round trip: %v -> %v -> %v", v, encoded, decoded)
		}
	}
}

// Float64 tests

func TestAppendFloat64(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected []byte
	}{
		{"zero", 0.0, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"one", 1.0, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0x3f}},
		{"minus_one", -1.0, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xbf}},
		{"pos_inf", math.Inf(1), []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0x7f}},
		{"neg_inf", math.Inf(-1), []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := AppendFloat64(nil, tc.value)
			if !bytes.Equal(result, tc.expected) {
				t.Errorf("AppendFloat64(%v) = %v, want %v", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFloat64PreservesNegativeZero(t *testing.T) {
	negZero := math.Float64frombits(0x8000000000000000)
	encoded := AppendFloat64(nil, negZero)
	decoded, err := DecodeFloat64(encoded)
	if err != nil {
		t.Fatalf("DecodeFloat64 error: %v", err)
	}
	if math.Float64bits(decoded) != 0x8000000000000000 {
		t.Errorf("negative zero round trip changed bits: got %x", math.Float64bits(decoded))
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.5, -0.5,
		math.Pi, -math.Pi,
		math.MaxFloat64, -math.MaxFloat64,
		math.SmallestNonzeroFloat64, -math.SmallestNonzeroFloat64,
		math.Inf(1), math.Inf(-1),
	}

	for _, v := range values {
		encoded := AppendFloat64(nil, v)
		decoded, err := DecodeFloat64(encoded)
		if err != nil {
			t.Errorf("Float64 round trip error for %v: %v", v, err)
			continue
		}
		if decoded != v {
			t.Errorf("Float64 round trip: %v -> %v -> %v", v, encoded, decoded)
		}
	}
}

// Determinism test

func TestEncodingDeterminism(t *testing.T) {
	values := []float64{0, 1, -1, math.Pi, math.Inf(1), math.Inf(-1)}

	for _, v := range values {
		first := AppendFloat64(nil, v)
		for i := 0; i < 100; i++ {
			second := AppendFloat64(nil, v)
			if !bytes.Equal(first, second) {
				t.Errorf("Non-deterministic encoding for %v: %v != %v", v, first, second)
				break
			}
		}
	}
}

// Benchmarks

func BenchmarkAppendFixed32(b *testing.B) {
	buf := make([]byte, 0, 8)
	for i := 0; i < b.N; i++ {
		buf = AppendFixed32(buf[:0], 0x12345678)
	}
}

func BenchmarkAppendFixed64(b *testing.B) {
	buf := make([]byte, 0, 16)
	for i := 0; i < b.N; i++ {
		buf = AppendFixed64(buf[:0], 0x123456789ABCDEF0)
	}
}

func BenchmarkDecodeFixed32(b *testing.B) {
	data := []byte{0x78, 0x56, 0x34, 0x12}
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFixed32(data)
	}
}

func BenchmarkDecodeFixed64(b *testing.B) {
	data := []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFixed64(data)
	}
}

func BenchmarkAppendFloat64(b *testing.B) {
	buf := make([]byte, 0, 16)
	for i := 0; i < b.N; i++ {
		buf = AppendFloat64(buf[:0], math.Pi)
	}
}

func BenchmarkDecodeFloat64(b *testing.B) {
	data := AppendFloat64(nil, math.Pi)
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFloat64(data)
	}
}

// Fuzz tests

func FuzzFixed32RoundTrip(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(1))
	f.Add(uint32(math.MaxUint32))

	f.Fuzz(func(t *testing.T, v uint32) {
		encoded := AppendFixed32(nil, v)
		decoded, err := DecodeFixed32(encoded)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if decoded != v {
			t.Fatalf("round trip failed: %d -> %d", v, decoded)
		}
	})
}

func FuzzFixed64RoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(math.MaxUint64))

	f.Fuzz(func(t *testing.T, v uint64) {
		encoded := AppendFixed64(nil, v)
		decoded, err := DecodeFixed64(encoded)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if decoded != v {
			t.Fatalf("round trip failed: %d -> %d", v, decoded)
		}
	})
}

func FuzzFloat64RoundTrip(f *testing.F) {
	f.Add(uint64(0))                  // 0.0
	f.Add(uint64(0x3FF0000000000000)) // 1.0
	f.Add(uint64(0x7FF0000000000000)) // +Inf
	f.Add(uint64(0x7FF8000000000000)) // NaN

	f.Fuzz(func(t *testing.T, bits uint64) {
		v := math.Float64frombits(bits)
		encoded := AppendFloat64(nil, v)
		decoded, err := DecodeFloat64(encoded)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}

		if math.IsNaN(v) {
			if !math.IsNaN(decoded) {
				t.Fatalf("NaN round trip failed: got non-NaN %v", decoded)
			}
			return
		}

		if decoded != v {
			t.Fatalf("round trip failed: %v -> %v", v, decoded)
		}
	})
}
