package format

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodeFloat64Slice(t *testing.T) {
	values := []float64{0.2, 0.35, -1.5, math.NaN()}
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	got, err := DecodeFloat64Slice(buf)
	if err != nil {
		t.Fatalf("DecodeFloat64Slice: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("got %d values, want %d", len(got), len(values))
	}
	for i := range values {
		if i == 3 {
			if !math.IsNaN(got[i]) {
				t.Fatalf("index %d: got %v, want NaN", i, got[i])
			}
			continue
		}
		if got[i] != values[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], values[i])
		}
	}
}

func TestDecodeFloat64Slice_RejectsBadLength(t *testing.T) {
	_, err := DecodeFloat64Slice(make([]byte, 7))
	if err == nil {
		t.Fatal("expected error for non-multiple-of-8 length")
	}
}

func TestDecodeFloat64Slice_Empty(t *testing.T) {
	got, err := DecodeFloat64Slice(nil)
	if err != nil {
		t.Fatalf("DecodeFloat64Slice: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d values, want 0", len(got))
	}
}
