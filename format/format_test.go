package format

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func encodeFileHeader(t *testing.T, h FileHeader) []byte {
	t.Helper()
	buf := make([]byte, FileHeaderSize)
	off := 0
	copy(buf[off:off+4], h.Magic[:])
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], h.Version)
	off += 2
	binary.LittleEndian.PutUint32(buf[off:], h.NumDimensions)
	off += 4
	buf[off] = h.Precision
	off++
	binary.LittleEndian.PutUint32(buf[off:], h.NumCards)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], h.CatalogOffset)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.CatalogCount)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], h.HeaderSize)
	off += 4
	copy(buf[off:off+32], h.CreationDate[:])
	off += 32
	copy(buf[off:off+64], h.SourceInfo[:])
	off += 64
	copy(buf[off:off+128], h.Comment[:])
	return buf
}

func TestReadFileHeader_RoundTrips(t *testing.T) {
	want := FileHeader{
		Magic:         Magic,
		Version:       1,
		NumDimensions: 2,
		Precision:     8,
		NumCards:      126,
		CatalogOffset: 512,
		CatalogCount:  126,
		HeaderSize:    FileHeaderSize,
	}
	copy(want.CreationDate[:], "2024-01-01")
	copy(want.SourceInfo[:], "opat-core test")
	copy(want.Comment[:], "round trip fixture")

	got, err := ReadFileHeader(bytes.NewReader(encodeFileHeader(t, want)))
	if err != nil {
		t.Fatalf("ReadFileHeader: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.CreationDateString() != "2024-01-01" {
		t.Fatalf("got creation date %q, want %q", got.CreationDateString(), "2024-01-01")
	}
	if got.SourceInfoString() != "opat-core test" {
		t.Fatalf("got source info %q", got.SourceInfoString())
	}
	if got.CommentString() != "round trip fixture" {
		t.Fatalf("got comment %q", got.CommentString())
	}
}

func TestReadFileHeader_RejectsBadMagic(t *testing.T) {
	h := FileHeader{Magic: [4]byte{'X', 'X', 'X', 'X'}, Version: 1, NumDimensions: 2}
	_, err := ReadFileHeader(bytes.NewReader(encodeFileHeader(t, h)))
	if err != ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestReadFileHeader_Truncated(t *testing.T) {
	_, err := ReadFileHeader(bytes.NewReader(make([]byte, 10)))
	if err == nil {
		t.Fatal("expected error on truncated header")
	}
}

func TestValidate_RejectsFutureVersion(t *testing.T) {
	h := FileHeader{Magic: Magic, Version: CurrentVersion + 1, NumDimensions: 2}
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestValidate_RejectsTooManyDimensions(t *testing.T) {
	h := FileHeader{Magic: Magic, Version: 1, NumDimensions: MaxDimensions + 1}
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for too many dimensions")
	}
}

func TestReadCardCatalogEntry_RoundTrips(t *testing.T) {
	const numDimensions = 2
	want := CardCatalogEntry{
		KeyValues:  []float64{0.35, 0.06},
		CardOffset: 4096,
		CardSize:   2048,
	}
	for i := range want.Checksum {
		want.Checksum[i] = byte(i)
	}

	buf := make([]byte, CardCatalogEntrySize(numDimensions))
	off := 0
	for _, v := range want.KeyValues {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}
	binary.LittleEndian.PutUint64(buf[off:], want.CardOffset)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], want.CardSize)
	off += 8
	copy(buf[off:], want.Checksum[:])

	got, err := ReadCardCatalogEntry(bytes.NewReader(buf), numDimensions)
	if err != nil {
		t.Fatalf("ReadCardCatalogEntry: %v", err)
	}
	if got.CardOffset != want.CardOffset || got.CardSize != want.CardSize || got.Checksum != want.Checksum {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want.KeyValues {
		if got.KeyValues[i] != want.KeyValues[i] {
			t.Fatalf("got key value %d = %v, want %v", i, got.KeyValues[i], want.KeyValues[i])
		}
	}
}

func TestReadCardCatalog_MultipleEntries(t *testing.T) {
	const numDimensions = 2
	entries := []CardCatalogEntry{
		{KeyValues: []float64{0.2, 0.0}, CardOffset: 0, CardSize: 1024},
		{KeyValues: []float64{0.35, 0.06}, CardOffset: 1024, CardSize: 1024},
	}

	var buf bytes.Buffer
	for _, e := range entries {
		for _, v := range e.KeyValues {
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, math.Float64bits(v))
			buf.Write(b)
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, e.CardOffset)
		buf.Write(b)
		binary.LittleEndian.PutUint64(b, e.CardSize)
		buf.Write(b)
		buf.Write(e.Checksum[:])
	}

	got, err := ReadCardCatalog(bytes.NewReader(buf.Bytes()), uint64(len(entries)), numDimensions)
	if err != nil {
		t.Fatalf("ReadCardCatalog: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	if got[1].CardOffset != 1024 {
		t.Fatalf("got offset %d, want 1024", got[1].CardOffset)
	}
}

func TestEncodeTag_RoundTrips(t *testing.T) {
	tag, err := EncodeTag("opacity")
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	if got := TagString(tag); got != "opacity" {
		t.Fatalf("got %q, want %q", got, "opacity")
	}
}

func TestEncodeTag_RejectsOverlong(t *testing.T) {
	_, err := EncodeTag("dOpacityDT")
	if err == nil {
		t.Fatal("expected error for overlong tag")
	}
}

func TestReadTableIndex_MultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	tag1, _ := EncodeTag("opacity")
	tag2, _ := EncodeTag("dOpacDT")
	for _, e := range []TableIndexEntry{
		{Tag: tag1, NumRows: 6, NumCols: 6, VectorSize: 1, DataOffset: 0, DataSize: 288},
		{Tag: tag2, NumRows: 6, NumCols: 6, VectorSize: 1, DataOffset: 288, DataSize: 288},
	} {
		b := make([]byte, TableIndexEntrySize)
		copy(b[0:TagSize], e.Tag[:])
		binary.LittleEndian.PutUint32(b[TagSize:], e.NumRows)
		binary.LittleEndian.PutUint32(b[TagSize+4:], e.NumCols)
		binary.LittleEndian.PutUint32(b[TagSize+8:], e.VectorSize)
		binary.LittleEndian.PutUint64(b[TagSize+12:], e.DataOffset)
		binary.LittleEndian.PutUint64(b[TagSize+20:], e.DataSize)
		buf.Write(b)
	}

	entries, err := ReadTableIndex(bytes.NewReader(buf.Bytes()), 2)
	if err != nil {
		t.Fatalf("ReadTableIndex: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if TagString(entries[0].Tag) != "opacity" {
		t.Fatalf("got tag %q, want opacity", TagString(entries[0].Tag))
	}
	if entries[1].DataOffset != 288 {
		t.Fatalf("got offset %d, want 288", entries[1].DataOffset)
	}
}
