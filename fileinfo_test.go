package minizip

import (
	"bytes"
	"os"
	"testing"
	"time"
)

func TestWriteHeaderReadHeaderRoundTripLocal(t *testing.T) {
	fi := &FileInfo{
		Name:             "docs/readme.txt",
		Method:           MethodDeflate,
		ModifiedTime:     time.Date(2026, time.July, 30, 10, 0, 0, 0, time.UTC),
		CRC32:            0xDEADBEEF,
		CompressedSize:   123,
		UncompressedSize: 456,
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	got, err := readHeader(&buf, true)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.Name != fi.Name || got.CRC32 != fi.CRC32 ||
		got.CompressedSize != fi.CompressedSize || got.UncompressedSize != fi.UncompressedSize {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.ModifiedTime.Equal(fi.ModifiedTime) {
		t.Errorf("modified time mismatch: %v vs %v", got.ModifiedTime, fi.ModifiedTime)
	}
}

func TestWriteHeaderReadHeaderRoundTripCentral(t *testing.T) {
	fi := &FileInfo{
		Name:              "bin/tool",
		Method:            MethodStore,
		ModifiedTime:      time.Date(2020, time.January, 2, 3, 4, 0, 0, time.UTC),
		CRC32:             0x12345678,
		CompressedSize:    10,
		UncompressedSize:  10,
		LocalHeaderOffset: 4096,
		VersionMadeBy:     uint16(creatorUnix) << 8,
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, false, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	got, err := readHeader(&buf, false)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.LocalHeaderOffset != fi.LocalHeaderOffset {
		t.Errorf("offset mismatch: got %d want %d", got.LocalHeaderOffset, fi.LocalHeaderOffset)
	}
	if got.VersionMadeBy != fi.VersionMadeBy {
		t.Errorf("version made by mismatch: got %#x want %#x", got.VersionMadeBy, fi.VersionMadeBy)
	}
}

func TestWriteHeaderZip64OnlyOversizedFieldsInExtra(t *testing.T) {
	// Only CompressedSize is oversized; the ZIP64 extra must carry exactly
	// that one field; LocalHeaderOffset must not appear since this is a
	// local header.
	fi := &FileInfo{
		Name:             "big.bin",
		Method:           MethodStore,
		ModifiedTime:     time.Now(),
		CompressedSize:   uint64(uint32Max) + 1,
		UncompressedSize: 10,
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	got, err := readHeader(&buf, true)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.CompressedSize != fi.CompressedSize {
		t.Errorf("compressed size not recovered via zip64 extra: got %d", got.CompressedSize)
	}
	if got.UncompressedSize != fi.UncompressedSize {
		t.Errorf("uncompressed size corrupted: got %d want %d", got.UncompressedSize, fi.UncompressedSize)
	}
}

func TestWriteHeaderZip64ForcePolicyForcesSentinels(t *testing.T) {
	fi := &FileInfo{
		Name:              "small.bin",
		Method:            MethodStore,
		ModifiedTime:      time.Now(),
		CompressedSize:    5,
		UncompressedSize:  5,
		LocalHeaderOffset: 0,
		Zip64:             Zip64Force,
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, false, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	raw := buf.Bytes()
	// Central header compressed/uncompressed size fields sit at offsets 20
	// and 24 relative to the record start; offset field at 42.
	gotComp := uint32(raw[20]) | uint32(raw[21])<<8 | uint32(raw[22])<<16 | uint32(raw[23])<<24
	gotUnc := uint32(raw[24]) | uint32(raw[25])<<8 | uint32(raw[26])<<16 | uint32(raw[27])<<24
	gotOff := uint32(raw[42]) | uint32(raw[43])<<8 | uint32(raw[44])<<16 | uint32(raw[45])<<24
	if gotComp != uint32Max || gotUnc != uint32Max || gotOff != uint32Max {
		t.Fatalf("Zip64Force did not sentinel classic fields: comp=%#x unc=%#x off=%#x", gotComp, gotUnc, gotOff)
	}

	got, err := readHeader(bytes.NewReader(raw), false)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.CompressedSize != fi.CompressedSize || got.UncompressedSize != fi.UncompressedSize ||
		got.LocalHeaderOffset != fi.LocalHeaderOffset {
		t.Errorf("forced entry did not round trip real values: %+v", got)
	}
}

func TestWriteHeaderZip64LocalHeaderNeverCarriesOffset(t *testing.T) {
	fi := &FileInfo{
		Name:              "huge.bin",
		Method:            MethodStore,
		ModifiedTime:      time.Now(),
		CompressedSize:    10,
		UncompressedSize:  10,
		LocalHeaderOffset: uint64(uint32Max) + 1000,
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	// A local header has no offset field at all, so an oversized
	// LocalHeaderOffset alone must not trigger zip64 promotion or an
	// extra subfield.
	got, err := readHeader(&buf, true)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	fields, err := parseExtra(&FileInfo{}, got.Extra)
	if err != nil {
		t.Fatalf("parseExtra: %v", err)
	}
	if hasExtraID(fields, zip64ExtraIDTag) {
		t.Error("expected no zip64 extra field")
	}
}

func TestWriteHeaderDirectoryNameSuffix(t *testing.T) {
	fi := &FileInfo{
		Name:         "somedir",
		ModifiedTime: time.Now(),
	}
	fi.SetMode(0755 | os.ModeDir)
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, false, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	got, err := readHeader(&buf, false)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.Name != "somedir/" {
		t.Errorf("expected trailing slash normalisation, got %q", got.Name)
	}
}

func TestDetectUTF8(t *testing.T) {
	if valid, require := detectUTF8("plain.txt"); !valid || require {
		t.Errorf("plain ASCII should not require UTF-8 flag: valid=%v require=%v", valid, require)
	}
	if valid, require := detectUTF8("café.txt"); !valid || !require {
		t.Errorf("non-ASCII name should require UTF-8 flag: valid=%v require=%v", valid, require)
	}
}

func TestParseExtraUnknownTagRoundTrips(t *testing.T) {
	fi := &FileInfo{Extra: []byte{0x99, 0x88, 2, 0, 0xAB, 0xCD}}
	fields, err := parseExtra(&FileInfo{}, fi.Extra)
	if err != nil {
		t.Fatalf("parseExtra: %v", err)
	}
	if len(fields) != 1 || fields[0].id != 0x8899 {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestWriteHeaderSetsUTF8FlagForNonASCIINames(t *testing.T) {
	fi := &FileInfo{Name: "café.txt", Method: MethodStore, ModifiedTime: time.Now()}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	if fi.Flags&flagUTF8 == 0 {
		t.Error("expected flagUTF8 set for non-ASCII name")
	}

	ascii := &FileInfo{Name: "plain.txt", Method: MethodStore, ModifiedTime: time.Now()}
	buf.Reset()
	if err := writeHeader(&buf, ascii, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	if ascii.Flags&flagUTF8 != 0 {
		t.Error("expected flagUTF8 unset for plain ASCII name")
	}
}

func TestBuildExtraEmitsExtendedTimestamp(t *testing.T) {
	fi := &FileInfo{
		Name:         "stamped.txt",
		Method:       MethodStore,
		ModifiedTime: time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC),
		AccessedTime: time.Date(2026, time.July, 29, 12, 0, 0, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, fi, true, false); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	got, err := readHeader(&buf, true)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if !got.ModifiedTime.Equal(fi.ModifiedTime) {
		t.Errorf("extended timestamp modified time not recovered: got %v want %v", got.ModifiedTime, fi.ModifiedTime)
	}
	if !got.AccessedTime.Equal(fi.AccessedTime) {
		t.Errorf("extended timestamp accessed time not recovered: got %v want %v", got.AccessedTime, fi.AccessedTime)
	}
}
