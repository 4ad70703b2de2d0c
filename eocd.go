// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minizip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// eocdSearchWindow bounds the backward scan per §4.1: min(file_size,
// 65535+22) bytes, accommodating the largest possible archive comment.
const eocdSearchWindow = 65535 + eocdLen

// eocdInfo is the resolved (post ZIP64-upgrade, post producer-bug
// compensation) state needed to locate the central directory.
type eocdInfo struct {
	diskNumber     uint16
	cdDiskNumber   uint16
	entriesOnDisk  uint64
	entryCount     uint64
	cdSize         uint64
	cdOffset       uint64
	comment        []byte
	eocdPos        int64
	versionMadeBy  uint16
	diskOffsetShift int64
}

var eocdSigBytes = leU32Bytes(sigEOCD)
var zip64LocSigBytes = leU32Bytes(sigZip64Locator)
var zip64EOCDSigBytes = leU32Bytes(sigZip64EOCD)
var cdfhSigBytes = leU32Bytes(sigCentralHeader)

func leU32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// discoverEOCD locates the classic and, if present, ZIP64 EOCD chain,
// resolving the central directory extents, per §4.1. src must support
// Seek to End to learn the archive size.
func discoverEOCD(src io.ReadSeeker) (*eocdInfo, error) {
	size, err := src.Seek(0, whenceEnd)
	if err != nil {
		return nil, newError(CodeStream, "discoverEOCD", err)
	}

	window := int64(eocdSearchWindow)
	if window > size {
		window = size
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	bb.B = append(bb.B[:0], make([]byte, window)...)
	if _, err := src.Seek(size-window, whenceStart); err != nil {
		return nil, newError(CodeStream, "discoverEOCD", err)
	}
	if _, err := io.ReadFull(src, bb.B); err != nil {
		return nil, newError(CodeStream, "discoverEOCD", err)
	}

	idx := bytes.LastIndex(bb.B, eocdSigBytes)
	if idx < 0 {
		return nil, newError(CodeFormat, "discoverEOCD", fmt.Errorf("EOCD signature not found"))
	}
	eocdPos := size - window + int64(idx)

	rec := bb.B[idx:]
	if len(rec) < eocdLen {
		return nil, newError(CodeFormat, "discoverEOCD", fmt.Errorf("truncated EOCD"))
	}

	info := &eocdInfo{eocdPos: eocdPos}
	info.diskNumber = binary.LittleEndian.Uint16(rec[4:6])
	info.cdDiskNumber = binary.LittleEndian.Uint16(rec[6:8])
	info.entriesOnDisk = uint64(binary.LittleEndian.Uint16(rec[8:10]))
	info.entryCount = uint64(binary.LittleEndian.Uint16(rec[10:12]))
	info.cdSize = uint64(binary.LittleEndian.Uint32(rec[12:16]))
	info.cdOffset = uint64(binary.LittleEndian.Uint32(rec[16:20]))
	commentLen := binary.LittleEndian.Uint16(rec[20:22])
	if len(rec) >= eocdLen+int(commentLen) {
		info.comment = append([]byte(nil), rec[eocdLen:eocdLen+int(commentLen)]...)
	}

	needsZip64 := info.entryCount == uint64(uint16Max) ||
		info.cdOffset == uint64(uint32Max) ||
		info.cdSize == uint64(uint32Max)

	if needsZip64 {
		if err := upgradeToZip64(src, info); err != nil {
			return nil, err
		}
	}

	if err := compensateProducerBug(src, info); err != nil {
		return nil, err
	}

	if info.eocdPos < int64(info.cdOffset+info.cdSize) {
		return nil, newError(CodeFormat, "discoverEOCD", fmt.Errorf("central directory extends past EOCD"))
	}

	return info, nil
}

// upgradeToZip64 reads the ZIP64 locator at eocdPos-20 and the ZIP64 EOCD
// it points to, superseding the classic fields.
func upgradeToZip64(src io.ReadSeeker, info *eocdInfo) error {
	locPos := info.eocdPos - zip64LocatorLen
	if locPos < 0 {
		return newError(CodeFormat, "upgradeToZip64", fmt.Errorf("archive too small for ZIP64 locator"))
	}
	if _, err := src.Seek(locPos, whenceStart); err != nil {
		return newError(CodeStream, "upgradeToZip64", err)
	}
	loc := make([]byte, zip64LocatorLen)
	if _, err := io.ReadFull(src, loc); err != nil {
		return newError(CodeStream, "upgradeToZip64", err)
	}
	if !bytes.Equal(loc[0:4], zip64LocSigBytes) {
		return newError(CodeFormat, "upgradeToZip64", fmt.Errorf("ZIP64 locator not found where expected"))
	}
	zip64EOCDOffset := binary.LittleEndian.Uint64(loc[8:16])

	if _, err := src.Seek(int64(zip64EOCDOffset), whenceStart); err != nil {
		return newError(CodeStream, "upgradeToZip64", err)
	}
	rec := make([]byte, zip64EOCDLen)
	if _, err := io.ReadFull(src, rec); err != nil {
		return newError(CodeStream, "upgradeToZip64", err)
	}
	if !bytes.Equal(rec[0:4], zip64EOCDSigBytes) {
		return newError(CodeFormat, "upgradeToZip64", fmt.Errorf("ZIP64 EOCD not found where locator claims"))
	}

	info.versionMadeBy = binary.LittleEndian.Uint16(rec[12:14])
	info.diskNumber = uint16(binary.LittleEndian.Uint32(rec[16:20]))
	info.cdDiskNumber = uint16(binary.LittleEndian.Uint32(rec[20:24]))
	info.entriesOnDisk = binary.LittleEndian.Uint64(rec[24:32])
	info.entryCount = binary.LittleEndian.Uint64(rec[32:40])
	info.cdSize = binary.LittleEndian.Uint64(rec[40:48])
	info.cdOffset = binary.LittleEndian.Uint64(rec[48:56])
	return nil
}

// compensateProducerBug implements §4.1's tolerance for archives whose
// central directory was shifted after creation without rewriting offsets:
// if cd_offset doesn't point at a central-file-header signature, but
// eocd_pos-cd_size does, adopt the corrected offset and record the shift.
func compensateProducerBug(src io.ReadSeeker, info *eocdInfo) error {
	sig, err := readSig(src, int64(info.cdOffset))
	if err != nil {
		return err
	}
	if bytes.Equal(sig, cdfhSigBytes) {
		return nil
	}

	altOffset := info.eocdPos - int64(info.cdSize)
	if altOffset < 0 {
		return newError(CodeFormat, "compensateProducerBug", fmt.Errorf("central directory offset is invalid and no compensation applies"))
	}
	altSig, err := readSig(src, altOffset)
	if err != nil {
		return err
	}
	if !bytes.Equal(altSig, cdfhSigBytes) {
		return newError(CodeFormat, "compensateProducerBug", fmt.Errorf("central directory offset is invalid and no compensation applies"))
	}

	info.diskOffsetShift = altOffset - int64(info.cdOffset)
	info.cdOffset = uint64(altOffset)
	return nil
}

func readSig(src io.ReadSeeker, pos int64) ([]byte, error) {
	if _, err := src.Seek(pos, whenceStart); err != nil {
		return nil, newError(CodeStream, "readSig", err)
	}
	b := make([]byte, 4)
	if _, err := io.ReadFull(src, b); err != nil {
		return nil, newError(CodeStream, "readSig", err)
	}
	return b, nil
}

// emitEOCD writes, after the central directory the caller has already
// written to dst, a ZIP64 EOCD+locator (iff cdOffset>=0xFFFFFFFF or
// entryCount>=0xFFFF, so a classic field never holds its sentinel value
// without a ZIP64 record behind it) followed by the classic EOCD (always
// emitted, with clamped sentinel fields), then the archive comment.
func emitEOCD(dst io.Writer, cdOffset uint64, cdSize uint64, entryCount uint64, comment string, diskNumber uint16, cdDiskNumber uint16) error {
	needsZip64 := cdOffset >= uint64(uint32Max) || entryCount >= uint64(uint16Max)

	if needsZip64 {
		var bw binWriter
		bw.u32(sigZip64EOCD)
		bw.u64(zip64EOCDLen - 12)
		bw.u16(versionZip64)
		bw.u16(versionZip64)
		bw.u32(uint32(diskNumber))
		bw.u32(uint32(cdDiskNumber))
		bw.u64(entryCount)
		bw.u64(entryCount)
		bw.u64(cdSize)
		bw.u64(cdOffset)

		bw.u32(sigZip64Locator)
		bw.u32(uint32(cdDiskNumber))
		bw.u64(cdOffset + cdSize)
		bw.u32(1)

		if _, err := dst.Write(bw.buf); err != nil {
			return newError(CodeStream, "emitEOCD", err)
		}
	}

	var bw binWriter
	bw.u32(sigEOCD)
	bw.u16(diskNumber)
	bw.u16(cdDiskNumber)
	if entryCount >= uint64(uint16Max) {
		bw.u16(uint16(uint16Max))
		bw.u16(uint16(uint16Max))
	} else {
		bw.u16(uint16(entryCount))
		bw.u16(uint16(entryCount))
	}
	if cdSize >= uint64(uint32Max) {
		bw.u32(uint32Max)
	} else {
		bw.u32(uint32(cdSize))
	}
	if cdOffset >= uint64(uint32Max) {
		bw.u32(uint32Max)
	} else {
		bw.u32(uint32(cdOffset))
	}
	if len(comment) > int(uint16Max) {
		return newError(CodeParam, "emitEOCD", fmt.Errorf("comment too long"))
	}
	bw.u16(uint16(len(comment)))
	bw.string(comment)

	_, err := dst.Write(bw.buf)
	if err != nil {
		return newError(CodeStream, "emitEOCD", err)
	}
	return nil
}
