// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minizip

import (
	"io"
	"time"
)

// OpenMode selects how Open drives the underlying stream, per §4.4.
type OpenMode int

const (
	// ModeRead opens an existing archive for entry-by-entry reading only.
	ModeRead OpenMode = iota
	// ModeWrite truncates (logically; the caller's stream is expected to
	// be empty or about to be) and builds a brand new archive.
	ModeWrite
	// ModeAppend opens an existing archive, preserving its entries'
	// bytes untouched, and allows writing new entries after them.
	ModeAppend
)

// OpenOptions configures Open. The zero value is a valid OpenOptions.
type OpenOptions struct {
	Logger Logger
}

// entryState tracks whether an OpenEntry/CreateEntry stream is currently
// outstanding, per the data model's entry_scanned/entry_opened states.
type entryState int

const (
	stateIdle entryState = iota
	stateEntryOpen
)

// Archive is the stateful cursor over one ZIP stream: the data model of
// §3 rendered as a Go handle. A single entry may be open for read or write
// at a time; the cursor selects which cataloged entry OpenEntry/Stat acts
// on next.
type Archive struct {
	storage *storageStream
	mode    OpenMode
	logger  Logger

	entries []*FileInfo
	cursor  int

	cdStage         *memoryStream
	diskOffsetShift int64
	comment         string
	diskNumber      uint16
	cdDiskNumber    uint16

	state     entryState
	liveEntry io.Closer
}

// Open drives rws according to mode, cataloging existing entries for
// ModeRead/ModeAppend by discovering and walking the central directory
// (§4.1), or starting an empty catalog for ModeWrite.
func Open(rws io.ReadWriteSeeker, mode OpenMode, opts *OpenOptions) (*Archive, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	a := &Archive{storage: newStorageStream(rws), mode: mode, logger: logger, cursor: -1}

	switch mode {
	case ModeWrite:
		a.cdStage = newMemoryStream()
		return a, nil

	case ModeRead, ModeAppend:
		info, err := discoverEOCD(rws)
		if err != nil {
			return nil, err
		}
		a.diskOffsetShift = info.diskOffsetShift
		if info.diskOffsetShift != 0 {
			logger.Warnf("central directory offset corrected by %d bytes (producer bug compensation)", info.diskOffsetShift)
		}
		a.comment = string(info.comment)
		a.diskNumber = uint16(info.diskNumber)
		a.cdDiskNumber = uint16(info.cdDiskNumber)

		if _, err := rws.Seek(int64(info.cdOffset), whenceStart); err != nil {
			return nil, newError(CodeStream, "Open", err)
		}
		for i := uint64(0); i < info.entryCount; i++ {
			fi, err := readHeader(rws, false)
			if err != nil {
				if IsEndOfList(err) {
					break
				}
				return nil, err
			}
			a.entries = append(a.entries, fi)
		}
		logger.Debugf("cataloged %d entries", len(a.entries))

		if mode == ModeAppend {
			a.cdStage = newMemoryStream()
			for _, fi := range a.entries {
				// The corrected offset is adopted going forward: once this
				// archive is rewritten, the producer bug no longer needs
				// compensating on the next open.
				fi.LocalHeaderOffset = uint64(int64(fi.LocalHeaderOffset) + a.diskOffsetShift)
				encrypted := fi.Flags&flagEncrypted != 0
				if err := writeHeader(a.cdStage, fi, false, encrypted); err != nil {
					return nil, err
				}
			}
			a.diskOffsetShift = 0
			if _, err := rws.Seek(int64(info.cdOffset), whenceStart); err != nil {
				return nil, newError(CodeStream, "Open", err)
			}
		}
		return a, nil

	default:
		return nil, newError(CodeParam, "Open", ErrParam)
	}
}

// EntryCount returns the number of cataloged entries.
func (a *Archive) EntryCount() int { return len(a.entries) }

// Comment returns the archive-level comment discovered in the EOCD record
// (ModeRead/ModeAppend) or set via SetComment (ModeWrite/ModeAppend).
func (a *Archive) Comment() string { return a.comment }

// SetComment sets the archive-level comment Close will emit.
func (a *Archive) SetComment(comment string) { a.comment = comment }

// CurrentEntry returns the cataloged entry the cursor currently points at.
func (a *Archive) CurrentEntry() (*FileInfo, error) {
	if a.cursor < 0 || a.cursor >= len(a.entries) {
		return nil, newError(CodeParam, "CurrentEntry", ErrParam)
	}
	return a.entries[a.cursor], nil
}

// GotoFirst moves the cursor to the first cataloged entry.
func (a *Archive) GotoFirst() error {
	if len(a.entries) == 0 {
		return newError(CodeEndOfList, "GotoFirst", ErrEndOfList)
	}
	a.cursor = 0
	return nil
}

// GotoNext advances the cursor by one entry.
func (a *Archive) GotoNext() error {
	if a.cursor+1 >= len(a.entries) {
		return newError(CodeEndOfList, "GotoNext", ErrEndOfList)
	}
	a.cursor++
	return nil
}

// GotoEntry moves the cursor directly to the entry at index pos.
func (a *Archive) GotoEntry(pos int) error {
	if pos < 0 || pos >= len(a.entries) {
		return newError(CodeParam, "GotoEntry", ErrParam)
	}
	a.cursor = pos
	return nil
}

// LocateEntry moves the cursor to the entry named name, comparing
// slash-normalized and optionally case-insensitively (§4.4, §8 scenario 5).
func (a *Archive) LocateEntry(name string, ignoreCase bool) error {
	for i, fi := range a.entries {
		if pathEqual(fi.Name, name, ignoreCase) {
			a.cursor = i
			return nil
		}
	}
	return newError(CodeExist, "LocateEntry", ErrNotExist)
}

// EntryMatcher decides whether an entry satisfies a LocateFirstEntry/
// LocateNextEntry search.
type EntryMatcher func(*FileInfo) bool

// LocateFirstEntry moves the cursor to the first entry satisfying match.
func (a *Archive) LocateFirstEntry(match EntryMatcher) error {
	for i, fi := range a.entries {
		if match(fi) {
			a.cursor = i
			return nil
		}
	}
	return newError(CodeEndOfList, "LocateFirstEntry", ErrEndOfList)
}

// LocateNextEntry continues a LocateFirstEntry search from just after the
// cursor.
func (a *Archive) LocateNextEntry(match EntryMatcher) error {
	for i := a.cursor + 1; i < len(a.entries); i++ {
		if match(a.entries[i]) {
			a.cursor = i
			return nil
		}
	}
	return newError(CodeEndOfList, "LocateNextEntry", ErrEndOfList)
}

// Stat returns a copy of the cataloged entry named name without moving the
// cursor, a convenience supplementing spec.md's cursor-only lookups.
func (a *Archive) Stat(name string) (*FileInfo, error) {
	for _, fi := range a.entries {
		if pathEqual(fi.Name, name, false) {
			cp := *fi
			return &cp, nil
		}
	}
	return nil, newError(CodeExist, "Stat", ErrNotExist)
}

// archiveEntryReader resets the archive's entry_opened state back to idle
// once the caller finishes reading, allowing the next OpenEntry/CreateEntry.
type archiveEntryReader struct {
	a     *Archive
	inner io.ReadCloser
}

func (r *archiveEntryReader) Read(p []byte) (int, error) { return r.inner.Read(p) }

func (r *archiveEntryReader) Close() error {
	err := r.inner.Close()
	r.a.state = stateIdle
	r.a.liveEntry = nil
	return err
}

// OpenEntry opens the cataloged entry under the cursor for reading,
// decrypting with password if it is encrypted (ignored otherwise).
func (a *Archive) OpenEntry(password string) (io.ReadCloser, error) {
	if a.mode == ModeWrite {
		return nil, newError(CodeParam, "OpenEntry", ErrParam)
	}
	if a.state != stateIdle {
		return nil, newError(CodeParam, "OpenEntry", ErrParam)
	}
	fi, err := a.CurrentEntry()
	if err != nil {
		return nil, err
	}

	offset := int64(fi.LocalHeaderOffset) + a.diskOffsetShift
	if _, err := a.storage.Seek(offset, whenceStart); err != nil {
		return nil, newError(CodeStream, "OpenEntry", err)
	}
	local, err := readHeader(a.storage, true)
	if err != nil {
		return nil, err
	}

	// The central directory record is authoritative for sizes/CRC/attrs;
	// the local header only tells us exactly where the payload starts and
	// confirms the method/flags/AES parameters actually used.
	merged := *fi
	merged.Flags = local.Flags
	merged.Method = local.Method
	merged.AESVersion = local.AESVersion
	merged.AESMode = local.AESMode

	r, err := openReadEntry(a.storage, &merged, password)
	if err != nil {
		return nil, err
	}
	a.state = stateEntryOpen
	entry := &archiveEntryReader{a: a, inner: r}
	a.liveEntry = entry
	return entry, nil
}

// archiveEntryWriter finalizes the entry on Close: writes the trailing data
// descriptor, appends the central directory record to the staging buffer,
// and resets the archive's entry_opened state.
type archiveEntryWriter struct {
	a     *Archive
	fi    *FileInfo
	inner io.WriteCloser
}

func (w *archiveEntryWriter) Write(p []byte) (int, error) { return w.inner.Write(p) }

func (w *archiveEntryWriter) Close() error {
	if err := w.inner.Close(); err != nil {
		return err
	}
	if _, err := w.a.storage.Write(dataDescriptor(w.fi)); err != nil {
		return newError(CodeStream, "Close", err)
	}
	encrypted := w.fi.Flags&flagEncrypted != 0
	if err := writeHeader(w.a.cdStage, w.fi, false, encrypted); err != nil {
		return err
	}
	w.a.entries = append(w.a.entries, w.fi)
	w.a.state = stateIdle
	w.a.liveEntry = nil
	return nil
}

// CreateEntry begins writing a new entry described by fi. fi.Name and
// fi.Method must already be set; ModifiedTime defaults to now if zero.
// Sizes and CRC32 are discovered at Close time and emitted via a trailing
// data descriptor (§4.6), since a Writer doesn't know them in advance.
// password, if non-empty, enables encryption (AES when fi.AESMode is set,
// zipcrypto otherwise).
func (a *Archive) CreateEntry(fi *FileInfo, password string, level int) (io.WriteCloser, error) {
	if a.mode == ModeRead {
		return nil, newError(CodeParam, "CreateEntry", ErrParam)
	}
	if a.state != stateIdle {
		return nil, newError(CodeParam, "CreateEntry", ErrParam)
	}
	if fi.Name == "" {
		return nil, newError(CodeParam, "CreateEntry", ErrParam)
	}

	pos, err := a.storage.Tell()
	if err != nil {
		return nil, newError(CodeStream, "CreateEntry", err)
	}
	fi.LocalHeaderOffset = uint64(pos)
	fi.Flags |= flagDataDescriptor
	if fi.ModifiedTime.IsZero() {
		fi.ModifiedTime = time.Now()
	}
	if fi.VersionMadeBy == 0 {
		fi.VersionMadeBy = uint16(creatorUnix)<<8 | versionBase
	}
	if password != "" {
		fi.Flags |= flagEncrypted
		if fi.AESMode != AESNone && fi.AESVersion == 0 {
			fi.AESVersion = 2 // AE-2: skip the redundant CRC32 check, rely on the HMAC.
		}
	}
	encrypted := fi.Flags&flagEncrypted != 0

	// Settle the method and flags openWriteEntry uses before the local
	// header records them.
	if fi.IsDir() || level == 0 {
		fi.Method = MethodStore
	}
	if fi.Method == MethodDeflate {
		fi.Flags |= deflateFlagsForLevel(level)
	}
	if fi.Method == MethodLZMA {
		fi.Flags |= flagLZMAEOSMarker
	}

	if err := writeHeader(a.storage, fi, true, encrypted); err != nil {
		return nil, err
	}

	w, err := openWriteEntry(a.storage, fi, password, level)
	if err != nil {
		return nil, err
	}

	a.state = stateEntryOpen
	entry := &archiveEntryWriter{a: a, fi: fi, inner: w}
	a.liveEntry = entry
	return entry, nil
}

// Close finalizes a ModeWrite/ModeAppend archive: flushes the staged
// central directory and emits the EOCD chain (§4.2). ModeRead archives
// need no finalization. If an entry is still open under OpenEntry/
// CreateEntry, Close closes it first and returns its error instead of the
// caller having to do so itself.
func (a *Archive) Close() error {
	if a.liveEntry != nil {
		if err := a.liveEntry.Close(); err != nil {
			return err
		}
	}
	if a.mode == ModeRead {
		return nil
	}

	cdOffset, err := a.storage.Tell()
	if err != nil {
		return newError(CodeStream, "Close", err)
	}
	cdBytes := a.cdStage.Bytes()
	if _, err := a.storage.Write(cdBytes); err != nil {
		return newError(CodeStream, "Close", err)
	}

	return emitEOCD(a.storage, uint64(cdOffset), uint64(len(cdBytes)), uint64(len(a.entries)), a.comment, a.diskNumber, a.cdDiskNumber)
}
