// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minizip

import "time"

// ntfsEpochOffset100ns is the number of 100ns ticks between the NTFS epoch
// (1601-01-01 UTC) and the POSIX epoch (1970-01-01 UTC).
const ntfsEpochOffset100ns = 116444736000000000

// dosDateTimeToTime converts a packed MS-DOS date/time (2-second
// resolution) to a time.Time in UTC. Years are offset from 1980 and valid
// in [1980, 2107]; out-of-range components produce a zero time and false.
func dosDateTimeToTime(date, timeOfDay uint16) (time.Time, bool) {
	year := int(date>>9) + 1980
	month := int(date >> 5 & 0xf)
	day := int(date & 0x1f)
	hour := int(timeOfDay >> 11)
	minute := int(timeOfDay >> 5 & 0x3f)
	second := int(timeOfDay&0x1f) * 2

	if year < 1980 || year > 2107 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 58 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

// timeToDOSDateTime converts t to a packed MS-DOS date/time. t's year may
// be expressed (via the three tolerated ranges below, all collapsing to
// the same underlying 1980-based calendar before packing) as:
//
//   - [0, 79]    meaning 2000-2079
//   - [80, 207]  meaning 1980-based two-digit year (1980-2107)
//   - [1980, 2107] literal
//
// An out-of-range normalized value yields DOS date 0 (per spec).
func timeToDOSDateTime(t time.Time) (date, timeOfDay uint16) {
	year := t.Year()
	switch {
	case year >= 0 && year <= 79:
		year += 2000
	case year >= 80 && year <= 207:
		year += 1900
	}
	if year < 1980 || year > 2107 {
		return 0, 0
	}

	date = uint16(t.Day() + int(t.Month())<<5 + (year-1980)<<9)
	timeOfDay = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return
}

// ntfsTicksToTime converts NTFS 100ns ticks since 1601-01-01 UTC to a
// POSIX-seconds-resolution time.Time.
func ntfsTicksToTime(ticks int64) time.Time {
	return time.Unix((ticks-ntfsEpochOffset100ns)/10000000, 0).UTC()
}

// timeToNTFSTicks converts t to NTFS 100ns ticks since 1601-01-01 UTC.
func timeToNTFSTicks(t time.Time) int64 {
	return t.Unix()*10000000 + ntfsEpochOffset100ns
}
