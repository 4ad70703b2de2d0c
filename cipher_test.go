package minizip

import (
	"bytes"
	"io"
	"testing"
)

func TestZipCryptoRoundTrip(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted, CRC32: 0x11223344}
	plaintext := []byte("secret payload bytes")

	var raw bytes.Buffer
	w, _, err := newEncipher(&raw, fi, "hunter2")
	if err != nil {
		t.Fatalf("newEncipher: %v", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, closeFn, err := newDecipher(bytes.NewReader(raw.Bytes()), fi, "hunter2")
	if err != nil {
		t.Fatalf("newDecipher: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestZipCryptoWrongPasswordFailsVerifier(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted, CRC32: 0x11223344}

	var raw bytes.Buffer
	w, _, err := newEncipher(&raw, fi, "correct")
	if err != nil {
		t.Fatalf("newEncipher: %v", err)
	}
	if _, err := w.Write([]byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := newDecipher(bytes.NewReader(raw.Bytes()), fi, "wrong"); err == nil {
		t.Error("expected verifier mismatch with wrong password")
	}
}

func TestZipCryptoVerifierUsesDOSTimeWhenDataDescriptorFlagged(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted | flagDataDescriptor, CRC32: 0x11223344}
	_, modTime := timeToDOSDateTime(fi.ModifiedTime)
	want := byte(modTime >> 8)
	got := zipCryptoVerifier(fi)
	if got[0] != want || got[1] != want {
		t.Errorf("expected duplicated high time byte %#x, got %v", want, got)
	}
}

func TestAESRoundTrip(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted, AESVersion: 2, AESMode: AES256}
	plaintext := []byte("aes payload data that spans more than one block boundary")

	var raw bytes.Buffer
	w, wcloser, err := newEncipher(&raw, fi, "correcthorsebatterystaple")
	if err != nil {
		t.Fatalf("newEncipher: %v", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wcloser(); err != nil {
		t.Fatalf("encipher close: %v", err)
	}

	r, closeFn, err := newDecipher(bytes.NewReader(raw.Bytes()), fi, "correcthorsebatterystaple")
	if err != nil {
		t.Fatalf("newDecipher: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("auth code check: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestAESWrongPasswordFailsVerifier(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted, AESVersion: 2, AESMode: AES128}

	var raw bytes.Buffer
	w, wcloser, err := newEncipher(&raw, fi, "correct")
	if err != nil {
		t.Fatalf("newEncipher: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wcloser(); err != nil {
		t.Fatalf("encipher close: %v", err)
	}

	if _, _, err := newDecipher(bytes.NewReader(raw.Bytes()), fi, "wrong"); err == nil {
		t.Error("expected verifier mismatch with wrong password")
	}
}

func TestAESTamperedCiphertextFailsAuthCode(t *testing.T) {
	fi := &FileInfo{Flags: flagEncrypted, AESVersion: 2, AESMode: AES128}

	var raw bytes.Buffer
	w, wcloser, err := newEncipher(&raw, fi, "correct")
	if err != nil {
		t.Fatalf("newEncipher: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wcloser(); err != nil {
		t.Fatalf("encipher close: %v", err)
	}

	tampered := raw.Bytes()
	// Flip a bit in the ciphertext region (after salt+verifier).
	saltLen := aesSaltLen(fi.AESMode)
	tampered[saltLen+aesVerifierLen] ^= 0xFF

	r, closeFn, err := newDecipher(bytes.NewReader(tampered), fi, "correct")
	if err != nil {
		t.Fatalf("newDecipher: %v", err)
	}
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := closeFn(); err == nil {
		t.Error("expected auth code mismatch for tampered ciphertext")
	}
}
