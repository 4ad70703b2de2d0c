package minizip

import (
	"bytes"
	"crypto/rand"
	"io"
)

// EntryCipher wraps raw entry storage with decryption on read. It consumes
// any leading cipher header (zipcrypto's 12-byte verifier, or AES's
// salt+verifier) during construction, and checks any trailing
// authentication data at Close per §4.7.
type EntryCipher interface {
	io.ReadCloser
}

// EntryEncipher wraps raw entry storage with encryption on write, emitting
// any leading cipher header before the first payload byte and any trailing
// authentication data at Close.
type EntryEncipher interface {
	io.WriteCloser
}

// newDecipher builds the read-side cipher layer for fi, reading whatever
// header the chosen cipher needs from raw before the first payload byte.
// It returns raw unchanged when fi is not encrypted.
func newDecipher(raw io.Reader, fi *FileInfo, password string) (io.Reader, func() error, error) {
	if fi.Flags&flagEncrypted == 0 {
		return raw, func() error { return nil }, nil
	}
	if fi.AESVersion != 0 {
		return newAESDecipher(raw, fi, password)
	}
	return newZipCryptoDecipher(raw, fi, password)
}

// newEncipher builds the write-side cipher layer for fi, writing the cipher
// header to raw at once. The returned func writes any trailing
// authentication data and must be called after the last payload byte.
func newEncipher(raw io.Writer, fi *FileInfo, password string) (io.Writer, func() error, error) {
	if fi.Flags&flagEncrypted == 0 {
		return raw, func() error { return nil }, nil
	}
	if fi.AESVersion != 0 {
		return newAESEncipher(raw, fi, password)
	}
	return newZipCryptoEncipher(raw, fi, password)
}

type zipCryptoReader struct {
	r  io.Reader
	zc *zipCryptoCipher
}

func newZipCryptoDecipher(raw io.Reader, fi *FileInfo, password string) (io.Reader, func() error, error) {
	var header [12]byte
	if _, err := io.ReadFull(raw, header[:]); err != nil {
		return nil, nil, newError(CodeStream, "newZipCryptoDecipher", err)
	}
	zc := newZipCryptoCipher(password)
	var dec [12]byte
	for i, b := range header {
		dec[i] = zc.decryptByte(b)
	}
	want := zipCryptoVerifier(fi)
	if dec[10] != want[0] || dec[11] != want[1] {
		return nil, nil, newError(CodeParam, "newZipCryptoDecipher", ErrParam)
	}
	return &zipCryptoReader{r: raw, zc: zc}, func() error { return nil }, nil
}

func (r *zipCryptoReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] = r.zc.decryptByte(p[i])
	}
	return n, err
}

type zipCryptoWriter struct {
	w  io.Writer
	zc *zipCryptoCipher
}

func newZipCryptoEncipher(raw io.Writer, fi *FileInfo, password string) (io.Writer, func() error, error) {
	zc := newZipCryptoCipher(password)
	verifier := zipCryptoVerifier(fi)
	header := make([]byte, 12)
	if _, err := rand.Read(header[:10]); err != nil {
		return nil, nil, newError(CodeStream, "newZipCryptoEncipher", err)
	}
	header[10], header[11] = verifier[0], verifier[1]
	for i, b := range header {
		header[i] = zc.encryptByte(b)
	}
	if _, err := raw.Write(header); err != nil {
		return nil, nil, newError(CodeStream, "newZipCryptoEncipher", err)
	}
	return &zipCryptoWriter{w: raw, zc: zc}, func() error { return nil }, nil
}

func (w *zipCryptoWriter) Write(p []byte) (int, error) {
	enc := make([]byte, len(p))
	for i, b := range p {
		enc[i] = w.zc.encryptByte(b)
	}
	return w.w.Write(enc)
}

type aesDecipherReader struct {
	r      io.Reader
	stream *aesCipherStream
	// held keeps back the last aesAuthCodeLen bytes read from r: when r
	// ends they are the trailing authentication code, not ciphertext.
	held []byte
}

func newAESDecipher(raw io.Reader, fi *FileInfo, password string) (io.Reader, func() error, error) {
	saltLen := aesSaltLen(fi.AESMode)
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(raw, salt); err != nil {
		return nil, nil, newError(CodeStream, "newAESDecipher", err)
	}
	var verifier [aesVerifierLen]byte
	if _, err := io.ReadFull(raw, verifier[:]); err != nil {
		return nil, nil, newError(CodeStream, "newAESDecipher", err)
	}
	keys := deriveAESKeys(password, salt, fi.AESMode)
	if keys.verifier != verifier {
		return nil, nil, newError(CodeParam, "newAESDecipher", ErrParam)
	}
	stream, err := newAESCipherStream(keys)
	if err != nil {
		return nil, nil, err
	}
	r := &aesDecipherReader{r: raw, stream: stream}
	closeFn := func() error { return readAESAuthCode(io.MultiReader(bytes.NewReader(r.held), raw), stream) }
	return r, closeFn, nil
}

func (r *aesDecipherReader) Read(p []byte) (int, error) {
	buf := make([]byte, len(r.held)+len(p))
	have := copy(buf, r.held)
	n, err := r.r.Read(buf[have:])
	have += n
	release := have - aesAuthCodeLen
	if release < 0 {
		release = 0
	}
	r.held = append(r.held[:0], buf[release:have]...)
	copy(p, r.stream.decrypt(buf[:release]))
	return release, err
}

type aesEncipherWriter struct {
	w      io.Writer
	stream *aesCipherStream
}

func newAESEncipher(raw io.Writer, fi *FileInfo, password string) (io.Writer, func() error, error) {
	saltLen := aesSaltLen(fi.AESMode)
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, newError(CodeStream, "newAESEncipher", err)
	}
	keys := deriveAESKeys(password, salt, fi.AESMode)
	if _, err := raw.Write(salt); err != nil {
		return nil, nil, newError(CodeStream, "newAESEncipher", err)
	}
	if _, err := raw.Write(keys.verifier[:]); err != nil {
		return nil, nil, newError(CodeStream, "newAESEncipher", err)
	}
	stream, err := newAESCipherStream(keys)
	if err != nil {
		return nil, nil, err
	}
	w := &aesEncipherWriter{w: raw, stream: stream}
	closeFn := func() error {
		_, err := raw.Write(stream.authCode())
		return err
	}
	return w, closeFn, nil
}

func (w *aesEncipherWriter) Write(p []byte) (int, error) {
	ct := w.stream.encrypt(p)
	return w.w.Write(ct)
}
