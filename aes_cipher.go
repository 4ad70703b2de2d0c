package minizip

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"hash"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// WinZip AES (§4.7): PBKDF2-HMAC-SHA1 derives key||authKey||passwordVerifier
// from the password and a per-entry salt, stdlib crypto/aes in CTR mode
// carries the payload, and an HMAC-SHA1 truncated to 10 bytes authenticates
// it. pbkdf2 comes from golang.org/x/crypto (the corpus's key-derivation
// dependency); AES/CTR/HMAC/SHA1 are exact stdlib primitives the format
// mandates, not a library choice.
const (
	aesSaltLen16 = 8
	aesSaltLen24 = 12
	aesSaltLen32 = 16

	aesPBKDF2Iterations = 1000
	aesVerifierLen       = 2
	aesAuthCodeLen       = 10
)

func aesSaltLen(mode AESMode) int {
	switch mode {
	case AES128:
		return aesSaltLen16
	case AES192:
		return aesSaltLen24
	case AES256:
		return aesSaltLen32
	default:
		return 0
	}
}

type aesKeys struct {
	cryptKey []byte
	authKey  []byte
	verifier [aesVerifierLen]byte
}

// deriveAESKeys expands password+salt into the crypt key, auth key, and
// 2-byte password verifier per the WinZip AES key file format.
func deriveAESKeys(password string, salt []byte, mode AESMode) aesKeys {
	keyBytes := mode.keyBits() / 8
	total := keyBytes*2 + aesVerifierLen
	derived := pbkdf2.Key([]byte(password), salt, aesPBKDF2Iterations, total, sha1.New)

	var k aesKeys
	k.cryptKey = derived[:keyBytes]
	k.authKey = derived[keyBytes : keyBytes*2]
	copy(k.verifier[:], derived[keyBytes*2:])
	return k
}

// aesCTRStream is a little-endian-counter CTR keystream over block, matching
// the WinZip AES convention (counter starts at 1 and the first byte of the
// counter block increments fastest, unlike stdlib cipher.NewCTR's
// big-endian increment order, so the counter block is built by hand).
type aesCTRStream struct {
	block   cipher.Block
	counter uint64
	ks      [16]byte
	pos     int
}

func newAESCTRStream(block cipher.Block) *aesCTRStream {
	s := &aesCTRStream{block: block, counter: 1, pos: 16}
	return s
}

func (s *aesCTRStream) nextKeystreamByte() byte {
	if s.pos == 16 {
		var iv [16]byte
		// WinZip AES uses a little-endian counter in the first 8 bytes,
		// trailing 8 bytes zero.
		c := s.counter
		for i := 0; i < 8; i++ {
			iv[i] = byte(c)
			c >>= 8
		}
		s.block.Encrypt(s.ks[:], iv[:])
		s.counter++
		s.pos = 0
	}
	b := s.ks[s.pos]
	s.pos++
	return b
}

func (s *aesCTRStream) xor(dst, src []byte) {
	for i := range src {
		dst[i] = src[i] ^ s.nextKeystreamByte()
	}
}

type aesCipherStream struct {
	stream *aesCTRStream
	mac    hash.Hash
}

func newAESCipherStream(keys aesKeys) (*aesCipherStream, error) {
	block, err := aes.NewCipher(keys.cryptKey)
	if err != nil {
		return nil, newError(CodeInternal, "newAESCipherStream", err)
	}
	return &aesCipherStream{
		stream: newAESCTRStream(block),
		mac:    hmac.New(sha1.New, keys.authKey),
	}, nil
}

// decrypt decrypts ciphertext into a fresh slice, feeding the
// ciphertext (not the plaintext) to the running HMAC per the encrypt-then-MAC
// construction WinZip AES uses.
func (s *aesCipherStream) decrypt(ct []byte) []byte {
	s.mac.Write(ct)
	pt := make([]byte, len(ct))
	s.stream.xor(pt, ct)
	return pt
}

func (s *aesCipherStream) encrypt(pt []byte) []byte {
	ct := make([]byte, len(pt))
	s.stream.xor(ct, pt)
	s.mac.Write(ct)
	return ct
}

// authCode returns the 10-byte truncated HMAC-SHA1 appended after the
// ciphertext.
func (s *aesCipherStream) authCode() []byte {
	full := s.mac.Sum(nil)
	return full[:aesAuthCodeLen]
}

// readAESAuthCode reads and compares the trailing authentication code,
// returning ErrCRC on mismatch (AES-2 entries rely on this in place of the
// CRC32 check per §4.7).
func readAESAuthCode(r io.Reader, s *aesCipherStream) error {
	var got [aesAuthCodeLen]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return newError(CodeStream, "readAESAuthCode", err)
	}
	want := s.authCode()
	if !hmac.Equal(got[:], want) {
		return newError(CodeCRC, "readAESAuthCode", ErrCRC)
	}
	return nil
}
