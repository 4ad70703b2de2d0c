package minizip

import "hash/crc32"

// zipCryptoCipher implements the traditional PKZIP stream cipher. It is
// small enough (three 32-bit key registers updated from a CRC32 table)
// that no corpus dependency is worth pulling in over this direct
// rendering of the algorithm (see DESIGN.md).
type zipCryptoCipher struct {
	key0, key1, key2 uint32
}

func newZipCryptoCipher(password string) *zipCryptoCipher {
	c := &zipCryptoCipher{key0: 0x12345678, key1: 0x23456789, key2: 0x34567890}
	for i := 0; i < len(password); i++ {
		c.updateKeys(password[i])
	}
	return c
}

func (c *zipCryptoCipher) updateKeys(b byte) {
	c.key0 = crc32.Update(c.key0, crc32.IEEETable, []byte{b ^ byte(c.key0)})
	c.key1 += c.key0 & 0xff
	c.key1 = c.key1*134775813 + 1
	c.key2 = crc32.Update(c.key2, crc32.IEEETable, []byte{byte(c.key1 >> 24)})
}

func (c *zipCryptoCipher) streamByte() byte {
	temp := uint16(c.key2 | 2)
	return byte((temp * (temp ^ 1)) >> 8)
}

// decryptByte decrypts a single ciphertext byte, updating the cipher state
// with the resulting plaintext byte.
func (c *zipCryptoCipher) decryptByte(ct byte) byte {
	pt := ct ^ c.streamByte()
	c.updateKeys(pt)
	return pt
}

// encryptByte encrypts a single plaintext byte, updating the cipher state
// with that same plaintext byte.
func (c *zipCryptoCipher) encryptByte(pt byte) byte {
	ct := pt ^ c.streamByte()
	c.updateKeys(pt)
	return ct
}

// zipCryptoVerifier computes the 2-byte header verifier per §4.7: when
// flagDataDescriptor is set, the high byte of the DOS-encoded modified
// time (duplicated into both verifier bytes, the conventional rendering
// since the time field itself is only 16 bits); otherwise bytes 2 and 3
// of the CRC32 (its two most-significant bytes).
func zipCryptoVerifier(fi *FileInfo) [2]byte {
	if fi.Flags&flagDataDescriptor != 0 {
		_, modTime := timeToDOSDateTime(fi.ModifiedTime)
		hi := byte(modTime >> 8)
		return [2]byte{hi, hi}
	}
	return [2]byte{byte(fi.CRC32 >> 16), byte(fi.CRC32 >> 24)}
}
