// Package encryption seals archived audio at rest with an AEAD cipher.
//
// Files are sealed as a sequence of independently authenticated chunks, so
// recordings of any length stream through a fixed buffer. The last chunk is
// marked in its nonce: a truncated or reordered stream fails to open.
//
//	s, err := encryption.New(passphrase, encryption.AlgorithmChaCha20)
//	_, err = s.Seal(dst, src)
//	_, err = s.Open(plain, dst)
package encryption
