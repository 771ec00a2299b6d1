package encryption

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ChunkSize is the plaintext size of every chunk except the last.
const ChunkSize = 64 * 1024

var magic = [4]byte{'S', 'P', 'K', 'E'}

const (
	// lastChunk marks the final chunk in both the length word and the nonce.
	lastChunk  = 1 << 31
	headerSize = len(magic) + 1
)

// ErrCorrupt is returned by Open for streams that fail authentication or
// are malformed.
var ErrCorrupt = errors.New("encryption: corrupt or truncated stream")

// Seal encrypts src into dst and returns the number of plaintext bytes.
//
// Layout: magic, algorithm byte, nonce prefix, then chunks of
// [uint32 length | last flag][ciphertext].
func (s *Sealer) Seal(dst io.Writer, src io.Reader) (int64, error) {
	prefix := make([]byte, s.aead.NonceSize()-5)
	if _, err := io.ReadFull(rand.Reader, prefix); err != nil {
		return 0, fmt.Errorf("encryption: nonce prefix: %w", err)
	}
	header := make([]byte, 0, headerSize+len(prefix))
	header = append(header, magic[:]...)
	header = append(header, s.algID)
	header = append(header, prefix...)
	if _, err := dst.Write(header); err != nil {
		return 0, err
	}

	cur := make([]byte, ChunkSize)
	next := make([]byte, ChunkSize)
	sealed := make([]byte, 0, ChunkSize+s.aead.Overhead())

	n, err := readChunk(src, cur)
	if err != nil {
		return 0, err
	}
	var total int64
	for counter := uint32(0); ; counter++ {
		m, err := readChunk(src, next)
		if err != nil {
			return total, err
		}
		last := m == 0

		sealed = s.aead.Seal(sealed[:0], nonce(prefix, counter, last), cur[:n], nil)
		word := uint32(len(sealed))
		if last {
			word |= lastChunk
		}
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], word)
		if _, err := dst.Write(lenBuf[:]); err != nil {
			return total, err
		}
		if _, err := dst.Write(sealed); err != nil {
			return total, err
		}
		total += int64(n)

		if last {
			return total, nil
		}
		if counter == ^uint32(0) {
			return total, fmt.Errorf("encryption: stream too long")
		}
		cur, next, n = next, cur, m
	}
}

// Open decrypts a stream written by Seal into dst and returns the number of
// plaintext bytes. Nothing after the last chunk is accepted.
func (s *Sealer) Open(dst io.Writer, src io.Reader) (int64, error) {
	header := make([]byte, headerSize+s.aead.NonceSize()-5)
	if _, err := io.ReadFull(src, header); err != nil {
		return 0, ErrCorrupt
	}
	if [4]byte(header[:4]) != magic {
		return 0, fmt.Errorf("encryption: not a sealed stream")
	}
	if header[4] != s.algID {
		return 0, fmt.Errorf("encryption: stream was sealed with another algorithm")
	}
	prefix := header[headerSize:]

	maxSealed := uint32(ChunkSize + s.aead.Overhead())
	buf := make([]byte, maxSealed)
	plain := make([]byte, 0, ChunkSize)
	var total int64
	for counter := uint32(0); ; counter++ {
		var lenBuf [4]byte
		if _, err := io.ReadFull(src, lenBuf[:]); err != nil {
			return total, ErrCorrupt
		}
		word := binary.BigEndian.Uint32(lenBuf[:])
		last := word&lastChunk != 0
		size := word &^ lastChunk
		if size > maxSealed {
			return total, ErrCorrupt
		}
		if _, err := io.ReadFull(src, buf[:size]); err != nil {
			return total, ErrCorrupt
		}

		var err error
		plain, err = s.aead.Open(plain[:0], nonce(prefix, counter, last), buf[:size], nil)
		if err != nil {
			return total, ErrCorrupt
		}
		if _, err := dst.Write(plain); err != nil {
			return total, err
		}
		total += int64(len(plain))

		if last {
			if n, _ := src.Read(buf[:1]); n > 0 {
				return total, ErrCorrupt
			}
			return total, nil
		}
	}
}

// nonce is prefix | big-endian counter | last flag.
func nonce(prefix []byte, counter uint32, last bool) []byte {
	n := make([]byte, len(prefix)+5)
	copy(n, prefix)
	binary.BigEndian.PutUint32(n[len(prefix):], counter)
	if last {
		n[len(n)-1] = 1
	}
	return n
}

// readChunk fills buf as far as src allows. A short read at end of stream
// is not an error.
func readChunk(src io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(src, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}
