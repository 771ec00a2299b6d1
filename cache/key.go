package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"lukechampine.com/blake3"
)

// Digest returns the hex BLAKE3-256 digest of r.
func Digest(r io.Reader) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("calculating blake3 digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileDigest returns the digest of the file at path.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Digest(f)
}

// Key joins an audio digest with the model and language that produced the
// cached result. An empty language means auto-detect.
func Key(digest, model, language string) string {
	if language == "" {
		language = "auto"
	}
	return strings.Join([]string{digest, model, language}, ":")
}
