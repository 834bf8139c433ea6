package normalize

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()
	return ReaderHash(f)
}

// ReaderHash computes the hex-encoded SHA-256 of everything read from r.
func ReaderHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RowHashFromValues computes a SHA-256 over the row number and its ordered
// cell values. Values are trimmed and separated by NUL bytes, so
// ("a","bc") and ("ab","c") hash differently.
func RowHashFromValues(rowNum int64, values ...string) []byte {
	h := sha256.New()
	var num [8]byte
	binary.LittleEndian.PutUint64(num[:], uint64(rowNum))
	h.Write(num[:])
	for _, v := range values {
		h.Write([]byte(strings.TrimSpace(v)))
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}
