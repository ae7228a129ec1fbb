package cryptoutil

import (
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// HashWriter implements io.Writer and provides methods to access the underlying hash
type HashWriter struct {
	hash hash.Hash
}

// Write implements io.Writer
func (hw *HashWriter) Write(p []byte) (n int, err error) {
	return hw.hash.Write(p)
}

// SumHex returns the current hash value as a hex-encoded string
func (hw *HashWriter) SumHex() string {
	return hex.EncodeToString(hw.hash.Sum(nil))
}

// HashFile streams the file at path through a new hash of algorithm and
// returns the hex digest.
func HashFile(algorithm HashAlgorithm, path string) (string, error) {
	hw, err := NewHashWriter(algorithm)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(hw, f); err != nil {
		return "", err
	}
	return hw.SumHex(), nil
}
