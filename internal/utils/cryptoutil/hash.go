// Package cryptoutil provides file digest helpers used by the checksum action.
package cryptoutil

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	MD5        HashAlgorithm = "md5"
	SHA1       HashAlgorithm = "sha1"
	SHA256     HashAlgorithm = "sha256"
	SHA512     HashAlgorithm = "sha512"
	SHA3256    HashAlgorithm = "sha3-256"
	BLAKE2b256 HashAlgorithm = "blake2b-256"
)

// Algorithms lists every supported algorithm
func Algorithms() []HashAlgorithm {
	return []HashAlgorithm{MD5, SHA1, SHA256, SHA512, SHA3256, BLAKE2b256}
}

// NewHashWriter creates a writer for streaming hash calculation
func NewHashWriter(algorithm HashAlgorithm) (*HashWriter, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}
	return &HashWriter{hash: h}, nil
}

func newHash(algorithm HashAlgorithm) (hash.Hash, error) {
	switch HashAlgorithm(strings.ToLower(string(algorithm))) {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256, "":
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3256:
		return sha3.New256(), nil
	case BLAKE2b256:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedHash, algorithm)
	}
}
