package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA224 Algorithm = "sha224"
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

// Algorithms lists every supported algorithm in declaration order.
var Algorithms = []Algorithm{MD5, SHA1, SHA224, SHA256, SHA384, SHA512}

// Parse validates an algorithm name from configuration.
func Parse(name string) (Algorithm, error) {
	a := Algorithm(name)
	if !a.Valid() {
		return "", fmt.Errorf("unsupported checksum algorithm %q (supported: %v)", name, Algorithms)
	}
	return a, nil
}

// Valid reports whether the algorithm is one of the supported set.
func (a Algorithm) Valid() bool {
	switch a {
	case MD5, SHA1, SHA224, SHA256, SHA384, SHA512:
		return true
	}
	return false
}

// New returns a fresh hash state for the algorithm.
// Panics on an invalid algorithm; callers obtain algorithms via Parse.
func (a Algorithm) New() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	case SHA224:
		return sha256.New224()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	default:
		panic(fmt.Sprintf("checksum: invalid algorithm %q", string(a)))
	}
}
