package checksum

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	for _, name := range []string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512"} {
		a, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, Algorithm(name), a)
		assert.True(t, a.Valid())
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, name := range []string{"", "crc32", "SHA256", "sha-256", "highwayhash"} {
		_, err := Parse(name)
		assert.Error(t, err, name)
	}
}

func TestAlgorithm_KnownVectors(t *testing.T) {
	// Empty input, the classic fingerprints.
	cases := map[Algorithm]string{
		MD5:    "d41d8cd98f00b204e9800998ecf8427e",
		SHA1:   "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		SHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}
	for algo, want := range cases {
		h := algo.New()
		assert.Equal(t, want, hex.EncodeToString(h.Sum(nil)), string(algo))
	}
}

func TestAlgorithm_DigestSizes(t *testing.T) {
	sizes := map[Algorithm]int{
		MD5:    16,
		SHA1:   20,
		SHA224: 28,
		SHA256: 32,
		SHA384: 48,
		SHA512: 64,
	}
	for algo, want := range sizes {
		assert.Equal(t, want, algo.New().Size(), string(algo))
	}
}

func TestAlgorithm_NewPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		Algorithm("crc32").New()
	})
}
