// Package digest computes hex encoded file digests for triage reports.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"

	api "github.com/ossf/content-triage/pkg/api/triage"
)

// Algorithm names a supported hash function.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
)

func (a Algorithm) String() string {
	return string(a)
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, BLAKE2b}
}

// ParseAlgorithm returns the algorithm with the given name, ignoring case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(s)); a {
	case SHA256, BLAKE2b:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm %q", s)
	}
}

// New returns a new hash.Hash for the algorithm. BLAKE2b produces a 256-bit
// digest, the same size as SHA256.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", string(a))
	}
}

// Digest is a computed hash value.
type Digest struct {
	Algorithm Algorithm
	Value     string
}

// String returns the digest in "algorithm:hex" form.
func (d Digest) String() string {
	return d.Algorithm.String() + ":" + d.Value
}

// ToAPI converts the digest to its serialisable form.
func (d Digest) ToAPI() *api.Digest {
	return &api.Digest{Algorithm: d.Algorithm.String(), Value: d.Value}
}

// Reader hashes everything read from r and returns the digest together with
// the number of bytes read.
func Reader(a Algorithm, r io.Reader) (Digest, int64, error) {
	h, err := a.New()
	if err != nil {
		return Digest{}, 0, err
	}
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, n, err
	}
	return Digest{Algorithm: a, Value: hex.EncodeToString(h.Sum(nil))}, n, nil
}

// File hashes the file at path.
func File(a Algorithm, path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	d, _, err := Reader(a, f)
	return d, err
}

// Bytes hashes b.
func Bytes(a Algorithm, b []byte) (Digest, error) {
	h, err := a.New()
	if err != nil {
		return Digest{}, err
	}
	h.Write(b)
	return Digest{Algorithm: a, Value: hex.EncodeToString(h.Sum(nil))}, nil
}
