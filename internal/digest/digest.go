// Package digest computes content digests of moved files for the ledger.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Algorithm names a supported digest algorithm. Values match the
// hashMethod strings accepted in the settings resource.
type Algorithm string

const (
	MD5    Algorithm = "MD5"
	SHA1   Algorithm = "SHA-1"
	SHA224 Algorithm = "SHA-224"
	SHA256 Algorithm = "SHA-256"
)

// chunkSize bounds memory use while hashing; moved files can be
// arbitrarily large.
const chunkSize = 4096

// ParseAlgorithm maps a hashMethod string to an Algorithm. Unknown values
// fall back to MD5 rather than failing.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(s) {
	case SHA1, SHA224, SHA256:
		return Algorithm(s)
	default:
		return MD5
	}
}

// newHash returns fresh digest state. State is never reused across files.
func (a Algorithm) newHash() hash.Hash {
	switch a {
	case SHA1:
		return sha1.New()
	case SHA224:
		return sha256.New224()
	case SHA256:
		return sha256.New()
	default:
		return md5.New()
	}
}

// File computes the digest of the file at path, streaming its contents in
// fixed-size chunks, and returns the lowercase hex encoding.
func File(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := alg.newHash()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
