// Package digest computes SHA-256 content digests for evidence payloads.
//
// Digests are hex-encoded without an algorithm prefix; the same encoding is
// stored on the ledger and compared byte-for-byte at retrieval time.
package digest

import (
	"fmt"
	"io"

	ocidigest "github.com/opencontainers/go-digest"
)

// chunkSize bounds the amount of payload held in memory while streaming.
const chunkSize = 64 * 1024

// FromReader computes the digest of everything in r, consuming it in
// fixed-size chunks so arbitrarily large payloads never have to be fully
// materialized. Read errors are propagated unmodified; nothing is retried.
func FromReader(r io.Reader) (string, error) {
	digester := ocidigest.SHA256.Digester()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			digester.Hash().Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read payload: %w", err)
		}
	}
	return digester.Digest().Encoded(), nil
}

// FromBytes computes the digest of a fully materialized payload. For any byte
// sequence, FromBytes(b) equals FromReader over the same bytes regardless of
// how the reader chunks them.
func FromBytes(b []byte) string {
	return ocidigest.SHA256.FromBytes(b).Encoded()
}
