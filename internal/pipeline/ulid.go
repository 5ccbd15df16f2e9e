package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: a 48-bit millisecond timestamp plus 80 random bits,
// rendered as 26 Crockford Base32 characters. Lexicographic order follows
// creation time, which keeps job listings and cache directories sortable
// without a counter shared across restarts.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu    sync.Mutex
	lastMilli uint64
	seq       uint16
)

func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ms := uint64(time.Now().UnixMilli())
	if ms == lastMilli {
		seq++
	} else {
		lastMilli = ms
		seq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	rand.Read(b[6:])
	// The first two random bytes carry a sequence so ids minted within
	// the same millisecond still sort in issue order.
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeCrockford(b)
}

// encodeCrockford packs 128 bits into 26 base32 characters, top character
// carrying only the 3 leading bits.
func encodeCrockford(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
