// Package randx generates the random payloads sent by the client.
package randx

import (
	"math/rand"
	"time"
)

const (
	// MinPayloadSize is the minimum payload size.
	MinPayloadSize = 256

	// MaxPayloadSize is the maximum payload size (inclusive).
	MaxPayloadSize = 511
)

// PayloadSource generates payloads. Each client owns its own source,
// which must not be shared between goroutines.
type PayloadSource struct {
	r *rand.Rand
}

// NewPayloadSource creates a [PayloadSource] seeded with the current time.
func NewPayloadSource() *PayloadSource {
	return NewPayloadSourceWithSeed(time.Now().UnixNano())
}

// NewPayloadSourceWithSeed creates a [PayloadSource] with a given seed.
func NewPayloadSourceWithSeed(seed int64) *PayloadSource {
	return &PayloadSource{r: rand.New(rand.NewSource(seed))}
}

// Payload returns a new random payload whose length is uniformly
// distributed in [MinPayloadSize, MaxPayloadSize].
func (ps *PayloadSource) Payload() []byte {
	size := MinPayloadSize + ps.r.Intn(MaxPayloadSize-MinPayloadSize+1)
	out := make([]byte, size)
	ps.r.Read(out) // never fails
	return out
}
