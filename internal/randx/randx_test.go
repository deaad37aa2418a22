package randx

import (
	"bytes"
	"testing"
)

func TestPayloadSize(t *testing.T) {
	ps := NewPayloadSource()
	seen := make(map[int]bool)
	for i := 0; i < 20000; i++ {
		payload := ps.Payload()
		if len(payload) < MinPayloadSize || len(payload) > MaxPayloadSize {
			t.Fatal("unexpected payload size", len(payload))
		}
		seen[len(payload)] = true
	}
	if !seen[MinPayloadSize] || !seen[MaxPayloadSize] {
		t.Fatal("expected to see both boundaries")
	}
}

func TestPayloadsDiffer(t *testing.T) {
	ps := NewPayloadSource()
	first, second := ps.Payload(), ps.Payload()
	if bytes.Equal(first, second) {
		t.Fatal("expected different payloads")
	}
}

func TestPayloadSourceWithSeedIsReproducible(t *testing.T) {
	a := NewPayloadSourceWithSeed(4)
	b := NewPayloadSourceWithSeed(4)
	for i := 0; i < 4; i++ {
		if !bytes.Equal(a.Payload(), b.Payload()) {
			t.Fatal("expected identical payloads with the same seed")
		}
	}
}
