package testsupport

import (
	"bytes"
	"testing"
)

func TestChunksPreservesStream(t *testing.T) {
	raw := []byte("data: {\"event\":\"ping\"}\n\n")

	chunks := Chunks(raw, 5)
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if len(chunk) != 5 {
			t.Fatalf("chunk %d: expected 5 bytes, got %d", i, len(chunk))
		}
	}
	if got := bytes.Join(chunks, nil); !bytes.Equal(got, raw) {
		t.Fatalf("expected joined chunks to match input, got %q", got)
	}
}

func TestChunksWholeStream(t *testing.T) {
	raw := []byte("data: {}\n")
	if chunks := Chunks(raw, 0); len(chunks) != 1 || !bytes.Equal(chunks[0], raw) {
		t.Fatalf("expected single chunk, got %q", chunks)
	}
	if chunks := Chunks(nil, 4); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %q", chunks)
	}
}
