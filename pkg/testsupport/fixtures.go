package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture reads testdata/<name> relative to the calling package.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return data
}

// Golden decodes the JSON file testdata/<name> into v.
func Golden(t testing.TB, name string, v any) {
	t.Helper()
	if err := json.Unmarshal(Fixture(t, name), v); err != nil {
		t.Fatalf("decode golden %s: %v", name, err)
	}
}

// Chunks splits a recorded workflow stream into reads of at most size bytes,
// the way a slow connection hands them to the decoder.
func Chunks(raw []byte, size int) [][]byte {
	if size <= 0 {
		size = len(raw)
	}
	var out [][]byte
	for len(raw) > size {
		out = append(out, raw[:size])
		raw = raw[size:]
	}
	if len(raw) > 0 {
		out = append(out, raw)
	}
	return out
}
