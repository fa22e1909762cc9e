package hashid

import "testing"

func TestOfBytesStable(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	h1 := OfBytes(src)
	h2 := OfBytes(src)
	if h1 != h2 {
		t.Fatalf("hash not stable across runs: %q != %q", h1, h2)
	}
	if len(h1) != Length {
		t.Fatalf("expected length %d, got %d (%q)", Length, len(h1), h1)
	}
}

func TestOfBytesSensitiveToWhitespace(t *testing.T) {
	a := OfBytes([]byte("function f(){return 1}"))
	b := OfBytes([]byte("function f() { return 1 }"))
	if a == b {
		t.Fatalf("hash must not normalise whitespace, got equal hashes %q", a)
	}
}

func TestOfSpanMatchesOfBytes(t *testing.T) {
	src := []byte("const x = 1; function f() { return x; }")
	start, end := 13, len(src)
	if got, want := OfSpan(src, start, end), OfBytes(src[start:end]); got != want {
		t.Fatalf("OfSpan = %q, want %q", got, want)
	}
}
