package utils

import "testing"

func TestContentHashNormalizes(t *testing.T) {
	if ContentHash("  Hello World ") != ContentHash("hello world") {
		t.Fatalf("hash should ignore case and surrounding space")
	}
	if ContentHash("hello") == ContentHash("goodbye") {
		t.Fatalf("distinct content should hash differently")
	}
}

func TestCapsRatio(t *testing.T) {
	if ratio := CapsRatio("HELLO"); ratio != 1 {
		t.Fatalf("expected 1, got %f", ratio)
	}
	if ratio := CapsRatio("hello"); ratio != 0 {
		t.Fatalf("expected 0, got %f", ratio)
	}
	if ratio := CapsRatio("1234 !!!"); ratio != 0 {
		t.Fatalf("no letters should yield 0, got %f", ratio)
	}
	if ratio := CapsRatio("ABcd"); ratio != 0.5 {
		t.Fatalf("expected 0.5, got %f", ratio)
	}
}

func TestShingleSimilarity(t *testing.T) {
	if sim := ShingleSimilarity("free nitro here", "FREE NITRO HERE", 3); sim != 1 {
		t.Fatalf("case-insensitive identical strings should score 1, got %f", sim)
	}
	if sim := ShingleSimilarity("free nitro here", "completely unrelated", 3); sim > 0.2 {
		t.Fatalf("unrelated strings should score low, got %f", sim)
	}
	if sim := ShingleSimilarity("ab", "ab", 3); sim != 1 {
		t.Fatalf("short equal strings should score 1, got %f", sim)
	}
}
