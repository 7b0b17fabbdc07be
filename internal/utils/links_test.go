package utils

import "testing"

func TestExtractURLs(t *testing.T) {
	urls := ExtractURLs("see https://example.com/a and http://other.net")
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(urls))
	}
}

func TestHasInvite(t *testing.T) {
	if !HasInvite("join discord.gg/abc123") {
		t.Fatalf("expected invite match")
	}
	if !HasInvite("https://discordapp.com/invite/xyz") {
		t.Fatalf("expected long-form invite match")
	}
	if HasInvite("plain message") {
		t.Fatalf("unexpected invite match")
	}
}

func TestNormalizeHost(t *testing.T) {
	host, err := NormalizeHost("https://Bit.LY/short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "bit.ly" {
		t.Fatalf("unexpected host: %s", host)
	}

	host, err = NormalizeHost("bücher.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "xn--bcher-kva.example" {
		t.Fatalf("expected punycode host, got %s", host)
	}
}
