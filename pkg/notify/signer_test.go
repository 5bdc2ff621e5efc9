package notify

import (
	"strings"
	"testing"
)

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"type":"transcript.created"}`)
	sig := Sign("secret-key", payload)

	if !strings.HasPrefix(sig, "sha256=") {
		t.Errorf("signature %q missing sha256 prefix", sig)
	}
	if !Verify("secret-key", payload, sig) {
		t.Error("signature must verify with the signing secret")
	}
	if Verify("other-key", payload, sig) {
		t.Error("signature must not verify with a different secret")
	}
	if Verify("secret-key", []byte("tampered"), sig) {
		t.Error("signature must not verify for a different payload")
	}
	if Verify("secret-key", payload, "sha256=deadbeef") {
		t.Error("bogus signature must not verify")
	}
}

func TestSignDeterministic(t *testing.T) {
	payload := []byte("same payload")
	if Sign("k", payload) != Sign("k", payload) {
		t.Error("signing must be deterministic")
	}
	if Sign("k1", payload) == Sign("k2", payload) {
		t.Error("different secrets must yield different signatures")
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	b, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("secrets must be random")
	}
}
