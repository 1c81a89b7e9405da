package crypto

import (
	"strings"
	"testing"
	"time"
)

func TestCSRFIssueValidate(t *testing.T) {
	signer := NewCSRFSigner("test-csrf-secret")

	token, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	if !signer.Validate(token, time.Hour) {
		t.Error("Validate() rejected a freshly issued token")
	}
}

func TestCSRFTokensIndependent(t *testing.T) {
	signer := NewCSRFSigner("test-csrf-secret")

	t1, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	t2, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if t1 == t2 {
		t.Error("Issue() produced identical tokens")
	}
}

func TestCSRFValidateTampered(t *testing.T) {
	signer := NewCSRFSigner("test-csrf-secret")

	token, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	// Flip a character in the random payload.
	tampered := "f" + token[1:]
	if tampered == token {
		tampered = "0" + token[1:]
	}
	if signer.Validate(tampered, time.Hour) {
		t.Error("Validate() accepted a tampered token")
	}
}

func TestCSRFValidateWrongSecret(t *testing.T) {
	signer := NewCSRFSigner("secret-one")
	other := NewCSRFSigner("secret-two")

	token, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if other.Validate(token, time.Hour) {
		t.Error("Validate() accepted a token signed with a different secret")
	}
}

func TestCSRFValidateExpired(t *testing.T) {
	signer := NewCSRFSigner("test-csrf-secret")

	issued := time.Now()
	signer.now = func() time.Time { return issued }

	token, err := signer.Issue()
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if signer.Validate(token, time.Hour) {
		t.Error("Validate() accepted an expired token")
	}

	signer.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if !signer.Validate(token, time.Hour) {
		t.Error("Validate() rejected a token inside its TTL")
	}
}

func TestCSRFValidateMalformed(t *testing.T) {
	signer := NewCSRFSigner("test-csrf-secret")

	for _, token := range []string{"", ".", "abc", "abc.def", strings.Repeat(".", 5)} {
		if signer.Validate(token, time.Hour) {
			t.Errorf("Validate(%q) accepted a malformed token", token)
		}
	}
}
