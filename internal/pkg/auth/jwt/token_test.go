package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	payload := &Payload{UserID: "user-1", Email: "alice@example.com"}

	token, err := GenerateToken(payload, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken returned an empty token")
	}

	parsed, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if parsed.UserID != "user-1" || parsed.Email != "alice@example.com" {
		t.Fatalf("parsed identity = (%q, %q), want (user-1, alice@example.com)", parsed.UserID, parsed.Email)
	}
	if parsed.Issuer != TokenIssuer {
		t.Fatalf("issuer = %q, want %q", parsed.Issuer, TokenIssuer)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(&Payload{UserID: "user-1"}, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("ParseToken accepted a token signed with a different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(&Payload{UserID: "user-1"}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatal("ParseToken accepted an expired token")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("not-a-jwt", "secret"); err == nil {
		t.Fatal("ParseToken accepted a malformed token")
	}
}
