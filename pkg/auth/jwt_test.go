package auth

import (
	"strings"
	"testing"
	"time"
)

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractToken failed: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("Expected token abc.def.ghi, got %q", token)
	}

	// Scheme comparison is case insensitive.
	if _, err := ExtractToken("bearer abc"); err != nil {
		t.Errorf("Lowercase scheme should be accepted, got %v", err)
	}

	invalid := []string{"", "abc.def.ghi", "Basic abc", "Bearer ", "Bearer"}
	for _, header := range invalid {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("ExtractToken(%q) should have failed", header)
		}
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	jwtAuth, err := NewJWTAuth("test-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewJWTAuth failed: %v", err)
	}

	token, err := jwtAuth.GenerateToken("user-123", "Lando", "lando@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	user, err := jwtAuth.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}

	if user.ID != "user-123" || user.Name != "Lando" || user.Email != "lando@example.com" || user.Role != "user" {
		t.Errorf("Claims not round-tripped: %+v", user)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewJWTAuth("secret-a", 15*time.Minute)
	verifier, _ := NewJWTAuth("secret-b", 15*time.Minute)

	token, err := issuer.GenerateToken("user-123", "", "", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(token); err == nil {
		t.Error("Token signed with a different secret must be rejected")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	jwtAuth, _ := NewJWTAuth("test-secret", -1*time.Minute)

	token, err := jwtAuth.GenerateToken("user-123", "", "", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := jwtAuth.VerifyAccessToken(token); err == nil {
		t.Error("Expired token must be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	jwtAuth, _ := NewJWTAuth("test-secret", 15*time.Minute)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := jwtAuth.VerifyAccessToken(token); err == nil {
			t.Errorf("VerifyAccessToken(%q) should have failed", token)
		}
	}
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	jwtAuth, _ := NewJWTAuth("test-secret", 15*time.Minute)

	token, err := jwtAuth.GenerateToken("", "Anonymous", "", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, err = jwtAuth.VerifyAccessToken(token)
	if err == nil || !strings.Contains(err.Error(), "subject") {
		t.Errorf("Expected missing-subject error, got %v", err)
	}
}

func TestNewJWTAuthRequiresSecret(t *testing.T) {
	if _, err := NewJWTAuth("", 0); err == nil {
		t.Error("Empty secret should be rejected")
	}
}
