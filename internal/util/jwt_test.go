package util

import (
	"testing"
	"time"

	"messenger_backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

func testUser() *model.User {
	u := &model.User{
		Name:  "alice",
		Email: "alice@example.com",
	}
	u.ID = 42
	return u
}

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret-with-enough-length-32b"

	token, err := GenerateJWT(testUser(), secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testUser(), "secret-one-secret-one-secret-one", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, "secret-two-secret-two-secret-two"); err == nil {
		t.Fatal("expected error for token signed with different secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	secret := "test-secret-with-enough-length-32b"

	token, err := GenerateJWT(testUser(), secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, secret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseJWTRejectsUnexpectedAlgorithm(t *testing.T) {
	secret := "test-secret-with-enough-length-32b"

	claims := &Claims{
		UserID: 42,
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	// 只接受 HS256，alg=none 的令牌必须被拒绝
	if _, err := ParseJWT(token, secret); err == nil {
		t.Fatal("expected error for token with alg=none")
	}
}

func TestParseJWTGarbage(t *testing.T) {
	if _, err := ParseJWT("not-a-jwt", "whatever-secret-whatever-secret-x"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
