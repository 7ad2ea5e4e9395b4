package utils

import (
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	password := "DC_g&rad0r"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestSessionToken(t *testing.T) {
	secret := "test-secret-key-12345"

	token, err := GenerateSessionToken("defesacivil", secret)
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateSessionToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims["sub"] != "defesacivil" {
		t.Errorf("Expected sub=defesacivil, got %v", claims["sub"])
	}
	if claims["jti"] == "" {
		t.Error("Token should carry a jti")
	}

	// Test Validation (Wrong Secret)
	if _, err := ValidateSessionToken(token, "other-secret"); err == nil {
		t.Error("Token signed with a different secret should not validate")
	}

	// Test Validation (Garbage)
	if _, err := ValidateSessionToken("not-a-token", secret); err == nil {
		t.Error("Garbage token should not validate")
	}
}
