package core

import (
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword() returned empty hash")
	}
	if hash == "secret" {
		t.Fatal("HashPassword() returned the plaintext password")
	}

	if !VerifyPassword(hash, "secret") {
		t.Error("VerifyPassword() = false for correct password")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("VerifyPassword() = true for wrong password")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	if err == nil {
		t.Fatal("HashPassword() error = nil, want error")
	}
	if !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("HashPassword() error = %v, want %v", err, ErrEmptyPassword)
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "secret") {
		t.Error("VerifyPassword() = true for malformed hash")
	}
}
