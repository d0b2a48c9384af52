// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidIdentityKey = errors.New("invalid identity key")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrEmptyPassword      = errors.New("password is required")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateIdentityKey creates an HMAC-based identity key for a user.
// This is deterministic and verifiable without storing it.
func GenerateIdentityKey(username, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("user:"))
	h.Write([]byte(username))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateIdentityKey checks if the provided key belongs to username
func ValidateIdentityKey(username, key, salt string) error {
	if username == "" || key == "" {
		return ErrInvalidIdentityKey
	}
	expected := GenerateIdentityKey(username, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidIdentityKey
	}
	return nil
}

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a candidate password
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
