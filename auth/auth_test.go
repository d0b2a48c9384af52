// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			require.NoError(t, err)
			assert.Len(t, id, tt.wantLen)
			for _, c := range id {
				assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'), "invalid hex char %c", c)
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		username string
		salt     string
	}{
		{"standard", "alice", "secret-salt"},
		{"empty username", "", "salt"},
		{"empty salt", "bob", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateIdentityKey(tt.username, tt.salt)
			assert.NotEmpty(t, key)
			assert.Equal(t, key, GenerateIdentityKey(tt.username, tt.salt), "must be deterministic")
			assert.False(t, strings.ContainsAny(key, "+/="), "must be URL-safe without padding")

			if tt.username != "" && tt.salt != "" {
				assert.NotEqual(t, key, GenerateIdentityKey(tt.username+"x", tt.salt))
				assert.NotEqual(t, key, GenerateIdentityKey(tt.username, tt.salt+"x"))
			}
		})
	}
}

func TestValidateIdentityKey(t *testing.T) {
	salt := "test-salt"
	key := GenerateIdentityKey("alice", salt)

	tests := []struct {
		name     string
		username string
		key      string
		wantErr  bool
	}{
		{"valid", "alice", key, false},
		{"other user", "bob", key, true},
		{"tampered", "alice", key + "x", true},
		{"empty key", "alice", "", true},
		{"empty username", "", key, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentityKey(tt.username, tt.key, salt)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentityKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, ValidateIdentityKey("alice", key, "other-salt"), ErrInvalidIdentityKey)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, CheckPassword(hash, "hunter2"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter3"), ErrInvalidPassword)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "hunter2"), ErrInvalidPassword)

	other, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt hashes are salted")

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
