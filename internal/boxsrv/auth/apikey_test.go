package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	key, err := DeriveKey("ashwin", "melon")
	assert.Nil(t, err)
	assert.Len(t, key.String(), 16, "key should be 8 bytes hex encoded")

	// deterministic
	again, err := DeriveKey("ashwin", "melon")
	assert.Nil(t, err)
	assert.Equal(t, key, again)

	// different password, different tenant
	other, err := DeriveKey("ashwin", "mango")
	assert.Nil(t, err)
	assert.NotEqual(t, key, other)

	// different username, different tenant
	other, err = DeriveKey("anand", "melon")
	assert.Nil(t, err)
	assert.NotEqual(t, key, other)
}

func TestDeriveKeyMissingCredentials(t *testing.T) {
	_, err := DeriveKey("", "melon")
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrMissingCredentials))

	_, err = DeriveKey("ashwin", "")
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrMissingCredentials))
}

func TestDeriveKeyLongPassword(t *testing.T) {
	// blake2b rejects MAC keys over 64 bytes
	_, err := DeriveKey("ashwin", strings.Repeat("x", 65))
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrAuth))
}

func TestDeriveKeyIsHex(t *testing.T) {
	key, err := DeriveKey("user@example.com", "s3cret")
	assert.Nil(t, err)
	for _, c := range key.String() {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}
