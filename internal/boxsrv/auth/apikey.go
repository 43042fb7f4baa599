// Package auth derives tenant keys from credentials and attaches them to
// request contexts. The key is a keyed one-way hash of the username under
// the password, so the same credential pair always maps to the same tenant
// namespace and the key cannot be inverted to the password.
package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

// keyDigestSize is the truncated BLAKE2b digest length in bytes. The hex
// encoded key is twice this long.
const keyDigestSize = 8

// DeriveKey maps (username, password) to the tenant key: BLAKE2b with the
// password as the MAC key and the username as the message, truncated to
// keyDigestSize bytes and hex encoded. Deterministic for a given pair.
func DeriveKey(username, password string) (boxcommon.TenantKey, apperrors.Error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}
	h, err := blake2b.New(keyDigestSize, []byte(password))
	if err != nil {
		// blake2b only rejects keys longer than 64 bytes
		return "", ErrAuth.MsgErr("unable to derive key", err)
	}
	h.Write([]byte(username))
	return boxcommon.TenantKey(hex.EncodeToString(h.Sum(nil))), nil
}
