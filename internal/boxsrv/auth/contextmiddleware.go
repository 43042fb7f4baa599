package auth

import (
	"net/http"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/common/httpx"
)

// Header names for tenant credentials and the derived key.
const (
	HeaderAPIKey   = "X-API-KEY"
	HeaderUsername = "X-Box-Username"
	HeaderPassword = "X-Box-Password"
)

// LoadTenantKey extracts the tenant key from the X-API-KEY header and puts
// it in the request context. Requests without a key are rejected before any
// store access; the key itself is only validated against the store when a
// scoped operation runs.
func LoadTenantKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := boxcommon.TenantKey(r.Header.Get(HeaderAPIKey))
		if !key.IsValid() {
			httpx.ErrMissingKeyInRequest().Send(w)
			return
		}
		ctx := boxcommon.SetTenantKeyInContext(r.Context(), key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Credentials reads the username/password headers used by the tenant
// endpoints. Missing values return ErrMissingCredentials.
func Credentials(r *http.Request) (username, password string, err error) {
	username = r.Header.Get(HeaderUsername)
	password = r.Header.Get(HeaderPassword)
	if username == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	return username, password, nil
}
