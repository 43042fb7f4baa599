package auth

import (
	"net/http"

	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrAuth               apperrors.Error = apperrors.New("auth error").SetStatusCode(http.StatusInternalServerError)
	ErrUnauthorized       apperrors.Error = ErrAuth.New("unknown tenant or bad credentials").SetStatusCode(http.StatusUnauthorized)
	ErrMissingCredentials apperrors.Error = ErrAuth.New("missing username or password").SetStatusCode(http.StatusBadRequest)
	ErrMissingAPIKey      apperrors.Error = ErrAuth.New("missing API key").SetStatusCode(http.StatusUnauthorized)
)
