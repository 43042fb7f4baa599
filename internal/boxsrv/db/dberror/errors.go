package dberror

import (
	"net/http"

	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrDatabase         apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists    apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound         apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput     apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrUnknownNamespace apperrors.Error = ErrDatabase.New("unknown namespace").SetStatusCode(http.StatusUnauthorized)
	ErrMissingTenantKey apperrors.Error = ErrInvalidInput.New("missing tenant key").SetStatusCode(http.StatusBadRequest)
)
