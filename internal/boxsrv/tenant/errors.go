package tenant

import (
	"net/http"

	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrTenant             apperrors.Error = apperrors.New("tenant error").SetStatusCode(http.StatusInternalServerError)
	ErrTenantExists       apperrors.Error = ErrTenant.New("tenant already provisioned").SetStatusCode(http.StatusConflict)
	ErrTenantConflict     apperrors.Error = ErrTenant.New("tenant state conflict").SetStatusCode(http.StatusConflict)
	ErrProvisioningFailed apperrors.Error = ErrTenant.New("tenant provisioning failed").SetStatusCode(http.StatusInternalServerError)
)
