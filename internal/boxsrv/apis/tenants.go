package apis

import (
	"net/http"

	"github.com/stargods/boxcode/internal/boxsrv/auth"
	"github.com/stargods/boxcode/internal/common/httpx"
)

type tenantKeyRsp struct {
	APIKey string `json:"X-API-KEY"`
}

// authenticateTenant re-derives the key from the credential headers and
// confirms the tenant exists. This is the login: the caller keeps the key
// for all record operations.
func (h *Handler) authenticateTenant(r *http.Request) (*httpx.Response, error) {
	username, password, err := auth.Credentials(r)
	if err != nil {
		return nil, err
	}
	key, aerr := h.Tenants.Authenticate(r.Context(), username, password)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &tenantKeyRsp{APIKey: key.String()},
	}, nil
}

func (h *Handler) provisionTenant(r *http.Request) (*httpx.Response, error) {
	username, password, err := auth.Credentials(r)
	if err != nil {
		return nil, err
	}
	key, aerr := h.Tenants.Create(r.Context(), username, password)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Response:   &tenantKeyRsp{APIKey: key.String()},
	}, nil
}

func (h *Handler) deprovisionTenant(r *http.Request) (*httpx.Response, error) {
	username, password, err := auth.Credentials(r)
	if err != nil {
		return nil, err
	}
	if aerr := h.Tenants.Destroy(r.Context(), username, password); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"deleted": username},
	}, nil
}
