// Package apis wires the box service operations to their HTTP routes. The
// transport layer stays thin: handlers decode and validate the request,
// call the injected component, and return an httpx.Response; the error
// taxonomy maps to status codes through apperrors.
package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stargods/boxcode/internal/boxsrv/archive"
	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/auth"
	"github.com/stargods/boxcode/internal/boxsrv/document"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/boxsrv/tenant"
	"github.com/stargods/boxcode/internal/common/httpx"
)

// Handler carries the components the routes dispatch to.
type Handler struct {
	Registry *registry.Registry
	Tenants  *tenant.Manager
	Document *document.Builder
	Archive  *archive.Builder
	Cache    *artifacts.Cache
}

func (h *Handler) boxHandlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/next",
			Handler: h.getNextFree,
		},
		{
			Method:  http.MethodGet,
			Path:    "/",
			Handler: h.queryBoxes,
		},
		{
			Method:  http.MethodPost,
			Path:    "/batch/pdf",
			Handler: h.buildBatchPDF,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/batch/pdf",
			Handler: h.deleteBatchPDF,
		},
		{
			Method:  http.MethodPost,
			Path:    "/batch/zip",
			Handler: h.buildArchive,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/batch/zip",
			Handler: h.deleteArchive,
		},
		{
			Method:  http.MethodGet,
			Path:    "/{code}/label",
			Handler: h.getLabel,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/{code}/label",
			Handler: h.deleteLabel,
		},
		{
			Method:  http.MethodGet,
			Path:    "/{code}",
			Handler: h.getBox,
		},
		{
			Method:  http.MethodPut,
			Path:    "/{code}",
			Handler: h.updateBox,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/{code}",
			Handler: h.deactivateBox,
		},
	}
}

func (h *Handler) tenantHandlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/",
			Handler: h.authenticateTenant,
		},
		{
			Method:  http.MethodPost,
			Path:    "/",
			Handler: h.provisionTenant,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/",
			Handler: h.deprovisionTenant,
		},
	}
}

// Router mounts the API. The tenant endpoints authenticate by credential
// headers; everything else requires the tenant key.
func (h *Handler) Router(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		for _, handler := range h.tenantHandlers() {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.LoadTenantKey)
		for _, handler := range h.boxHandlers() {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
}
