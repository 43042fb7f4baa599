package apis

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/httpx"
)

var validate = validator.New()

func tenantKey(r *http.Request) (boxcommon.TenantKey, error) {
	key := boxcommon.TenantKeyFromContext(r.Context())
	if !key.IsValid() {
		return "", httpx.ErrMissingKeyInRequest()
	}
	return key, nil
}

func boxCode(r *http.Request) (string, error) {
	code := chi.URLParam(r, "code")
	if strings.TrimSpace(code) == "" {
		return "", httpx.ErrInvalidBoxCode()
	}
	return code, nil
}

func (h *Handler) getBox(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	code, err := boxCode(r)
	if err != nil {
		return nil, err
	}
	box, aerr := h.Registry.Get(r.Context(), key, code)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   box,
	}, nil
}

// queryBoxes parses the filter conjunction from the query string: limit,
// inuse, serial, notes, name, contains. Absent parameters are not applied.
func (h *Handler) queryBoxes(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	values := r.URL.Query()

	filter := &models.AssetFilter{}
	if v := values.Get("inuse"); v != "" {
		inuse, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, httpx.ErrInvalidRequest("invalid inuse value")
		}
		filter.InUse = &inuse
	}
	if v := values.Get("serial"); v != "" {
		serial, perr := strconv.Atoi(v)
		if perr != nil {
			return nil, httpx.ErrInvalidRequest("invalid serial value")
		}
		filter.Serial = &serial
	}
	if v := values.Get("notes"); v != "" {
		filter.Notes = &v
	}
	if v := values.Get("name"); v != "" {
		filter.Name = &v
	}
	if v := values.Get("contains"); v != "" {
		filter.ContainsItem = &v
	}

	limit := 0
	if v := values.Get("limit"); v != "" {
		l, perr := strconv.Atoi(v)
		if perr != nil || l < 0 {
			return nil, httpx.ErrInvalidRequest("invalid limit value")
		}
		limit = l
	}

	boxes, aerr := h.Registry.Query(r.Context(), key, filter, limit)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   boxes,
	}, nil
}

func (h *Handler) getNextFree(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	box, aerr := h.Registry.GetNextFree(r.Context(), key)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   box,
	}, nil
}

type updateBoxReq struct {
	Contents []string `json:"contents" validate:"dive,required"`
	Notes    string   `json:"notes" validate:"max=10000"`
	InUse    bool     `json:"inuse"`
}

func (h *Handler) updateBox(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	code, err := boxCode(r)
	if err != nil {
		return nil, err
	}
	var req updateBoxReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}
	box, aerr := h.Registry.Update(r.Context(), key, code, &models.AssetMutation{
		Notes:    req.Notes,
		Contents: req.Contents,
		InUse:    req.InUse,
	})
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   box,
	}, nil
}

func (h *Handler) deactivateBox(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	code, err := boxCode(r)
	if err != nil {
		return nil, err
	}
	box, aerr := h.Registry.Deactivate(r.Context(), key, code)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   box,
	}, nil
}
