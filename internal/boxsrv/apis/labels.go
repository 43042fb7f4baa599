package apis

import (
	"net/http"

	"github.com/stargods/boxcode/internal/boxsrv/label"
	"github.com/stargods/boxcode/internal/common/httpx"
)

// getLabel renders the record's label, persists it in the cache and
// returns the PNG. Regeneration overwrites the cached file.
func (h *Handler) getLabel(r *http.Request) (*httpx.Response, error) {
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
	img, aerr := label.Compose(box)
	if aerr != nil {
		return nil, aerr
	}
	if aerr := h.Cache.WriteLabel(key, code, img); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode:  http.StatusOK,
		Response:    img,
		ContentType: "image/png",
	}, nil
}

func (h *Handler) deleteLabel(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	code, err := boxCode(r)
	if err != nil {
		return nil, err
	}
	if aerr := h.Cache.DeleteLabel(key, code); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"deleted": code},
	}, nil
}

type batchReq struct {
	Codes []string `json:"codes" validate:"required,min=1,dive,required"`
}

func (h *Handler) batchCodes(r *http.Request) (batchReq, error) {
	var req batchReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return req, err
	}
	if err := validate.Struct(&req); err != nil {
		return req, httpx.ErrInvalidRequest(err.Error())
	}
	return req, nil
}

func (h *Handler) buildBatchPDF(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	req, err := h.batchCodes(r)
	if err != nil {
		return nil, err
	}
	data, aerr := h.Document.Build(r.Context(), key, req.Codes)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode:  http.StatusOK,
		Response:    data,
		ContentType: "application/pdf",
	}, nil
}

func (h *Handler) deleteBatchPDF(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	if aerr := h.Cache.DeleteBatchPDF(key); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"deleted": "batch pdf"},
	}, nil
}

func (h *Handler) buildArchive(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	req, err := h.batchCodes(r)
	if err != nil {
		return nil, err
	}
	data, aerr := h.Archive.Build(r.Context(), key, req.Codes)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode:  http.StatusOK,
		Response:    data,
		ContentType: "application/zip",
	}, nil
}

func (h *Handler) deleteArchive(r *http.Request) (*httpx.Response, error) {
	key, err := tenantKey(r)
	if err != nil {
		return nil, err
	}
	if aerr := h.Cache.DeleteArchive(key); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"deleted": "archive"},
	}, nil
}
