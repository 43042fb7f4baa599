package httpx

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp encodes rsp as JSON and writes it with the given status code.
// An optional location is set as the Location header for created resources.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, rsp any, location ...string) {
	w.Header().Set("Content-Type", "application/json")
	if len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	if rsp == nil {
		w.WriteHeader(statusCode)
		return
	}
	rspJson, err := json.Marshal(rsp)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to marshal response")
		ErrApplicationError().Send(w)
		return
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(rspJson); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to write response")
	}
}
