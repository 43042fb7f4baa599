package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/apis"
	"github.com/stargods/boxcode/internal/boxsrv/config"
	"github.com/stargods/boxcode/internal/common/httpx"
	"github.com/stargods/boxcode/internal/common/logtrace"
	commonmiddleware "github.com/stargods/boxcode/internal/common/middleware"
)

type BoxServer struct {
	Router  *chi.Mux
	handler *apis.Handler
}

func CreateNewServer(h *apis.Handler) (*BoxServer, error) {
	s := &BoxServer{handler: h}
	s.Router = chi.NewRouter()
	return s, nil
}

func (s *BoxServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-API-KEY", "X-Box-Username", "X-Box-Password"},
		}))
	}
	s.Router.Route("/api", s.handler.Router)
	s.Router.Get("/version", s.getVersion)
	if logtrace.IsTraceEnabled() {
		// print all the routes in the router
		fmt.Println("Routes in box router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *BoxServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Boxcode Server: 0.1.0",
		ApiVersion:    "v1",
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
