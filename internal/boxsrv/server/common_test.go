package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stargods/boxcode/internal/boxsrv/apis"
	"github.com/stargods/boxcode/internal/boxsrv/archive"
	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/catalog"
	"github.com/stargods/boxcode/internal/boxsrv/db/memory"
	"github.com/stargods/boxcode/internal/boxsrv/document"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/boxsrv/tenant"
)

func testSeed() []catalog.SeedRow {
	return []catalog.SeedRow{
		{Serial: 1, Code: "A1", Name: "Kitchen", NameCode: "KI"},
		{Serial: 2, Code: "A2", Name: "Kitchen", NameCode: "KI"},
		{Serial: 3, Code: "B1", Name: "Garage", NameCode: "GA", Notes: "fragile"},
		{Serial: 4, Code: "B2", Name: "Garage", NameCode: "GA"},
		{Serial: 5, Code: "C1", Name: "Attic", NameCode: "AT"},
	}
}

func newTestServer(t *testing.T) *BoxServer {
	store := memory.NewAssetStore()
	locks := boxcommon.NewKeyedMutex()
	cache, err := artifacts.NewCache(t.TempDir(), locks)
	require.NoError(t, err)

	reg := registry.NewRegistry(store)
	handler := &apis.Handler{
		Registry: reg,
		Tenants:  tenant.NewManager(store, testSeed(), locks),
		Document: document.NewBuilder(reg, cache),
		Archive:  archive.NewBuilder(reg, cache),
		Cache:    cache,
	}

	s, err := CreateNewServer(handler)
	require.NoError(t, err, "create new server")
	s.MountHandlers()
	return s
}

func executeTestRequest(t *testing.T, s *BoxServer, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func setRequestBody(t *testing.T, req *http.Request, data any) {
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "marshal request body")
	req.Body = io.NopCloser(bytes.NewReader(jsonData))
	req.ContentLength = int64(len(jsonData))
	req.Header.Set("Content-Type", "application/json")
}

func checkJSONHeader(t *testing.T, h http.Header) {
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.NotEmpty(t, h.Get("X-Boxcode-Request-ID"), "no request id")
}

// provisionTenant creates a tenant through the API and returns its key.
func provisionTenant(t *testing.T, s *BoxServer, username, password string) string {
	req, _ := http.NewRequest(http.MethodPost, "/api/users/", nil)
	req.Header.Set("X-Box-Username", username)
	req.Header.Set("X-Box-Password", password)
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusCreated, rr.Code, "provisioning failed: %s", rr.Body.String())

	var rsp struct {
		APIKey string `json:"X-API-KEY"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	require.NotEmpty(t, rsp.APIKey)
	return rsp.APIKey
}
