package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/version", nil)
	rr := executeTestRequest(t, s, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	checkJSONHeader(t, rr.Header())

	var rsp GetVersionRsp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Equal(t, "v1", rsp.ApiVersion)
}

func TestProvisionAndLogin(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	// login re-derives the same key
	req, _ := http.NewRequest(http.MethodGet, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "ashwin")
	req.Header.Set("X-Box-Password", "melon")
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rsp struct {
		APIKey string `json:"X-API-KEY"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Equal(t, key, rsp.APIKey)
}

func TestProvisionConflict(t *testing.T) {
	s := newTestServer(t)
	provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPost, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "ashwin")
	req.Header.Set("X-Box-Password", "melon")
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginUnknownTenant(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "nobody")
	req.Header.Set("X-Box-Password", "nothing")
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProvisionMissingCredentials(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "ashwin")
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBoxRoutesRequireKey(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/api/A1", nil)
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetBox(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodGet, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	checkJSONHeader(t, rr.Header())

	var box map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, "A1", box["code"])
	assert.Equal(t, "Kitchen", box["name"])
	assert.Equal(t, false, box["inuse"])
	assert.NotContains(t, box, "id", "store identifiers must not leak")

	// unknown code
	req, _ = http.NewRequest(http.MethodGet, "/api/Z9", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetBoxWrongKey(t *testing.T) {
	s := newTestServer(t)
	provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodGet, "/api/A1", nil)
	req.Header.Set("X-API-KEY", "ffffffffffffffff")
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateBox(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPut, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{
		"contents": []string{"gloves", "scarf"},
		"notes":    "winter gear",
		"inuse":    true,
	})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var box map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, true, box["inuse"])
	assert.Equal(t, "winter gear", box["notes"])

	// the update is visible on a subsequent read
	req, _ = http.NewRequest(http.MethodGet, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, []any{"gloves", "scarf"}, box["contents"])
}

func TestQueryBoxes(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	// claim one box
	req, _ := http.NewRequest(http.MethodPut, "/api/B1", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{
		"contents": []string{"drill"},
		"inuse":    true,
	})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var boxes []map[string]any
	get := func(query string) []map[string]any {
		req, _ := http.NewRequest(http.MethodGet, "/api/"+query, nil)
		req.Header.Set("X-API-KEY", key)
		rr := executeTestRequest(t, s, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &boxes))
		return boxes
	}

	assert.Len(t, get("?inuse=true"), 1)
	assert.Len(t, get("?inuse=false"), 4)
	assert.Len(t, get("?inuse=false&limit=2"), 2)
	assert.Len(t, get("?contains=drill"), 1)
	assert.Len(t, get("?name=Garage&inuse=false"), 1)
	assert.Empty(t, get("?name=Cellar"))

	// malformed parameters
	req, _ = http.NewRequest(http.MethodGet, "/api/?inuse=maybe", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNextFreeBox(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodGet, "/api/next", nil)
	req.Header.Set("X-API-KEY", key)
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var box map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, "A1", box["code"])
}

func TestDeactivateBox(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPut, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{
		"contents": []string{"gloves"},
		"notes":    "winter gear",
		"inuse":    true,
	})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req, _ = http.NewRequest(http.MethodDelete, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var box map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, false, box["inuse"])
	assert.Equal(t, "winter gear", box["notes"])
	assert.Equal(t, []any{"gloves"}, box["contents"])
}

func TestLabelEndpoint(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodGet, "/api/A1/label", nil)
	req.Header.Set("X-API-KEY", key)
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	// the label is cached; deleting it succeeds once
	req, _ = http.NewRequest(http.MethodDelete, "/api/A1/label", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req, _ = http.NewRequest(http.MethodDelete, "/api/A1/label", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBatchPDFEndpoint(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPost, "/api/batch/pdf", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{"codes": []string{"A1", "A2", "B1", "B2", "C1"}})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	req, _ = http.NewRequest(http.MethodDelete, "/api/batch/pdf", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// deleting a document that was never built reports not found
	req, _ = http.NewRequest(http.MethodDelete, "/api/batch/pdf", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBatchPDFEmptyCodes(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPost, "/api/batch/pdf", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{"codes": []string{}})
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBatchZipEndpoint(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodPost, "/api/batch/zip", nil)
	req.Header.Set("X-API-KEY", key)
	setRequestBody(t, req, map[string]any{"codes": []string{"A1", "B1"}})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))

	req, _ = http.NewRequest(http.MethodDelete, "/api/batch/zip", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	keyA := provisionTenant(t, s, "ashwin", "melon")
	keyB := provisionTenant(t, s, "anand", "mango")
	require.NotEqual(t, keyA, keyB)

	// tenant A claims a box; tenant B still sees its own seed state
	req, _ := http.NewRequest(http.MethodPut, "/api/A1", nil)
	req.Header.Set("X-API-KEY", keyA)
	setRequestBody(t, req, map[string]any{"contents": []string{"gloves"}, "inuse": true})
	rr := executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/A1", nil)
	req.Header.Set("X-API-KEY", keyB)
	rr = executeTestRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var box map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &box))
	assert.Equal(t, false, box["inuse"])
}

func TestDeprovisionTenant(t *testing.T) {
	s := newTestServer(t)
	key := provisionTenant(t, s, "ashwin", "melon")

	req, _ := http.NewRequest(http.MethodDelete, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "ashwin")
	req.Header.Set("X-Box-Password", "melon")
	rr := executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// the key no longer opens the namespace
	req, _ = http.NewRequest(http.MethodGet, "/api/A1", nil)
	req.Header.Set("X-API-KEY", key)
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// deleting again reports a conflict
	req, _ = http.NewRequest(http.MethodDelete, "/api/users/", nil)
	req.Header.Set("X-Box-Username", "ashwin")
	req.Header.Set("X-Box-Password", "melon")
	rr = executeTestRequest(t, s, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
