package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/talent-sourcer/internal/config"
	"github.com/jonathan/talent-sourcer/internal/pipeline"
)

const testBatch = `[
	{"source": "github", "external_id": "taro", "fetched_at": "2026-08-01T00:00:00Z",
	 "payload": {"login": "taro", "name": "Taro Yamada", "bio": "Python NLP engineer"}},
	{"source": "github", "external_id": "ken", "fetched_at": "2026-08-01T00:00:00Z",
	 "payload": {"login": "ken", "name": "Ken Sato", "bio": "Go and Kubernetes"}}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.APISecret = "test-secret"

	engine := pipeline.New(cfg, nil)
	s, err := New(cfg, engine, nil, zap.NewNop())
	require.NoError(t, err)
	return s
}

func seedSnapshot(t *testing.T, s *Server) {
	t.Helper()
	_, _, err := s.engine.IngestRaw([]byte(testBatch))
	require.NoError(t, err)
	_, err = s.engine.RunPass(context.Background())
	require.NoError(t, err)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid secret", `{"client_id": "ci", "secret": "test-secret"}`, http.StatusOK},
		{"wrong secret", `{"client_id": "ci", "secret": "nope"}`, http.StatusUnauthorized},
		{"missing fields", `{}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			s.handleToken(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp TokenResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)
	handler := s.requireAuth(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing header must be rejected")

	req = httptest.NewRequest(http.MethodGet, "/profiles", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "garbage token must be rejected")

	token, err := s.jwtService.GenerateToken("ci")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/profiles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleIngestAndRunPass(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(testBatch))
	w := httptest.NewRecorder()
	s.handleIngest(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var ingest IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingest))
	assert.Equal(t, 2, ingest.Accepted)

	req = httptest.NewRequest(http.MethodPost, "/passes", nil)
	w = httptest.NewRecorder()
	s.handleRunPass(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var pass PassResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pass))
	assert.Equal(t, 1, pass.SnapshotVersion)
	assert.Equal(t, 2, pass.Profiles)
}

func TestHandleIngest_SchemaViolation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(`[{"source": "github"}]`))
	w := httptest.NewRecorder()
	s.handleIngest(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleMatch(t *testing.T) {
	s := newTestServer(t)
	seedSnapshot(t, s)

	body := `{"text": "Python NLP engineer", "page_size": 10}`
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.handleMatch(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result pipeline.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "github:taro", result.Results[0].ProfileID)
}

func TestHandleMatch_BadRequests(t *testing.T) {
	s := newTestServer(t)
	seedSnapshot(t, s)

	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	s.handleMatch(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "requirement text is required")

	body := `{"text": "Python", "cursor": "???not-base64???"}`
	req = httptest.NewRequest(http.MethodPost, "/match", bytes.NewBufferString(body))
	w = httptest.NewRecorder()
	s.handleMatch(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "an undecodable cursor is a client error")

	body = `{"text": "Python", "page_size": 1000}`
	req = httptest.NewRequest(http.MethodPost, "/match", bytes.NewBufferString(body))
	w = httptest.NewRecorder()
	s.handleMatch(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "page sizes above the maximum are rejected")
}

func TestHandleGetProfile(t *testing.T) {
	s := newTestServer(t)
	seedSnapshot(t, s)

	req := httptest.NewRequest(http.MethodGet, "/profiles/github:taro", nil)
	req.SetPathValue("id", "github:taro")
	w := httptest.NewRecorder()
	s.handleGetProfile(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/profiles/github:nobody", nil)
	req.SetPathValue("id", "github:nobody")
	w = httptest.NewRecorder()
	s.handleGetProfile(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListProfiles(t *testing.T) {
	s := newTestServer(t)
	seedSnapshot(t, s)

	req := httptest.NewRequest(http.MethodGet, "/profiles?limit=1", nil)
	w := httptest.NewRecorder()
	s.handleListProfiles(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SnapshotVersion int               `json:"snapshot_version"`
		Profiles        []json.RawMessage `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.SnapshotVersion)
	assert.Len(t, body.Profiles, 1)

	req = httptest.NewRequest(http.MethodGet, "/profiles?limit=-1", nil)
	w = httptest.NewRecorder()
	s.handleListProfiles(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
