package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ErikMLC/sqlmongo"
	"github.com/ErikMLC/sqlmongo/engine/translator"
	"github.com/ErikMLC/sqlmongo/pkg/config"
	"github.com/ErikMLC/sqlmongo/pkg/notify"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := config.Default()
	s := NewServer(Options{
		Server:   cfg.Server,
		Mongo:    cfg.Mongo,
		Notifier: rec,
		TestConnection: func(_ context.Context, uri string, _ time.Duration) (*sqlmongo.ConnectionStatus, error) {
			if strings.HasPrefix(uri, "bad") {
				return nil, errors.New("invalid mongodb uri")
			}
			return &sqlmongo.ConnectionStatus{Connected: true, Databases: []string{"admin"}}, nil
		},
	})
	return s, rec
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestIDIsKept(t *testing.T) {
	s, _ := newTestServer(t)
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestTranslate(t *testing.T) {
	s, rec := newTestServer(t)
	w := post(t, s, "/api/v1/translate", translateRequest{SQL: "SELECT name FROM users WHERE age > 30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeBody(t, w)
	assert.Equal(t, "find", out["operation"])
	assert.True(t, strings.HasPrefix(out["shell"].(string), "db.users.find("))
	assert.NotEmpty(t, out["request_id"])

	result := out["result"].(map[string]interface{})
	assert.Equal(t, "users", result["collection"])
	assert.Equal(t, map[string]interface{}{"$gt": float64(30)}, result["query"].(map[string]interface{})["age"])

	analysis := out["analysis"].(map[string]interface{})
	assert.Equal(t, "simple", analysis["complexity_level"])

	require.Len(t, rec.events, 1)
	assert.Equal(t, "find", rec.events[0].Operation)
	assert.Equal(t, "users", rec.events[0].Collection)
	assert.Empty(t, rec.events[0].Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.TranslationsTotal.WithLabelValues("find")))
}

func TestTranslateSchemaIsPerRequest(t *testing.T) {
	s := NewServer(Options{Translator: translator.Options{Schemas: translator.NewSchemaRegistry()}})

	insert := translateRequest{SQL: "INSERT INTO items VALUES ('a1', 3)"}
	before := post(t, s, "/api/v1/translate", insert)
	require.Equal(t, http.StatusBadRequest, before.Code, before.Body.String())

	w := post(t, s, "/api/v1/translate", translateRequest{SQL: "CREATE TABLE items (code VARCHAR(10), qty INT)"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after := post(t, s, "/api/v1/translate", insert)
	require.Equal(t, http.StatusBadRequest, after.Code, after.Body.String())
	assert.Equal(t, decodeBody(t, before)["error"], decodeBody(t, after)["error"])

	sel := translateRequest{SQL: "SELECT code FROM items ORDER BY qty"}
	first := decodeBody(t, post(t, s, "/api/v1/translate", sel))
	post(t, s, "/api/v1/translate", translateRequest{SQL: "CREATE TABLE items (code VARCHAR(10), qty VARCHAR(5))"})
	second := decodeBody(t, post(t, s, "/api/v1/translate", sel))
	assert.Equal(t, first["result"], second["result"])
}

func TestTranslateParseError(t *testing.T) {
	s, rec := newTestServer(t)
	w := post(t, s, "/api/v1/translate", translateRequest{SQL: "SELEC * FORM users"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["error"])

	require.Len(t, rec.events, 1)
	assert.NotEmpty(t, rec.events[0].Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.TranslationErrors.WithLabelValues("parse")))
}

func TestTranslateNotSupported(t *testing.T) {
	s, _ := newTestServer(t)
	w := post(t, s, "/api/v1/translate", translateRequest{SQL: "GRANT SELECT ON db.* TO 'u'@'%'"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.TranslationErrors.WithLabelValues("not_supported")))
}

func TestTranslateRejectsGet(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/translate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestTranslateBadPayload(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShell(t *testing.T) {
	s, _ := newTestServer(t)
	w := post(t, s, "/api/v1/shell", translateRequest{SQL: "DELETE FROM logs WHERE level = 'debug'"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `db.logs.deleteMany({"level":"debug"})`, decodeBody(t, w)["shell"])
}

func TestValidate(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name  string
		req   validateRequest
		code  int
		valid bool
	}{
		{"mysql ok", validateRequest{SQL: "SELECT * FROM users", Dialect: "mysql"}, http.StatusOK, true},
		{"mysql bad", validateRequest{SQL: "SELECT * FROM", Dialect: "mysql"}, http.StatusOK, false},
		{"postgres ok", validateRequest{SQL: "SELECT 1", Dialect: "postgresql"}, http.StatusOK, true},
		{"mongodb ok", validateRequest{SQL: `{"operation":"find","collection":"users","query":{}}`, Dialect: "mongodb"}, http.StatusOK, true},
		{"unknown dialect", validateRequest{SQL: "SELECT 1", Dialect: "oracle"}, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, s, "/api/v1/validate", tt.req)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.valid, decodeBody(t, w)["valid"])
			}
		})
	}
}

func TestTestConnection(t *testing.T) {
	s, _ := newTestServer(t)

	w := post(t, s, "/api/v1/test-connection", connectionRequest{URI: "mongodb://localhost:27017"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["connected"])

	w = post(t, s, "/api/v1/test-connection", connectionRequest{URI: "bad://"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, s, "/api/v1/test-connection", connectionRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	post(t, s, "/api/v1/translate", translateRequest{SQL: "SELECT * FROM users"})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sqlmongo_translator_translations_total{operation="find"} 1`)
	assert.Contains(t, string(body), "sqlmongo_http_requests_total")
}
