package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ErikMLC/sqlmongo/engine/condition"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/engine/reverse"
	"github.com/ErikMLC/sqlmongo/engine/shell"
	"github.com/ErikMLC/sqlmongo/engine/translator"
	"github.com/ErikMLC/sqlmongo/engine/validator"
	"github.com/ErikMLC/sqlmongo/pkg/notify"

	"go.uber.org/zap"
)

type translateRequest struct {
	SQL    string `json:"sql"`
	Strict bool   `json:"strict,omitempty"`
}

type translateResponse struct {
	RequestID string                  `json:"request_id"`
	Operation string                  `json:"operation"`
	Result    json.RawMessage         `json:"result"`
	Shell     string                  `json:"shell,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
	Analysis  *translator.Feasibility `json:"analysis,omitempty"`
}

type shellResponse struct {
	RequestID string `json:"request_id"`
	Shell     string `json:"shell"`
}

type validateRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect"`
}

type connectionRequest struct {
	URI string `json:"uri"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}

	stmt, result, err := s.translate(r.Context(), req.SQL, req.Strict)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := models.MarshalExtJSON(result, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := translateResponse{
		RequestID: RequestID(r.Context()),
		Operation: result.Operation(),
		Result:    body,
		Warnings:  result.Meta().Warnings,
	}
	if text, err := shell.Render(result); err == nil {
		resp.Shell = text
	} else {
		s.log.Warn("shell render failed", zap.Error(err))
	}
	if stmt.Kind == models.KindSelect {
		analysis := translator.Analyze(stmt)
		resp.Analysis = &analysis
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}

	_, result, err := s.translate(r.Context(), req.SQL, req.Strict)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := shell.Render(result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shellResponse{RequestID: RequestID(r.Context()), Shell: text})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Dialect == "" {
		req.Dialect = "mysql"
	}

	var (
		res *validator.ValidationResult
		err error
	)
	if strings.EqualFold(req.Dialect, "mongodb") {
		res, err = validator.MongoDB{}.ValidateWithDetails(req.SQL)
	} else {
		res, err = validator.ValidateSQLWithDetails(req.SQL, req.Dialect)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: RequestID(r.Context()), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	uri := strings.TrimSpace(req.URI)
	if uri == "" {
		uri = s.mongo.URI
	}
	if uri == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: RequestID(r.Context()), Error: "uri is required"})
		return
	}

	status, err := s.testConn(r.Context(), uri, s.mongo.Timeout)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: RequestID(r.Context()), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ============================================================================
// TRANSLATION
// ============================================================================

// translate parses and converts sql, recording metrics and publishing an event
func (s *Server) translate(ctx context.Context, sql string, strict bool) (*models.Statement, models.Result, error) {
	start := time.Now()
	event := notify.NewEvent(sql)

	stmt, result, err := s.run(sql, strict)
	elapsed := time.Since(start)
	event.DurationMS = elapsed.Milliseconds()

	if err != nil {
		_, kind := classify(err)
		s.metrics.TranslationErrors.WithLabelValues(kind).Inc()
		event.Error = err.Error()
	} else {
		op := result.Operation()
		s.metrics.TranslationsTotal.WithLabelValues(op).Inc()
		s.metrics.TranslationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		s.metrics.TranslationWarnings.Add(float64(len(result.Meta().Warnings)))
		event.Operation = op
		event.Collection = result.Meta().Collection
		event.Warnings = result.Meta().Warnings
	}

	if nerr := s.notify.Notify(ctx, event); nerr != nil {
		s.log.Warn("publish translation event failed",
			zap.String("request_id", RequestID(ctx)),
			zap.Error(nerr))
	}
	return stmt, result, err
}

func (s *Server) run(sql string, strict bool) (*models.Statement, models.Result, error) {
	stmt, err := reverse.Parse(sql)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.newTranslator(strict).Translate(stmt)
	if err != nil {
		return stmt, nil, err
	}
	return stmt, result, nil
}

// newTranslator builds a per-request translator. Each request gets its own
// schema registry so a CREATE TABLE sent by one client never changes how
// another client's statements translate.
func (s *Server) newTranslator(strict bool) *translator.Translator {
	opts := s.trOpts
	opts.StrictConditions = strict
	opts.Schemas = translator.NewSchemaRegistry()
	return translator.New(opts)
}

// classify maps an error to a status code and a metric label
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, reverse.ErrEmptyQuery), errors.Is(err, reverse.ErrParseError):
		return http.StatusBadRequest, "parse"
	case errors.Is(err, reverse.ErrNotSupported):
		return http.StatusBadRequest, "not_supported"
	case errors.Is(err, translator.ErrInput):
		return http.StatusBadRequest, "input"
	case errors.Is(err, condition.ErrSyntax):
		return http.StatusBadRequest, "condition"
	}
	return http.StatusInternalServerError, "internal"
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return false
	}
	defer r.Body.Close()

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.log.Debug("invalid request payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: RequestID(r.Context()), Error: "invalid request payload"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := classify(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.log.Error("translation failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		msg = "translation failed"
	}
	s.log.Debug("request rejected", zap.String("kind", kind), zap.Error(err))
	writeJSON(w, code, errorResponse{RequestID: RequestID(r.Context()), Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
