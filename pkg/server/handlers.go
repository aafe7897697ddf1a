package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vxgraph/pkg/buildinfo"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/pipeline"
	"github.com/matzehuels/vxgraph/pkg/store"
)

// healthBody is the /healthz response.
type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), res.Report); err != nil {
		s.logger.Warn("archive report failed", "report", res.Report.ID, "error", err)
	}

	if res.CacheInfo.ReportHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, res.Report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeReportNotFound, "no report with id %s", id))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load report"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list reports"))
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// libraryEntry is the wire form of one operator type.
type libraryEntry struct {
	Name        string               `json:"name"`
	FirstInput  int                  `json:"first_input"`
	FirstOutput int                  `json:"first_output"`
	Params      []nodelib.Param      `json:"params"`
	Formats     []nodelib.FormatRule `json:"formats"`
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	v, err := nodelib.ParseVersion(r.URL.Query().Get("vx_version"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	lib, err := nodelib.Default(v)
	if err != nil {
		s.writeError(w, err)
		return
	}

	types := lib.Types()
	out := make([]libraryEntry, len(types))
	for i, t := range types {
		params := t.Params
		if params == nil {
			params = []nodelib.Param{}
		}
		out[i] = libraryEntry{
			Name:        t.Name(),
			FirstInput:  t.FirstInput,
			FirstOutput: t.FirstOutput,
			Params:      params,
			Formats:     t.Formats,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vx_version": string(lib.Version()),
		"operators":  out,
	})
}

func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{VXVersion: q.Get("vx_version")}
	if v := q.Get("max_passes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "max_passes must be an integer")
		}
		opts.MaxPasses = n
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean")
		}
		opts.Refresh = b
	}
	return opts, nil
}

// readDocument decodes the request body. JSON bodies use the document JSON
// form; everything else is read as yEd GraphML named by ?name=.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", s.maxBody)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var doc *document.Document
	if mediaType == "application/json" {
		doc, err = document.ReadJSON(bytes.NewReader(data))
	} else {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		doc, err = document.ReadGraphML(bytes.NewReader(data), name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
	}
	return doc, nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidVersion,
		errors.ErrCodeInvalidLibrary, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeReportNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
