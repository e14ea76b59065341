package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/smallnest/medichat/rag"
)

// DefaultQuery is used by /test-retrieval when no query is given.
const DefaultQuery = "What is diabetes?"

const (
	// reportContentLen bounds each document's content in a RetrievalReport.
	reportContentLen = 300
	// logPreviewLen bounds the document previews /get logs.
	logPreviewLen = 200
	// maxFormSize matches the body limit net/http applies in ParseForm.
	maxFormSize = 10 << 20
)

// ErrMissingMessage is returned when /get has no msg form field.
var ErrMissingMessage = errors.New("missing form field \"msg\"")

// RetrievalReport is the /test-retrieval response body.
type RetrievalReport struct {
	Query            string              `json:"query"`
	NumDocsRetrieved int                 `json:"num_docs_retrieved"`
	Documents        []RetrievedDocument `json:"documents"`
}

// RetrievedDocument is one document in a RetrievalReport. Source is the
// stored metadata value, or "Unknown" when the key is absent.
type RetrievedDocument struct {
	Content      string         `json:"content"`
	Source       any            `json:"source"`
	FullMetadata map[string]any `json:"full_metadata"`
}

// NewRetrievalReport summarises docs, truncating each content to 300 characters.
func NewRetrievalReport(query string, docs []rag.Document) RetrievalReport {
	report := RetrievalReport{
		Query:            query,
		NumDocsRetrieved: len(docs),
		Documents:        make([]RetrievedDocument, 0, len(docs)),
	}
	for _, doc := range docs {
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		source, ok := doc.SourceValue()
		if !ok {
			source = rag.UnknownSource
		}
		report.Documents = append(report.Documents, RetrievedDocument{
			Content:      doc.Preview(reportContentLen),
			Source:       source,
			FullMetadata: metadata,
		})
	}
	return report
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "chat.html", nil); err != nil {
		s.logger.Error("render chat.html: %v", err)
	}
}

func (s *Server) handleTestRetrieval(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := DefaultQuery
	if values.Has("query") {
		query = values.Get("query")
	}

	docs, err := s.backend.Retrieve(r.Context(), query)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sendJSONResponse(w, NewRetrievalReport(query, docs))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	msg, err := formMessage(r)
	if err != nil {
		s.logger.Warn("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Info("question: %s", msg)

	resp, err := s.backend.Ask(r.Context(), msg)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.logger.Info("answer: %s", resp.Answer)
	s.logRetrieved(resp.Context)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(resp.Answer))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, map[string]string{"status": "ok"})
}

// formMessage reads msg from the request body form for any method. Query
// parameters are ignored.
func formMessage(r *http.Request) (string, error) {
	form, err := bodyForm(r)
	if err != nil {
		return "", err
	}
	values, ok := form["msg"]
	if !ok || len(values) == 0 {
		return "", ErrMissingMessage
	}
	return values[0], nil
}

// bodyForm parses a urlencoded body. ParseForm only reads bodies of
// POST, PUT and PATCH requests, so other methods are decoded here.
func bodyForm(r *http.Request) (url.Values, error) {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	if r.Body == nil {
		return url.Values{}, nil
	}
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || ct != "application/x-www-form-urlencoded" {
		return url.Values{}, nil
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxFormSize))
	if err != nil {
		return nil, err
	}
	return url.ParseQuery(string(b))
}

func (s *Server) logRetrieved(docs []rag.Document) {
	s.logger.Info("retrieved %d documents from the vector store", len(docs))
	for i, doc := range docs {
		s.logger.Info("document %d: %s... (source: %s)", i+1, doc.Preview(logPreviewLen), doc.Source())
	}
}

// internalError logs err and writes a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("%s %s [%s]: %v", r.Method, r.URL.Path, RequestIDFromContext(r.Context()), err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func sendJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
