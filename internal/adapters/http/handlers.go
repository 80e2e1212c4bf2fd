package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
)

// maxBodyBytes caps JSON and form request bodies.
const maxBodyBytes = 1 << 20

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a compact JSON body with no trailing newline.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSONError writes {"error": msg}.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// requestOrigin returns scheme://host for building absolute event URLs.
// A configured base URL wins over the request's own host.
// X-Forwarded-Proto is ignored unless TrustProxy is set.
func (h *Handler) requestOrigin(r *http.Request) string {
	if h.deps.PublicBaseURL != "" {
		return h.deps.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil || (h.deps.TrustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")) {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// attachmentHeader builds a Content-Disposition value with a quoted filename.
func attachmentHeader(filename string) string {
	if strings.ContainsAny(filename, "\"\\\r\n") {
		return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	}
	return `attachment; filename="` + filename + `"`
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	t, ok := h.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("template not found: %s", name))
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["CSRFField"] = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
