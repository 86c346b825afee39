package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/metrico/dvgrouper/grouper"
	"github.com/metrico/dvgrouper/metadata"
)

var ErrNotFound = errors.New("dataset not found")

// HTTPError carries the response status of a failed request.
type HTTPError struct {
	Code int
	Err  error
}

func (e *HTTPError) Error() string { return e.Err.Error() }
func (e *HTTPError) Unwrap() error { return e.Err }
func (e *HTTPError) StatusCode() int { return e.Code }

type Handler struct {
	Grouper *grouper.Grouper
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str("ok")
	e.FieldStart("load_id")
	e.Str(h.Grouper.LoadID())
	e.FieldStart("datasets")
	e.Int(len(h.Grouper.Datasets()))
	e.ObjEnd()
	return writeJSON(w, e.Bytes())
}

// Datasets lists datasets, optionally narrowed by the "where" expression.
func (h *Handler) Datasets(w http.ResponseWriter, r *http.Request) error {
	var names []string
	if where := r.URL.Query().Get("where"); where != "" {
		var err error
		if names, err = h.Grouper.Filter(where); err != nil {
			return &HTTPError{Code: http.StatusBadRequest, Err: err}
		}
		if len(names) == 0 {
			return writeJSON(w, []byte("[]"))
		}
	}
	var e jx.Encoder
	h.Grouper.EncodeDatasets(&e, names...)
	return writeJSON(w, e.Bytes())
}

func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) error {
	name := mux.Vars(r)["name"]
	entry, ok := h.Grouper.Dataset(name)
	if !ok {
		return &HTTPError{Code: http.StatusNotFound, Err: fmt.Errorf("%w: %q", ErrNotFound, name)}
	}
	meta := entry.Metadata()
	meta.Set(metadata.KeyName, entry.Name)
	meta.Set("group", entry.Group)
	body, err := jsoniter.Marshal(meta)
	if err != nil {
		return err
	}
	return writeJSON(w, body)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(h.Grouper.Summary()))
	return err
}

func writeJSON(w http.ResponseWriter, body []byte) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, err := w.Write(body)
	return err
}
