package router

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

type Route struct {
	Path    string
	Methods []string
	Handler func(w http.ResponseWriter, r *http.Request) error
}

type statusError interface {
	StatusCode() int
}

func WithErrorHandle(hndl func(w http.ResponseWriter, r *http.Request) error,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		err := hndl(w, r)
		if err != nil {
			code := http.StatusInternalServerError
			var se statusError
			if errors.As(err, &se) {
				code = se.StatusCode()
			}
			w.WriteHeader(code)
			w.Write([]byte(err.Error()))
		}
	}
}

func NewRouter(routes []*Route) *mux.Router {
	router := mux.NewRouter()
	for _, r := range routes {
		router.HandleFunc(r.Path, WithErrorHandle(r.Handler)).Methods(r.Methods...)
	}
	return router
}
