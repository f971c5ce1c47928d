// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for pbbcms. Handlers are
// grouped by surface (public API, admin API, admin auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pbbcms/internal/apierror"
	"pbbcms/internal/store"
)

// maxJSONBody caps JSON request bodies. Image uploads use multipart and
// have their own limit.
const maxJSONBody = 1 << 20

var errInvalidJSON = apierror.BadRequest("invalid JSON body")

// decodeJSON reads a single JSON object from the request body into dst.
// A well-formed body with a value of the wrong type for a field is reported
// against that field, like any other validation failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apierror.Field(typeErr.Field, typeMessage(typeErr.Type))
		}
		return errInvalidJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		if t == reflect.TypeOf(json.Number("")) {
			return "A valid integer is required."
		}
		return "Not a valid string."
	}
	return "Invalid value."
}

// pathID parses the {id} URL parameter. A malformed id cannot match any
// row, so it is reported as not found.
func pathID(r *http.Request, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apierror.NotFound(what)
	}
	return id, nil
}

// queryID parses a required UUID query parameter.
func queryID(r *http.Request, param, what string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return uuid.Nil, apierror.MissingParameter(param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.NotFound(what)
	}
	return id, nil
}

// queryBool parses an optional boolean filter such as ?is_active=true.
func queryBool(r *http.Request, param string) (*bool, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierror.BadRequest(param + " must be true or false")
	}
	return &v, nil
}

// queryPage reads ?page=&page_size= into a clamped page.
func queryPage(r *http.Request) (store.Page, error) {
	q := r.URL.Query()
	number, size := 1, store.DefaultPageSize

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.Page{}, apierror.BadRequest("invalid page")
		}
		number = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.Page{}, apierror.BadRequest("invalid page_size")
		}
		size = n
	}
	return store.NewPage(number, size), nil
}

// Paged is the envelope of every paginated admin listing.
type Paged[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

func paged[T any](items []T, total int, page store.Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Count: total, Page: page.Number, PageSize: page.Size, Results: items}
}
