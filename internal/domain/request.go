package domain

import (
	"net/http"
	"net/url"
)

// Request describes one outbound API call. It is built per call and
// discarded after dispatch.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) Request {
	return Request{Method: http.MethodPut, Path: path, Body: body}
}

func Delete(path string) Request {
	return Request{Method: http.MethodDelete, Path: path}
}

// WithQuery returns a copy of r with key set to value in the query string.
func (r Request) WithQuery(key, value string) Request {
	query := url.Values{}
	for k, v := range r.Query {
		query[k] = append([]string(nil), v...)
	}
	query.Set(key, value)
	r.Query = query
	return r
}
