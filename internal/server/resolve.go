package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vango-dev/assetpath/internal/config"
	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/middleware"
)

// resolveResponse is the body of a successful /resolve.
type resolveResponse struct {
	Source   string          `json:"source"`
	Strategy assets.Strategy `json:"strategy"`
	Path     string          `json:"path"`
	Paths    []string        `json:"paths"`
}

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// handleResolve resolves ?source= with options taken from the query.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := optionsFromQuery(q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.resolve(q.Get("source"), q.Get("kind"), opts)
	if err != nil {
		middleware.AnnotateError(r.Context(), err)
		status := http.StatusInternalServerError
		if assets.IsContractError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorBody(err))
		return
	}

	middleware.AnnotateResolution(r.Context(), res)
	writeJSON(w, http.StatusOK, resolveResponse{
		Source:   res.Source,
		Strategy: res.Strategy,
		Path:     res.Path,
		Paths:    res.All(),
	})
}

// resolve dispatches to the kind-aware entry point when kind is set.
func (s *Server) resolve(source, kind string, opts assets.Options) (*assets.Result, error) {
	if kind != "" {
		return s.helper.ResolveKind(assets.Kind(kind), source, opts)
	}
	return s.helper.Resolve(source, opts)
}

// optionsFromQuery reads resolution options from query parameters.
// prefix=false and host=false disable the setting.
func optionsFromQuery(q url.Values) (assets.Options, error) {
	opts := assets.Options{
		Ext:      q.Get("ext"),
		Dir:      q.Get("dir"),
		Protocol: q.Get("protocol"),
	}

	bools := []struct {
		name string
		dst  **bool
	}{
		{"digest", &opts.Digest},
		{"body", &opts.Body},
		{"manifest", &opts.Manifest},
		{"debug", &opts.Debug},
		{"expand", &opts.Expand},
	}
	for _, b := range bools {
		if !q.Has(b.name) {
			continue
		}
		v, err := strconv.ParseBool(q.Get(b.name))
		if err != nil {
			return assets.Options{}, fmt.Errorf("invalid %s: %q is not a boolean", b.name, q.Get(b.name))
		}
		*b.dst = assets.Bool(v)
	}

	if q.Has("prefix") {
		opts.Prefix = queryValue(q.Get("prefix"))
	}
	if q.Has("host") {
		opts.Host = queryValue(q.Get("host"))
	}
	return opts, nil
}

func queryValue(v string) assets.Value {
	if v == "false" {
		return assets.Disabled()
	}
	return assets.Literal(v)
}

// requestOptions is the JSON form of resolution options.
type requestOptions struct {
	Ext      string             `json:"ext,omitempty"`
	Dir      string             `json:"dir,omitempty"`
	Digest   *bool              `json:"digest,omitempty"`
	Prefix   config.ValueConfig `json:"prefix,omitempty"`
	Host     config.ValueConfig `json:"host,omitempty"`
	Protocol string             `json:"protocol,omitempty"`
	Body     *bool              `json:"body,omitempty"`
	Manifest *bool              `json:"manifest,omitempty"`
	Debug    *bool              `json:"debug,omitempty"`
	Expand   *bool              `json:"expand,omitempty"`
}

// toOptions converts o. Expressions are configuration only and are
// rejected here.
func (o requestOptions) toOptions() (assets.Options, error) {
	if o.Prefix.Expr != "" || o.Host.Expr != "" {
		return assets.Options{}, fmt.Errorf("expressions are not accepted in requests")
	}
	prefix, err := o.Prefix.Value("prefix")
	if err != nil {
		return assets.Options{}, err
	}
	host, err := o.Host.Value("host")
	if err != nil {
		return assets.Options{}, err
	}
	return assets.Options{
		Ext:      o.Ext,
		Dir:      o.Dir,
		Digest:   o.Digest,
		Prefix:   prefix,
		Host:     host,
		Protocol: o.Protocol,
		Body:     o.Body,
		Manifest: o.Manifest,
		Debug:    o.Debug,
		Expand:   o.Expand,
	}, nil
}

func errorBody(err error) errorResponse {
	body := errorResponse{Error: err.Error()}
	if ae, ok := err.(*errors.AssetError); ok {
		body.Code = ae.Code
		body.Detail = ae.Detail
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
