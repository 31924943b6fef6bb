package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	aperrors "github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

// recordingSpan keeps what the middleware writes to a span.
type recordingSpan struct {
	noop.Span

	mu     sync.Mutex
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordingSpan) IsRecording() bool { return true }

func (s *recordingSpan) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordingSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	span.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func TestTracing_SpanPerRequest(t *testing.T) {
	tp := newRecordingProvider()

	r := chi.NewRouter()
	r.Use(Tracing(WithTracerProvider(tp), WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("test.attr", "ok")}
	})))
	r.Get("/resolve", func(w http.ResponseWriter, r *http.Request) {
		if !SpanFromContext(r.Context()).IsRecording() {
			t.Error("expected span in request context")
		}
		AnnotateResolution(r.Context(), &assets.Result{
			Source:   "main.js",
			Strategy: assets.StrategyAsset,
			Path:     "/assets/main.js",
		})
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resolve?source=main.js", nil))

	if len(tp.tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tp.tracer.spans))
	}
	span := tp.tracer.spans[0]
	if span.name != "GET /resolve" {
		t.Errorf("span name = %q", span.name)
	}
	if !span.ended {
		t.Error("span not ended")
	}
	if span.status != codes.Ok {
		t.Errorf("status = %v, want Ok", span.status)
	}
	checks := map[attribute.Key]string{
		"http.method":        "GET",
		"http.route":         "/resolve",
		"test.attr":          "ok",
		"assetpath.strategy": "asset",
		"assetpath.path":     "/assets/main.js",
	}
	for k, want := range checks {
		if got := span.attrs[k].AsString(); got != want {
			t.Errorf("attr %s = %q, want %q", k, got, want)
		}
	}
	if got := span.attrs["http.status_code"].AsInt64(); got != 200 {
		t.Errorf("http.status_code = %d", got)
	}
	if got := span.attrs["assetpath.paths"].AsInt64(); got != 1 {
		t.Errorf("assetpath.paths = %d", got)
	}
}

func TestTracing_ServerErrorAndRejection(t *testing.T) {
	tp := newRecordingProvider()

	r := chi.NewRouter()
	r.Use(Tracing(WithTracerProvider(tp)))
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		AnnotateError(r.Context(), aperrors.New("E160"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	span := tp.tracer.spans[0]
	if span.status != codes.Error {
		t.Errorf("status = %v, want Error", span.status)
	}
	if len(span.errs) != 1 {
		t.Errorf("recorded errors = %d, want 1", len(span.errs))
	}
	if got := span.attrs["assetpath.error_code"].AsString(); got != "E160" {
		t.Errorf("error code = %q", got)
	}
}

func TestTracing_Filter(t *testing.T) {
	tp := newRecordingProvider()

	h := Tracing(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/other", nil))

	if len(tp.tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tp.tracer.spans))
	}
	if tp.tracer.spans[0].name != "GET /other" {
		t.Errorf("span name = %q", tp.tracer.spans[0].name)
	}
}

func TestAnnotateWithoutSpan(t *testing.T) {
	// Must not panic on a context without a span.
	AnnotateResolution(context.Background(), &assets.Result{Path: "/a"})
	AnnotateError(context.Background(), aperrors.New("E001"))
}
