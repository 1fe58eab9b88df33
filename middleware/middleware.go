// Package middleware exposes commands over net/http.
//
// Handler decodes a request into inputs (query, body, chi URL params), runs the
// command and renders the outcome as JSON:
//
//	200 {"result": ...}
//	422 {"errors": {"symbolic": {...}, "messages": {...}, "errors": [...]}}
//	400 {"error": "..."}   malformed or oversized body
//	500 {"error": "internal error"}
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/source"
)

// DefaultMaxBodyBytes bounds request bodies unless WithMaxBodyBytes says
// otherwise.
const DefaultMaxBodyBytes = 1 << 20

// ctxKeyInputs is a typed context key for decoded inputs.
type ctxKeyInputs struct{}

// ContextWithInputs attaches decoded inputs to the context.
func ContextWithInputs(ctx context.Context, in mutations.Inputs) context.Context {
	return context.WithValue(ctx, ctxKeyInputs{}, in)
}

// InputsFromContext retrieves inputs stored by ContextWithInputs or the
// DecodeInputs middleware.
func InputsFromContext(ctx context.Context) (mutations.Inputs, bool) {
	in, ok := ctx.Value(ctxKeyInputs{}).(mutations.Inputs)
	return in, ok
}

type options struct {
	maxBodyBytes  int64
	rejectDupKeys bool
	logger        *slog.Logger
	extra         func(*http.Request) mutations.Inputs
}

// Option configures Decode and Handler.
type Option func(*options)

// WithMaxBodyBytes bounds the request body size.
func WithMaxBodyBytes(n int64) Option { return func(o *options) { o.maxBodyBytes = n } }

// WithDuplicateKeyCheck rejects JSON bodies repeating a key in one object.
func WithDuplicateKeyCheck() Option { return func(o *options) { o.rejectDupKeys = true } }

// WithLogger logs execute failures.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithInputs merges inputs derived from the request last, e.g. the
// authenticated user id. They override every other source.
func WithInputs(fn func(*http.Request) mutations.Inputs) Option {
	return func(o *options) { o.extra = fn }
}

func apply(opts []Option) options {
	o := options{maxBodyBytes: DefaultMaxBodyBytes}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Decode builds the input bags of a request in merge order: query string,
// body (JSON, YAML or form encoded), chi URL params, then WithInputs. Later
// sources win on key collision.
func Decode(r *http.Request, opts ...Option) ([]any, error) {
	o := apply(opts)
	return decode(r, o)
}

func decode(r *http.Request, o options) ([]any, error) {
	bags := []any{source.Form(r.URL.Query())}
	body, err := decodeBody(r, o)
	if err != nil {
		return nil, err
	}
	if body != nil {
		bags = append(bags, body)
	}
	if p := ChiParams(r); len(p) > 0 {
		bags = append(bags, p)
	}
	if o.extra != nil {
		if in := o.extra(r); in != nil {
			bags = append(bags, in)
		}
	}
	return bags, nil
}

func decodeBody(r *http.Request, o options) (mutations.Inputs, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return nil, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, fmt.Errorf("middleware: content type: %w", err)
	}
	srcOpts := []source.Option{source.WithMaxBytes(o.maxBodyBytes)}
	if o.rejectDupKeys {
		srcOpts = append(srcOpts, source.RejectDuplicateKeys())
	}
	switch mt {
	case "application/json":
		return source.JSONReader(r.Body, srcOpts...)
	case "application/yaml", "application/x-yaml", "text/yaml":
		return source.YAMLReader(r.Body, srcOpts...)
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, o.maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("middleware: parse form: %w", err)
		}
		return source.Form(r.PostForm), nil
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, o.maxBodyBytes)
		if err := r.ParseMultipartForm(o.maxBodyBytes); err != nil {
			return nil, fmt.Errorf("middleware: parse form: %w", err)
		}
		return source.Form(r.PostForm), nil
	}
	return nil, fmt.Errorf("middleware: unsupported content type %q", mt)
}

// ChiParams returns the chi URL parameters of r as inputs.
func ChiParams(r *http.Request) mutations.Inputs {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	out := make(mutations.Inputs, len(rc.URLParams.Keys))
	for i, k := range rc.URLParams.Keys {
		if k == "*" || i >= len(rc.URLParams.Values) {
			continue
		}
		out[k] = rc.URLParams.Values[i]
	}
	return out
}

// DecodeInputs is a middleware decoding the request once and storing the
// merged inputs in the context, for handlers that inspect them before a
// command runs. Handler uses the stored inputs instead of decoding again.
func DecodeInputs(opts ...Option) func(http.Handler) http.Handler {
	o := apply(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bags, err := decode(r, o)
			if err != nil {
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			in, err := mutations.MergeInputs(bags...)
			if err != nil {
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithInputs(r.Context(), in)))
		})
	}
}

// ErrorPayload shapes an ErrorSet for JSON responses.
func ErrorPayload(es *mutations.ErrorSet) map[string]any {
	return map[string]any{"errors": es}
}

// Handler serves cmd. Each request runs the command once.
func Handler[T any](cmd *mutations.Command[T], opts ...Option) http.Handler {
	o := apply(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var bags []any
		if in, ok := InputsFromContext(ctx); ok {
			bags = []any{in}
		} else {
			var err error
			if bags, err = decode(r, o); err != nil {
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
		}
		out, err := cmd.Run(ctx, bags...)
		if err != nil {
			if errors.Is(err, mutations.ErrInvalidArgument) {
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			o.logger.ErrorContext(ctx, "command failed", "command", cmd.Name(), "error", err)
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
			return
		}
		if !out.Success() {
			WriteJSON(w, http.StatusUnprocessableEntity, ErrorPayload(out.Errors()))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"result": out.Result()})
	})
}

// WriteJSON writes v with status using goccy/go-json.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
