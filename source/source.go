// Package source turns request payloads into input bags for mutations.Command.
//
// JSON is decoded with goccy/go-json keeping numbers as json.Number, so large
// integers survive until the integer filter sees them. YAML documents are
// decoded with yaml.v3. Form values understand bracket keys ("address[city]",
// "tags[]") and build nested hashes and arrays from them.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	mutations "github.com/reoring/mutations"
)

var (
	// ErrNotObject is returned when a payload's top-level value is not an
	// object/mapping.
	ErrNotObject = errors.New("source: top-level value is not an object")
	// ErrTooLarge is returned when a reader yields more than the configured
	// maximum.
	ErrTooLarge = errors.New("source: payload too large")
)

// DuplicateKeyError reports a key that appears twice in one JSON object.
type DuplicateKeyError struct {
	Path string // dotted path of the enclosing object, "" at the top level
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("source: duplicate key %q", e.Key)
	}
	return fmt.Sprintf("source: duplicate key %q at %s", e.Key, e.Path)
}

type options struct {
	maxBytes      int64
	rejectDupKeys bool
}

// Option configures JSON and YAML decoding.
type Option func(*options)

// WithMaxBytes limits the payload size read by JSONReader and YAMLReader.
func WithMaxBytes(n int64) Option { return func(o *options) { o.maxBytes = n } }

// RejectDuplicateKeys fails JSON decoding when an object repeats a key
// instead of letting the last one win.
func RejectDuplicateKeys() Option { return func(o *options) { o.rejectDupKeys = true } }

func apply(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// JSON decodes a JSON object into Inputs.
func JSON(data []byte, opts ...Option) (mutations.Inputs, error) {
	o := apply(opts)
	if o.rejectDupKeys {
		if err := detectDuplicateKeys(data); err != nil {
			return nil, err
		}
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("source: decode json: trailing data after top-level value")
	}
	return asInputs(v)
}

// JSONReader reads r fully (bounded by WithMaxBytes) and decodes it like JSON.
func JSONReader(r io.Reader, opts ...Option) (mutations.Inputs, error) {
	data, err := readAll(r, apply(opts).maxBytes)
	if err != nil {
		return nil, err
	}
	return JSON(data, opts...)
}

// YAML decodes a YAML mapping into Inputs. An empty document yields empty
// Inputs.
func YAML(data []byte) (mutations.Inputs, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	if v == nil {
		return mutations.Inputs{}, nil
	}
	return asInputs(v)
}

// YAMLReader reads r fully (bounded by WithMaxBytes) and decodes it like YAML.
func YAMLReader(r io.Reader, opts ...Option) (mutations.Inputs, error) {
	data, err := readAll(r, apply(opts).maxBytes)
	if err != nil {
		return nil, err
	}
	return YAML(data)
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("source: read: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("source: read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

func asInputs(v any) (mutations.Inputs, error) {
	in, ok := mutations.NormalizeMap(v)
	if !ok {
		return nil, ErrNotObject
	}
	return in, nil
}

// Form converts form values into Inputs. Plain keys keep a single value as a
// string and several values as an array. Bracket keys nest: "a[b]=1" yields
// {"a": {"b": "1"}} and "tags[]=x&tags[]=y" yields {"tags": ["x", "y"]}.
// When a plain key and a bracket key collide the later one in sorted key
// order wins.
func Form(values url.Values) mutations.Inputs {
	out := mutations.Inputs{}
	for _, key := range sortedKeys(values) {
		vs := values[key]
		if len(vs) == 0 {
			continue
		}
		segs := splitKey(key)
		setPath(out, segs, vs)
	}
	return out
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitKey splits "a[b][]" into ["a", "b", ""]. Malformed brackets keep the
// key whole.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	segs := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	return segs
}

func setPath(m mutations.Inputs, segs []string, vs []string) {
	head := segs[0]
	if len(segs) == 1 {
		if len(vs) == 1 {
			m[head] = vs[0]
			return
		}
		m[head] = toAny(vs)
		return
	}
	if segs[1] == "" {
		m[head] = toAny(vs)
		return
	}
	child, ok := m[head].(mutations.Inputs)
	if !ok {
		child = mutations.Inputs{}
		m[head] = child
	}
	setPath(child, segs[1:], vs)
}

func toAny(vs []string) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
