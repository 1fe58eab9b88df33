package mutations

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/mutations/i18n"
)

// ErrorAtom is a single recorded violation.
type ErrorAtom struct {
	Path    string // dotted path, indices as segments (for example: items.0.sku).
	Code    string // symbolic code, one of the Code* consts or a command-defined token.
	Message string
	// Params carries structured parameters (e.g., {"max":10}) used to render
	// the message.
	Params map[string]any
}

// ErrorSet accumulates violations keyed by field path. Every atom is kept in
// insertion order; the Symbolic and Messages views report the first atom per
// path, so a path present in one view is present in the other.
//
// A nil *ErrorSet is a valid empty set for all read methods.
type ErrorSet struct {
	atoms      []ErrorAtom
	translator i18n.Translator
}

// NewErrorSet returns an empty set rendering messages with the package-level
// translator.
func NewErrorSet() *ErrorSet { return &ErrorSet{} }

// NewErrorSetWithTranslator returns an empty set rendering default messages
// with tr. A nil tr falls back to the package-level translator.
func NewErrorSetWithTranslator(tr i18n.Translator) *ErrorSet {
	return &ErrorSet{translator: tr}
}

// Add records one violation. An empty message is replaced by the translated
// default for code.
func (s *ErrorSet) Add(path, code, message string) {
	s.AddParams(path, code, message, nil)
}

// AddParams is Add with structured parameters for message rendering.
func (s *ErrorSet) AddParams(path, code, message string, params map[string]any) {
	if message == "" {
		message = s.render(path, code, params)
	}
	s.atoms = append(s.atoms, ErrorAtom{Path: path, Code: code, Message: message, Params: params})
}

// AddAtom records a prepared atom as is.
func (s *ErrorSet) AddAtom(a ErrorAtom) {
	s.atoms = append(s.atoms, a)
}

// Merge appends every atom of other, keeping its paths.
func (s *ErrorSet) Merge(other *ErrorSet) {
	if other == nil {
		return
	}
	s.atoms = append(s.atoms, other.atoms...)
}

// MergeAt appends every atom of other with its path rebased under prefix.
func (s *ErrorSet) MergeAt(prefix string, other *ErrorSet) {
	if other == nil {
		return
	}
	for _, a := range other.atoms {
		a.Path = JoinPath(prefix, a.Path)
		s.atoms = append(s.atoms, a)
	}
}

func (s *ErrorSet) render(path, code string, params map[string]any) string {
	data := map[string]string{"field": i18n.FieldTitle(path)}
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	if s != nil && s.translator != nil {
		return s.translator.Message(code, data)
	}
	return i18n.T(code, data)
}

// Len reports the number of atoms.
func (s *ErrorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.atoms)
}

// Empty reports whether no violation was recorded (success).
func (s *ErrorSet) Empty() bool { return s.Len() == 0 }

// Has reports whether at least one atom is recorded at path.
func (s *ErrorSet) Has(path string) bool {
	_, ok := s.first(path)
	return ok
}

// Code returns the first symbolic code recorded at path, or "".
func (s *ErrorSet) Code(path string) string {
	a, _ := s.first(path)
	return a.Code
}

// Message returns the first message recorded at path, or "".
func (s *ErrorSet) Message(path string) string {
	a, _ := s.first(path)
	return a.Message
}

// Codes returns every code recorded at path in insertion order.
func (s *ErrorSet) Codes(path string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, a := range s.atoms {
		if a.Path == path {
			out = append(out, a.Code)
		}
	}
	return out
}

func (s *ErrorSet) first(path string) (ErrorAtom, bool) {
	if s == nil {
		return ErrorAtom{}, false
	}
	for _, a := range s.atoms {
		if a.Path == path {
			return a, true
		}
	}
	return ErrorAtom{}, false
}

// Paths returns the distinct paths in first-insertion order.
func (s *ErrorSet) Paths() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(s.atoms))
	out := make([]string, 0, len(s.atoms))
	for _, a := range s.atoms {
		if _, ok := seen[a.Path]; ok {
			continue
		}
		seen[a.Path] = struct{}{}
		out = append(out, a.Path)
	}
	return out
}

// Symbolic maps each path to its first symbolic code.
func (s *ErrorSet) Symbolic() map[string]string {
	out := make(map[string]string, s.Len())
	for _, p := range s.Paths() {
		out[p] = s.Code(p)
	}
	return out
}

// Messages maps each path to its first human message.
func (s *ErrorSet) Messages() map[string]string {
	out := make(map[string]string, s.Len())
	for _, p := range s.Paths() {
		out[p] = s.Message(p)
	}
	return out
}

// Atoms returns a copy of all atoms in insertion order.
func (s *ErrorSet) Atoms() []ErrorAtom {
	if s == nil {
		return nil
	}
	out := make([]ErrorAtom, len(s.atoms))
	copy(out, s.atoms)
	return out
}

// Error summarizes the first few atoms.
func (s *ErrorSet) Error() string {
	n := s.Len()
	if n == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := s.atoms[i]
		// e.g. required at amount
		fmt.Fprintf(b, "%s at %s", it.Code, displayPath(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

type errorAtomJSON struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

type errorSetJSON struct {
	Symbolic map[string]string `json:"symbolic"`
	Messages map[string]string `json:"messages"`
	Errors   []errorAtomJSON   `json:"errors"`
}

// MarshalJSON renders both views plus the ordered atom list.
func (s *ErrorSet) MarshalJSON() ([]byte, error) {
	out := errorSetJSON{Symbolic: s.Symbolic(), Messages: s.Messages(), Errors: make([]errorAtomJSON, 0, s.Len())}
	for _, a := range s.Atoms() {
		out.Errors = append(out.Errors, errorAtomJSON(a))
	}
	return json.Marshal(out)
}

// JoinPath appends key to a dotted prefix. Either side may be empty.
func JoinPath(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// IndexPath appends an array index segment to prefix.
func IndexPath(prefix string, i int) string {
	return JoinPath(prefix, strconv.Itoa(i))
}
