package mutations_test

import (
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/i18n"
)

func TestErrorSet_ViewsShareKeys(t *testing.T) {
	es := mutations.NewErrorSet()
	es.Add("name", mutations.CodeLength, "")
	es.Add("name", mutations.CodeFormat, "")
	es.Add("items.0.sku", mutations.CodeRequired, "")

	sym, msgs := es.Symbolic(), es.Messages()
	if len(sym) != 2 || len(msgs) != 2 {
		t.Fatalf("views: %v %v", sym, msgs)
	}
	for p := range sym {
		if _, ok := msgs[p]; !ok {
			t.Fatalf("path %s missing from messages", p)
		}
	}
	if sym["name"] != mutations.CodeLength {
		t.Fatalf("first atom must win: %v", sym)
	}
	if es.Len() != 3 {
		t.Fatalf("every atom is kept, got %d", es.Len())
	}
	if got := es.Paths(); len(got) != 2 || got[0] != "name" || got[1] != "items.0.sku" {
		t.Fatalf("paths order: %v", got)
	}
}

func TestErrorSet_DefaultMessages(t *testing.T) {
	es := mutations.NewErrorSetWithTranslator(i18n.Dictionary("en"))
	es.Add("zip_code", mutations.CodeRequired, "")
	es.AddParams("name", mutations.CodeLength, "", map[string]any{"bound": "max", "max": 10})
	es.AddParams("amount", mutations.CodeInvalid, "", map[string]any{"expected": "an integer"})
	es.Add("items.0", mutations.CodeEmpty, "")

	cases := map[string]string{
		"zip_code": "Zip Code is required",
		"name":     "Name is too long",
		"amount":   "Amount isn't an integer",
		"items.0":  "Items can't be blank",
	}
	for p, want := range cases {
		if got := es.Message(p); got != want {
			t.Fatalf("%s: got %q want %q", p, got, want)
		}
	}
}

func TestErrorSet_TranslatorPerSet(t *testing.T) {
	es := mutations.NewErrorSetWithTranslator(i18n.Dictionary("ja"))
	es.Add("name", mutations.CodeRequired, "")
	if got := es.Message("name"); got != "Nameは必須です" {
		t.Fatalf("ja message: %q", got)
	}
}

func TestErrorSet_MergeAt(t *testing.T) {
	inner := mutations.NewErrorSet()
	inner.Add("city", mutations.CodeRequired, "City is required")
	inner.Add("", "invalid_address", "bad")

	outer := mutations.NewErrorSet()
	outer.MergeAt("address", inner)
	outer.Merge(nil)
	outer.MergeAt("x", nil)

	if outer.Code("address.city") != mutations.CodeRequired {
		t.Fatalf("rebased path: %v", outer.Symbolic())
	}
	if outer.Code("address") != "invalid_address" {
		t.Fatalf("root atom rebased to prefix: %v", outer.Symbolic())
	}
	if inner.Has("address.city") {
		t.Fatalf("source set must not change")
	}
}

func TestErrorSet_NilIsEmpty(t *testing.T) {
	var es *mutations.ErrorSet
	if !es.Empty() || es.Len() != 0 || es.Has("x") || es.Code("x") != "" {
		t.Fatalf("nil set must read as empty")
	}
	if len(es.Symbolic()) != 0 || es.Atoms() != nil {
		t.Fatalf("nil set views must be empty")
	}
}

func TestErrorSet_ErrorText(t *testing.T) {
	es := mutations.NewErrorSet()
	for _, p := range []string{"a", "b", "c", "d"} {
		es.Add(p, mutations.CodeRequired, "")
	}
	got := es.Error()
	if !strings.HasPrefix(got, "required at a; required at b; required at c") {
		t.Fatalf("error text: %q", got)
	}
	if !strings.Contains(got, "total 4") {
		t.Fatalf("expected total count: %q", got)
	}
	var target *mutations.ErrorSet
	if !errors.As(error(es), &target) || target != es {
		t.Fatalf("ErrorSet must work with errors.As")
	}
}

func TestErrorSet_MarshalJSON(t *testing.T) {
	es := mutations.NewErrorSet()
	es.AddParams("name", mutations.CodeLength, "too long", map[string]any{"max": 10})
	b, err := json.Marshal(es)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Symbolic map[string]string `json:"symbolic"`
		Messages map[string]string `json:"messages"`
		Errors   []struct {
			Path   string         `json:"path"`
			Code   string         `json:"code"`
			Params map[string]any `json:"params"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Symbolic["name"] != "length" || got.Messages["name"] != "too long" {
		t.Fatalf("payload: %s", b)
	}
	if len(got.Errors) != 1 || got.Errors[0].Path != "name" || got.Errors[0].Params["max"] != float64(10) {
		t.Fatalf("atoms: %s", b)
	}
}

func TestPaths(t *testing.T) {
	if got := mutations.JoinPath("", "a"); got != "a" {
		t.Fatalf("JoinPath: %q", got)
	}
	if got := mutations.JoinPath("a", ""); got != "a" {
		t.Fatalf("JoinPath: %q", got)
	}
	if got := mutations.IndexPath("items", 3); got != "items.3" {
		t.Fatalf("IndexPath: %q", got)
	}
}
